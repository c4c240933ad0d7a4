// Package extractor returns the plain text of an uploaded document, choosing
// a strategy from the file extension.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/pricofy/document-translator/internal/domain"
)

var (
	// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed is matched by every ExtractionError.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoDetector is returned for images and PDFs when no text detector
	// is configured.
	ErrNoDetector = errors.New("no text detector configured for images and PDFs")
)

// UnsupportedFormatError reports an extension no strategy handles.
type UnsupportedFormatError struct {
	Ext string // lower-cased, without the leading dot
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExtractionError wraps a read or text-detection failure.
type ExtractionError struct {
	Key string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Key, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtractionFailed, e.Err}
}

// Kind tags the extraction strategy for a document.
type Kind int

const (
	PlainText Kind = iota + 1
	ImageOrPDF
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain-text"
	case ImageOrPDF:
		return "image-or-pdf"
	default:
		return "unknown"
	}
}

// kinds maps supported extensions to their strategy.
// .doc and .docx are deliberately absent.
var kinds = map[string]Kind{
	".txt":  PlainText,
	".pdf":  ImageOrPDF,
	".png":  ImageOrPDF,
	".jpg":  ImageOrPDF,
	".jpeg": ImageOrPDF,
}

// Detect returns the strategy kind for an object key.
func Detect(key string) (Kind, error) {
	ext := strings.ToLower(path.Ext(key))
	if kind, ok := kinds[ext]; ok {
		return kind, nil
	}
	return 0, &UnsupportedFormatError{Ext: strings.TrimPrefix(ext, ".")}
}

// ObjectReader reads raw object bytes.
type ObjectReader interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Block is one unit of text returned by a text-detection service.
type Block struct {
	Type string
	Text string
}

// BlockTypeLine is the only block type whose text is extracted.
const BlockTypeLine = "LINE"

// TextDetector runs OCR on a stored document.
type TextDetector interface {
	DetectText(ctx context.Context, bucket, key string) ([]Block, error)
}

// Strategy extracts text from one kind of document.
type Strategy interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (string, error)
}

// Extractor dispatches documents to the strategy for their extension.
type Extractor struct {
	strategies map[Kind]Strategy
}

// New creates an Extractor reading text objects from objects and sending
// images and PDFs to detector. A nil detector makes images and PDFs fail
// with ErrNoDetector.
func New(objects ObjectReader, detector TextDetector) *Extractor {
	return &Extractor{
		strategies: map[Kind]Strategy{
			PlainText:  &plainText{objects: objects},
			ImageOrPDF: &detected{detector: detector},
		},
	}
}

// Extract returns the full text of doc.
func (e *Extractor) Extract(ctx context.Context, doc domain.SourceDocument) (string, error) {
	kind, err := Detect(doc.Key)
	if err != nil {
		return "", err
	}
	return e.strategies[kind].Extract(ctx, doc)
}

type plainText struct {
	objects ObjectReader
}

func (s *plainText) Extract(ctx context.Context, doc domain.SourceDocument) (string, error) {
	body, err := s.objects.GetObject(ctx, doc.Bucket, doc.Key)
	if err != nil {
		return "", &ExtractionError{Key: doc.Key, Err: err}
	}
	if !utf8.Valid(body) {
		return "", &ExtractionError{Key: doc.Key, Err: errors.New("content is not valid UTF-8")}
	}
	return string(body), nil
}

type detected struct {
	detector TextDetector
}

func (s *detected) Extract(ctx context.Context, doc domain.SourceDocument) (string, error) {
	if s.detector == nil {
		return "", &ExtractionError{Key: doc.Key, Err: ErrNoDetector}
	}
	blocks, err := s.detector.DetectText(ctx, doc.Bucket, doc.Key)
	if err != nil {
		return "", &ExtractionError{Key: doc.Key, Err: err}
	}

	var b strings.Builder
	for _, block := range blocks {
		if block.Type != BlockTypeLine {
			continue
		}
		b.WriteString(block.Text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// compile-time checks
var (
	_ Strategy = (*plainText)(nil)
	_ Strategy = (*detected)(nil)
)
