// Package pipeline runs one document through extraction, bounding,
// translation and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/domain"
	"github.com/pricofy/document-translator/internal/language"
	"github.com/pricofy/document-translator/internal/summarize"
)

// ErrPersistFailed is matched by artifact write failures.
var ErrPersistFailed = errors.New("persist failed")

// State is a step of one invocation.
type State string

const (
	StateReceived    State = "received"
	StateExtracting  State = "extracting"
	StateBounding    State = "bounding"
	StateTranslating State = "translating"
	StatePersisting  State = "persisting"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Failure stages reported in Result.Stage.
const (
	StageExtract   = "extract"
	StageBound     = "bound"
	StageTranslate = "translate"
	StagePersist   = "persist"
)

// Result is the outcome of one invocation.
type Result struct {
	Status         State  `json:"status"`
	Stage          string `json:"stage,omitempty"`
	Message        string `json:"message,omitempty"`
	InputKey       string `json:"inputKey"`
	OutputKey      string `json:"outputKey,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`

	err error
}

// Err returns the cause of a failed result.
func (r Result) Err() error {
	return r.err
}

// OK reports whether the invocation completed.
func (r Result) OK() bool {
	return r.Status == StateCompleted
}

// MetadataReader reads object metadata.
type MetadataReader interface {
	HeadMetadata(ctx context.Context, bucket, key string) (map[string]string, error)
}

// ArtifactWriter persists translated artifacts.
type ArtifactWriter interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error
}

// Extractor returns the text of a document.
type Extractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (string, error)
}

// Translator translates text of any length.
type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Orchestrator sequences the steps of an invocation. It holds no
// per-invocation state and may be shared across concurrent invocations.
type Orchestrator struct {
	metadata     MetadataReader
	extractor    Extractor
	translator   Translator
	writer       ArtifactWriter
	outputBucket string
	logger       *logrus.Entry
}

// Config holds the Orchestrator collaborators.
type Config struct {
	Metadata     MetadataReader
	Extractor    Extractor
	Translator   Translator
	Writer       ArtifactWriter
	OutputBucket string
	Logger       *logrus.Entry
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{
		metadata:     cfg.Metadata,
		extractor:    cfg.Extractor,
		translator:   cfg.Translator,
		writer:       cfg.Writer,
		outputBucket: cfg.OutputBucket,
		logger:       logger,
	}
}

// OutputKey returns the artifact key for an input key and resolved language.
func OutputKey(inputKey, code string) string {
	base := path.Base(inputKey)
	base = strings.TrimSuffix(base, path.Ext(base))
	return domain.OutputPrefix + base + "_" + code + ".txt"
}

// run tracks the state of a single invocation.
type run struct {
	state  State
	result Result
	logger *logrus.Entry
}

func (r *run) enter(s State) {
	r.logger.WithFields(logrus.Fields{"from": r.state, "to": s}).Debug("state transition")
	r.state = s
}

func (r *run) fail(stage string, err error) Result {
	r.logger.WithFields(logrus.Fields{
		"stage": stage,
		"state": r.state,
		"error": err.Error(),
	}).Error("translation pipeline failed")

	r.state = StateFailed
	r.result.Status = StateFailed
	r.result.Stage = stage
	r.result.Message = err.Error()
	r.result.err = err
	return r.result
}

// Process runs the pipeline for one uploaded object. Every failure is
// logged and reported in the returned Result.
func (o *Orchestrator) Process(ctx context.Context, bucket, key string) (result Result) {
	r := &run{
		state:  StateReceived,
		result: Result{InputKey: key},
		logger: o.logger.WithFields(logrus.Fields{"bucket": bucket, "key": key}),
	}
	defer func() {
		if p := recover(); p != nil {
			result = r.fail(r.stageOf(), fmt.Errorf("panic: %v", p))
		}
	}()

	r.enter(StateExtracting)
	meta, err := o.metadata.HeadMetadata(ctx, bucket, key)
	if err != nil {
		return r.fail(StageExtract, fmt.Errorf("read metadata: %w", err))
	}
	doc := domain.SourceDocument{Bucket: bucket, Key: key, Metadata: meta}
	code := language.Resolve(doc.TargetLanguage())
	r.result.TargetLanguage = code
	r.logger = r.logger.WithField("target_language", code)
	if !language.Known(doc.TargetLanguage()) {
		r.logger.Warn("unrecognised target language, passing through")
	}

	text, err := o.extractor.Extract(ctx, doc)
	if err != nil {
		return r.fail(StageExtract, err)
	}
	r.logger.WithField("chars", utf8.RuneCountInString(text)).Info("text extracted")

	r.enter(StateBounding)
	bounded := summarize.Bound(text, summarize.DefaultLimit)

	r.enter(StateTranslating)
	translated, err := o.translator.Translate(ctx, bounded, code, domain.SourceLanguage)
	if err != nil {
		return r.fail(StageTranslate, err)
	}

	r.enter(StatePersisting)
	artifact := domain.TranslatedArtifact{
		Key:         OutputKey(key, code),
		Content:     []byte(translated),
		ContentType: domain.ArtifactContentType,
		Metadata: map[string]string{
			domain.MetaOriginalFile:   key,
			domain.MetaTargetLanguage: code,
			domain.MetaSourceLanguage: domain.SourceLanguage,
		},
	}
	err = o.writer.PutObject(ctx, o.outputBucket, artifact.Key, artifact.Content, artifact.ContentType, artifact.Metadata)
	if err != nil {
		return r.fail(StagePersist, fmt.Errorf("%w: %w", ErrPersistFailed, err))
	}

	r.enter(StateCompleted)
	r.result.Status = StateCompleted
	r.result.OutputKey = artifact.Key
	r.logger.WithField("output_key", artifact.Key).Info("translation completed")
	return r.result
}

// stageOf maps the current state to the stage reported on failure.
func (r *run) stageOf() string {
	switch r.state {
	case StateBounding:
		return StageBound
	case StateTranslating:
		return StageTranslate
	case StatePersisting, StateCompleted:
		return StagePersist
	default:
		return StageExtract
	}
}
