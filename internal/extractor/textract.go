package extractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Textract detects text in S3 objects with Amazon Textract.
type Textract struct {
	client TextractAPI
}

// NewTextract creates a Textract detector.
func NewTextract(client TextractAPI) *Textract {
	return &Textract{client: client}
}

// DetectText returns every block Textract finds, in service order.
func (t *Textract) DetectText(ctx context.Context, bucket, key string) ([]Block, error) {
	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("textract detect %s/%s: %w", bucket, key, err)
	}
	if out == nil {
		return nil, errors.New("textract returned no response")
	}

	blocks := make([]Block, 0, len(out.Blocks))
	for _, b := range out.Blocks {
		blocks = append(blocks, Block{
			Type: string(b.BlockType),
			Text: aws.ToString(b.Text),
		})
	}
	return blocks, nil
}

var _ TextDetector = (*Textract)(nil)
