package translator

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// TranslateAPI is the subset of the Amazon Translate client used here.
type TranslateAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AmazonProvider sends text to Amazon Translate.
type AmazonProvider struct {
	client TranslateAPI
}

// NewAmazonProvider creates an AmazonProvider.
func NewAmazonProvider(client TranslateAPI) *AmazonProvider {
	return &AmazonProvider{client: client}
}

// Translate translates a single request. text must fit the service limit.
func (p *AmazonProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := p.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceLang),
		TargetLanguageCode: aws.String(targetLang),
	})
	if err != nil {
		return "", fmt.Errorf("amazon translate %s→%s: %w", sourceLang, targetLang, err)
	}
	return aws.ToString(out.TranslatedText), nil
}

var _ Provider = (*AmazonProvider)(nil)
