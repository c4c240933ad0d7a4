// Package app builds the production components from configuration.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/api"
	"github.com/pricofy/document-translator/internal/config"
	"github.com/pricofy/document-translator/internal/extractor"
	"github.com/pricofy/document-translator/internal/pipeline"
	"github.com/pricofy/document-translator/internal/storage"
	"github.com/pricofy/document-translator/internal/translator"
	"github.com/pricofy/document-translator/internal/warmup"
)

// App holds the shared AWS configuration and runtime settings.
type App struct {
	AWS    aws.Config
	Config *config.Config
	Logger *logrus.Entry
}

// New loads the default AWS configuration.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &App{AWS: awsCfg, Config: cfg, Logger: logger}, nil
}

// Store returns the configured object store.
func (a *App) Store() (storage.Store, error) {
	var client storage.S3API
	if b := a.Config.Storage.Backend; b == "" || strings.EqualFold(b, storage.BackendS3) {
		client = s3.NewFromConfig(a.AWS)
	}
	store, err := storage.New(a.Config.Storage, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

// Processor returns the pipeline orchestrator used by the processor Lambda
// and the CLI.
func (a *App) Processor() (*pipeline.Orchestrator, error) {
	if err := a.Config.RequireOutputBucket(); err != nil {
		return nil, err
	}

	store, err := a.Store()
	if err != nil {
		return nil, err
	}

	ext := extractor.New(store, a.detector())
	tr := translator.New(
		translator.NewAmazonProvider(translate.NewFromConfig(a.AWS)),
		translator.WithWorkers(a.Config.TranslateWorkers),
	)

	return pipeline.New(pipeline.Config{
		Metadata:     store,
		Extractor:    ext,
		Translator:   tr,
		Writer:       store,
		OutputBucket: a.Config.OutputBucket,
		Logger:       a.Logger,
	}), nil
}

// detector returns the OCR backend. Textract reads only from S3, so other
// storage backends get none and images and PDFs fail extraction.
func (a *App) detector() extractor.TextDetector {
	if b := a.Config.Storage.Backend; b != "" && !strings.EqualFold(b, storage.BackendS3) {
		return nil
	}
	return extractor.NewTextract(textract.NewFromConfig(a.AWS))
}

// Router returns the upload and listing API.
func (a *App) Router() (*api.Router, error) {
	if err := a.Config.RequireInputBucket(); err != nil {
		return nil, err
	}
	if err := a.Config.RequireOutputBucket(); err != nil {
		return nil, err
	}

	store, err := a.Store()
	if err != nil {
		return nil, err
	}

	return api.New(store, api.Config{
		InputBucket:  a.Config.InputBucket,
		OutputBucket: a.Config.OutputBucket,
		PresignTTL:   a.Config.PresignTTL,
	}, a.Logger), nil
}

// Warmer returns a warmer that self-invokes functionName.
func (a *App) Warmer(functionName string) *warmup.Warmer {
	return warmup.New(lambdasdk.NewFromConfig(a.AWS), functionName)
}
