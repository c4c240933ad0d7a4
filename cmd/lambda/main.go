// Package main is the entry point for the document processor Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/app"
	"github.com/pricofy/document-translator/internal/config"
	"github.com/pricofy/document-translator/internal/handler"
	"github.com/pricofy/document-translator/internal/logging"
	"github.com/pricofy/document-translator/internal/warmup"
)

const service = "document-processor"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)
	logger := logging.New(service, cfg.Environment)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("startup failed")
	}
	processor, err := a.Processor()
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("startup failed")
	}

	fn := &function{
		warmer:  a.Warmer(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")),
		handler: handler.New(processor, logger),
		logger:  logger,
	}
	lambda.Start(fn.handleRequest)
}

type function struct {
	warmer  *warmup.Warmer
	handler *handler.Handler
	logger  *logrus.Entry
}

func (f *function) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if ev, ok := warmup.Detect(event); ok {
		return f.warmer.Handle(ctx, ev)
	}

	var s3Event events.S3Event
	if err := json.Unmarshal(event, &s3Event); err != nil {
		f.logger.WithField("error", err.Error()).Error("invalid event payload")
		return nil, err
	}

	return f.handler.Handle(ctx, s3Event)
}
