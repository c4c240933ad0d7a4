// Package main is the entry point for the upload and listing API Lambda.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/pricofy/document-translator/internal/api"
	"github.com/pricofy/document-translator/internal/app"
	"github.com/pricofy/document-translator/internal/config"
	"github.com/pricofy/document-translator/internal/logging"
	"github.com/pricofy/document-translator/internal/warmup"
)

const service = "document-api"

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
	router, err := a.Router()
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("startup failed")
	}

	fn := &function{
		warmer: a.Warmer(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")),
		router: router,
	}
	lambda.Start(fn.handleRequest)
}

type function struct {
	warmer *warmup.Warmer
	router *api.Router
}

func (f *function) handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if ev, ok := warmup.Detect(event); ok {
		return f.warmer.Handle(ctx, ev)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return f.router.Route(ctx, req)
}
