// Package handler provides the Lambda handler for S3 "object created" events.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/pipeline"
)

// ErrAllFailed is returned when no record of an event was processed.
var ErrAllFailed = errors.New("all records failed")

// Processor runs one pipeline invocation.
type Processor interface {
	Process(ctx context.Context, bucket, key string) pipeline.Result
}

// Response is the output of one event.
type Response struct {
	Results []pipeline.Result `json:"results"`
	Error   string            `json:"error,omitempty"`
}

// Handler dispatches S3 event records to the pipeline.
type Handler struct {
	processor Processor
	logger    *logrus.Entry
}

// New creates a Handler.
func New(processor Processor, logger *logrus.Entry) *Handler {
	return &Handler{processor: processor, logger: logger}
}

// Handle processes every record of event independently, in order.
// The returned error is non-nil only when every record failed, so the
// event source can re-deliver.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (*Response, error) {
	if err := validateEvent(event); err != nil {
		return &Response{Error: err.Error()}, nil
	}

	resp := &Response{Results: make([]pipeline.Result, 0, len(event.Records))}
	failed := 0

	for i, record := range event.Records {
		key, err := decodeKey(record.S3.Object.Key)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"record": i,
				"key":    record.S3.Object.Key,
				"error":  err.Error(),
			}).Error("invalid object key")
			resp.Results = append(resp.Results, pipeline.Result{
				Status:   pipeline.StateFailed,
				Stage:    pipeline.StageExtract,
				Message:  err.Error(),
				InputKey: record.S3.Object.Key,
			})
			failed++
			continue
		}

		h.logger.WithFields(logrus.Fields{
			"bucket": record.S3.Bucket.Name,
			"key":    key,
		}).Info("processing file")

		result := h.processor.Process(ctx, record.S3.Bucket.Name, key)
		if !result.OK() {
			failed++
		}
		resp.Results = append(resp.Results, result)
	}

	if failed == len(event.Records) {
		return resp, fmt.Errorf("%w: %d of %d", ErrAllFailed, failed, len(event.Records))
	}
	return resp, nil
}

// validateEvent checks the event carries something to process.
func validateEvent(event events.S3Event) error {
	if len(event.Records) == 0 {
		return fmt.Errorf("event has no records")
	}
	for i, record := range event.Records {
		if record.S3.Bucket.Name == "" {
			return fmt.Errorf("record %d: bucket name is required", i)
		}
		if record.S3.Object.Key == "" {
			return fmt.Errorf("record %d: object key is required", i)
		}
	}
	return nil
}

// decodeKey undoes the form encoding S3 applies to keys in notifications.
func decodeKey(key string) (string, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("decode key %q: %w", key, err)
	}
	return decoded, nil
}
