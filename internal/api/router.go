// Package api serves the upload and listing endpoints behind API Gateway.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/domain"
	"github.com/pricofy/document-translator/internal/storage"
)

// Store is the object storage the API reads and writes.
type Store interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error
	List(ctx context.Context, bucket, prefix string) ([]storage.Object, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// Config configures a Router.
type Config struct {
	InputBucket  string
	OutputBucket string
	PresignTTL   time.Duration
}

// Router routes API Gateway proxy requests by path.
type Router struct {
	store  Store
	cfg    Config
	logger *logrus.Entry
	now    func() time.Time
	newID  func() string
}

// New creates a Router.
func New(store Store, cfg Config, logger *logrus.Entry) *Router {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = time.Hour
	}
	return &Router{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Route dispatches req. Failures are reported as JSON error responses,
// never as a returned error.
func (r *Router) Route(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return preflight(), nil
	}

	switch {
	case strings.HasSuffix(req.Path, "/upload"):
		return r.upload(ctx, req), nil
	case strings.HasSuffix(req.Path, "/list"):
		return r.list(ctx), nil
	default:
		r.logger.WithField("path", req.Path).Warn("unknown path")
		return errorResponse(http.StatusNotFound, fmt.Sprintf("Not found: %s", req.Path)), nil
	}
}

// upload stores a base64-encoded document in the input bucket with the
// metadata the pipeline reads.
func (r *Router) upload(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "request body is not valid base64")
		}
		body = string(decoded)
	}

	var upload domain.UploadRequest
	if err := json.Unmarshal([]byte(body), &upload); err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if err := validateUpload(upload); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}

	data, err := decodeFileContent(upload.FileContent)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}

	key := r.uploadKey(upload.FileName)
	contentType := mimetype.Detect(data).String()
	logger := r.logger.WithFields(logrus.Fields{
		"bucket":          r.cfg.InputBucket,
		"key":             key,
		"target_language": upload.TargetLanguage,
		"content_type":    contentType,
		"bytes":           len(data),
	})

	err = r.store.PutObject(ctx, r.cfg.InputBucket, key, data, contentType, map[string]string{
		domain.MetaTargetLanguage:   upload.TargetLanguage,
		domain.MetaOriginalFilename: upload.FileName,
	})
	if err != nil {
		logger.WithField("error", err.Error()).Error("upload failed")
		return errorResponse(http.StatusInternalServerError, err.Error())
	}

	logger.Info("upload stored")
	return jsonResponse(http.StatusOK, domain.UploadResponse{
		Message: "File uploaded successfully",
		Key:     key,
	})
}

// list returns every translated artifact with a presigned download URL.
func (r *Router) list(ctx context.Context) events.APIGatewayProxyResponse {
	objects, err := r.store.List(ctx, r.cfg.OutputBucket, domain.OutputPrefix)
	if err != nil {
		r.logger.WithField("error", err.Error()).Error("list failed")
		return errorResponse(http.StatusInternalServerError, err.Error())
	}

	files := make([]domain.ListedFile, 0, len(objects))
	for _, obj := range objects {
		// Skip the folder placeholder
		if obj.Key == domain.OutputPrefix {
			continue
		}

		url, err := r.store.PresignGet(ctx, r.cfg.OutputBucket, obj.Key, r.cfg.PresignTTL)
		if err != nil {
			r.logger.WithFields(logrus.Fields{"key": obj.Key, "error": err.Error()}).Warn("presign failed, skipping file")
			continue
		}
		files = append(files, domain.ListedFile{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified.UTC().Format(time.RFC3339),
			DownloadURL:  url,
		})
	}

	r.logger.WithField("count", len(files)).Info("listed translated files")
	return jsonResponse(http.StatusOK, domain.ListResponse{Files: files})
}

// uploadKey returns "<YYYYMMDD_HHMMSS>_<8 hex>_<fileName>".
func (r *Router) uploadKey(fileName string) string {
	id := r.newID()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s", r.now().Format("20060102_150405"), id, fileName)
}

// validateUpload checks the required upload fields.
func validateUpload(req domain.UploadRequest) error {
	if req.FileContent == "" {
		return fmt.Errorf("fileContent is required")
	}
	if req.FileName == "" {
		return fmt.Errorf("fileName is required")
	}
	if req.TargetLanguage == "" {
		return fmt.Errorf("targetLanguage is required")
	}
	return nil
}

// decodeFileContent decodes base64 content, dropping a data URL prefix.
func decodeFileContent(content string) ([]byte, error) {
	if i := strings.Index(content, ","); i >= 0 {
		content = content[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("fileContent is not valid base64: %w", err)
	}
	return data, nil
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin": "*",
	}
}

func preflight() events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Access-Control-Allow-Headers"] = "Content-Type"
	headers["Access-Control-Allow-Methods"] = "POST, GET, OPTIONS"
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers}
}

func jsonResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, fmt.Sprintf("failed to marshal response: %v", err))
	}
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(payload)}
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	payload, _ := json.Marshal(domain.ErrorResponse{Error: msg})
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(payload)}
}
