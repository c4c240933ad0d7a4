// Package storage provides object storage backends for uploaded documents and
// translated artifacts.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Object is a listed object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is an object store.
type Store interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	HeadMetadata(ctx context.Context, bucket, key string) (map[string]string, error)
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// Backend names accepted by New.
const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// MinIO only
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// New creates the store named by opts.Backend. s3Client is used for the
// S3 backend and may be nil otherwise.
func New(opts Options, s3Client S3API) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendS3:
		if s3Client == nil {
			return nil, fmt.Errorf("s3 backend requires a client")
		}
		return NewS3(s3Client), nil
	case BackendMinIO:
		return NewMinIO(opts.Endpoint, opts.AccessKey, opts.SecretKey, opts.Secure)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
}

// normalizeMetadata lower-cases metadata keys; backends differ in casing.
func normalizeMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
