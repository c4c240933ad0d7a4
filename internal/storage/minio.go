package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO is a Store for S3-compatible servers, used for local runs.
type MinIO struct {
	client *minio.Client
}

// NewMinIO connects to a MinIO endpoint with static credentials.
func NewMinIO(endpoint, accessKey, secretKey string, secure bool) (*MinIO, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("minio backend requires an endpoint")
	}
	c, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIO{client: c}, nil
}

func (m *MinIO) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get minio://%s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read minio://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

func (m *MinIO) HeadMetadata(ctx context.Context, bucket, key string) (map[string]string, error) {
	info, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat minio://%s/%s: %w", bucket, key, err)
	}
	return normalizeMetadata(info.UserMetadata), nil
}

func (m *MinIO) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("put minio://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *MinIO) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var objects []Object
	for info := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list minio://%s/%s: %w", bucket, prefix, info.Err)
		}
		objects = append(objects, Object{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	return objects, nil
}

func (m *MinIO) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign minio://%s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

var _ Store = (*MinIO)(nil)
