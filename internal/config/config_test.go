package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Storage.Backend != "s3" {
		t.Errorf("Storage.Backend = %q, want s3", cfg.Storage.Backend)
	}
	if cfg.TranslateWorkers != 4 {
		t.Errorf("TranslateWorkers = %d, want 4", cfg.TranslateWorkers)
	}
	if cfg.PresignTTL != time.Hour {
		t.Errorf("PresignTTL = %v, want 1h", cfg.PresignTTL)
	}
	if !cfg.Storage.Secure {
		t.Error("Storage.Secure should default to true")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("INPUT_BUCKET", "translate-input")
	t.Setenv("OUTPUT_BUCKET", "translate-output")
	t.Setenv("STORE_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_SECURE", "false")
	t.Setenv("TRANSLATE_WORKERS", "8")
	t.Setenv("PRESIGN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Environment != "prod" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.InputBucket != "translate-input" || cfg.OutputBucket != "translate-output" {
		t.Errorf("buckets = %q, %q", cfg.InputBucket, cfg.OutputBucket)
	}
	if cfg.Storage.Backend != "minio" || cfg.Storage.Endpoint != "localhost:9000" || cfg.Storage.Secure {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.TranslateWorkers != 8 {
		t.Errorf("TranslateWorkers = %d", cfg.TranslateWorkers)
	}
	if cfg.PresignTTL != 15*time.Minute {
		t.Errorf("PresignTTL = %v", cfg.PresignTTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero workers", "TRANSLATE_WORKERS", "0"},
		{"negative ttl", "PRESIGN_TTL", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should have returned error", tt.key, tt.value)
			}
		})
	}
}

func TestRequireBuckets(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireOutputBucket(); err == nil || err.Error() != "OUTPUT_BUCKET is required" {
		t.Errorf("RequireOutputBucket() = %v", err)
	}
	if err := cfg.RequireInputBucket(); err == nil || err.Error() != "INPUT_BUCKET is required" {
		t.Errorf("RequireInputBucket() = %v", err)
	}

	cfg = &Config{InputBucket: "in", OutputBucket: "out"}
	if cfg.RequireOutputBucket() != nil || cfg.RequireInputBucket() != nil {
		t.Error("buckets set, no error expected")
	}
}
