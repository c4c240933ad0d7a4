// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pricofy/document-translator/internal/storage"
	"github.com/pricofy/document-translator/internal/translator"
)

// Config keys. Each is read from the upper-cased environment variable.
const (
	KeyEnvironment      = "environment"
	KeyLogLevel         = "log_level"
	KeyInputBucket      = "input_bucket"
	KeyOutputBucket     = "output_bucket"
	KeyStoreBackend     = "store_backend"
	KeyMinIOEndpoint    = "minio_endpoint"
	KeyMinIOAccessKey   = "minio_access_key"
	KeyMinIOSecretKey   = "minio_secret_key"
	KeyMinIOSecure      = "minio_secure"
	KeyTranslateWorkers = "translate_workers"
	KeyPresignTTL       = "presign_ttl"
)

// Config is the runtime configuration shared by every binary.
type Config struct {
	Environment      string
	LogLevel         string
	InputBucket      string
	OutputBucket     string
	Storage          storage.Options
	TranslateWorkers int
	PresignTTL       time.Duration
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyEnvironment, "dev")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyInputBucket, "")
	v.SetDefault(KeyOutputBucket, "")
	v.SetDefault(KeyStoreBackend, storage.BackendS3)
	v.SetDefault(KeyMinIOEndpoint, "")
	v.SetDefault(KeyMinIOAccessKey, "")
	v.SetDefault(KeyMinIOSecretKey, "")
	v.SetDefault(KeyMinIOSecure, true)
	v.SetDefault(KeyTranslateWorkers, translator.DefaultWorkers)
	v.SetDefault(KeyPresignTTL, time.Hour)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper builds a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:  v.GetString(KeyEnvironment),
		LogLevel:     v.GetString(KeyLogLevel),
		InputBucket:  v.GetString(KeyInputBucket),
		OutputBucket: v.GetString(KeyOutputBucket),
		Storage: storage.Options{
			Backend:   v.GetString(KeyStoreBackend),
			Endpoint:  v.GetString(KeyMinIOEndpoint),
			AccessKey: v.GetString(KeyMinIOAccessKey),
			SecretKey: v.GetString(KeyMinIOSecretKey),
			Secure:    v.GetBool(KeyMinIOSecure),
		},
		TranslateWorkers: v.GetInt(KeyTranslateWorkers),
		PresignTTL:       v.GetDuration(KeyPresignTTL),
	}

	if cfg.TranslateWorkers <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", strings.ToUpper(KeyTranslateWorkers), cfg.TranslateWorkers)
	}
	if cfg.PresignTTL <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", strings.ToUpper(KeyPresignTTL), cfg.PresignTTL)
	}
	return cfg, nil
}

// RequireOutputBucket checks the processor's mandatory setting.
func (c *Config) RequireOutputBucket() error {
	if c.OutputBucket == "" {
		return fmt.Errorf("%s is required", strings.ToUpper(KeyOutputBucket))
	}
	return nil
}

// RequireInputBucket checks the upload API's mandatory setting.
func (c *Config) RequireInputBucket() error {
	if c.InputBucket == "" {
		return fmt.Errorf("%s is required", strings.ToUpper(KeyInputBucket))
	}
	return nil
}
