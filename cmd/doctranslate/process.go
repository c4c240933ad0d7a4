package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricofy/document-translator/internal/app"
	"github.com/pricofy/document-translator/internal/config"
	"github.com/pricofy/document-translator/internal/logging"
)

func newProcessCmd(v *viper.Viper) *cobra.Command {
	var bucket, key string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Translate one stored document",
		Long: `Translate one stored document and print the result as JSON.

The target language is read from the object's target-language metadata.
The command exits non-zero when the document could not be translated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = cfg.InputBucket
			}
			if bucket == "" {
				return fmt.Errorf("--bucket or INPUT_BUCKET is required")
			}

			// Logs go to stderr so stdout carries only the result
			logging.InitWithOutput(cfg.LogLevel, os.Stderr)
			logger := logging.New("doctranslate", cfg.Environment)

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			processor, err := a.Processor()
			if err != nil {
				return err
			}

			result := processor.Process(cmd.Context(), bucket, key)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("%s failed: %s", result.Stage, result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket holding the document (default: INPUT_BUCKET)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Object key of the document (required)")
	cmd.Flags().String("output-bucket", "", "Bucket for the translated artifact (default: OUTPUT_BUCKET)")
	cmd.Flags().Int("workers", 0, "Concurrent translation calls (default: TRANSLATE_WORKERS)")
	_ = cmd.MarkFlagRequired("key")

	if err := v.BindPFlag(config.KeyOutputBucket, cmd.Flags().Lookup("output-bucket")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag(config.KeyTranslateWorkers, cmd.Flags().Lookup("workers")); err != nil {
		panic(err)
	}
	return cmd
}
