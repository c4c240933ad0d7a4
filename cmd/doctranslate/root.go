package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricofy/document-translator/internal/config"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:   "doctranslate",
		Short: "Translate stored documents",
		Long: `Run the document translation pipeline against a stored object.

Text is extracted from .txt files directly and from .pdf, .png, .jpg and
.jpeg files with OCR, bounded, translated from English and written to the
output bucket under translated/.

Settings come from the environment (INPUT_BUCKET, OUTPUT_BUCKET,
STORE_BACKEND, ...) and may be overridden with flags. OCR reads from S3,
so with --backend minio only .txt documents can be translated.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("backend", "s3", "Storage backend (s3, minio)")
	root.PersistentFlags().String("minio-endpoint", "", "MinIO endpoint host:port")
	bindFlag(v, root, config.KeyLogLevel, "log-level")
	bindFlag(v, root, config.KeyStoreBackend, "backend")
	bindFlag(v, root, config.KeyMinIOEndpoint, "minio-endpoint")

	root.AddCommand(newProcessCmd(v), newLanguagesCmd())
	return root
}

// bindFlag makes a persistent flag override the config key it names.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}
