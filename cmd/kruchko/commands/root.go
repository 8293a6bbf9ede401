package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DeniskaUa/ai-web-kruchko/internal/config"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "kruchko",
	Short: "AI image tools - proxy server and command-line client",
	Long: `Runs hosted image models (background removal, colorization, OCR, captioning,
stickers, text-to-image and more) behind one JSON route per tool, and drives
those routes from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("server-url", "http://localhost:8080", "Proxy base URL used by client commands")
	rootCmd.PersistentFlags().String("download-dir", ".artifacts/downloads", "Directory for downloaded results")
	rootCmd.PersistentFlags().String("history-driver", "sqlite", "Invocation history driver (sqlite, mysql)")
	rootCmd.PersistentFlags().String("history-dsn", "", "Invocation history DSN, empty disables history")
	rootCmd.PersistentFlags().String("s3-bucket", "", "S3 bucket for archived results, empty keeps them local")
	rootCmd.PersistentFlags().String("s3-region", "us-east-1", "S3 region")
	rootCmd.PersistentFlags().String("s3-prefix", "results", "Key prefix for archived results")
	rootCmd.PersistentFlags().String("fsm-db-path", ".artifacts/fsm", "FSM BoltDB directory")
	rootCmd.PersistentFlags().Int64("max-image-size", 5*1024*1024, "Max image size in bytes")

	for _, name := range []string{
		"log-level", "server-url", "download-dir", "history-driver", "history-dsn",
		"s3-bucket", "s3-region", "s3-prefix", "fsm-db-path", "max-image-size",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// setupLogging swaps the default logger once the configured level is known.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

// loadConfig loads and validates configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config invalid")
	}
	return cfg, nil
}
