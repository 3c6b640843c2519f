package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagProvider  string
	flagRateLimit int
	flagLogLevel  string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bucketsweep",
	Short: "Clean up aged objects in cloud object storage",
	Long: `bucketsweep scans Aliyun OSS or Tencent COS buckets, matches
objects by bucket regex, key glob, and age, and deletes the matches in
batches after confirmation.

Credentials come from the environment (or a .env file):
  aliyun:  ALIYUN_ACCESS_KEY_ID, ALIYUN_ACCESS_KEY_SECRET, ALIYUN_REGION
  tencent: TENCENT_SECRET_ID, TENCENT_SECRET_KEY, TENCENT_REGION`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return setupLogger(flagLogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "aliyun", "storage provider (aliyun or tencent)")
	rootCmd.PersistentFlags().IntVar(&flagRateLimit, "rate-limit", 100, "provider API requests per second")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func setupLogger(level string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return nil
}
