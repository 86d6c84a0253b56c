package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goapi-io/goapi-idx/internal/idx"
	"github.com/goapi-io/goapi-idx/pkg/config"
	"github.com/goapi-io/goapi-idx/pkg/httputil"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

var (
	// Global flags
	jsonOutput bool
	retries    int
	verbose    bool
)

// retryDelay is the first backoff step when --retries is set
const retryDelay = 500 * time.Millisecond

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "idx",
	Short: "GoAPI.io IDX market data client",
	Long: `IDX Unified CLI

Indonesia Stock Exchange data from GoAPI.io.
Set GOAPI_API_KEY in the environment or in .env before running.

Usage:
  go run ./cmd/idx [command]

Examples:
  go run ./cmd/idx companies
  go run ./cmd/idx prices BBCA TLKM
  go run ./cmd/idx historical BBCA --from 2024-01-01 --to 2024-01-31
  go run ./cmd/idx serve --port 8089`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context, aborting in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "retry 5xx/429 responses up to N times")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads config and builds the logger and IDX client shared by every command
func setup() (*config.Config, *logger.Logger, *idx.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	transport := httputil.New(cfg, log)
	if retries > 0 {
		transport = transport.WithRetry(retries, retryDelay)
	}

	return cfg, log, idx.New(transport, log), nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(idx.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}
