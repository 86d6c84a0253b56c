package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goapi-io/goapi-idx/internal/api"
	"github.com/goapi-io/goapi-idx/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "IDX 게이트웨이 서버 시작",
	Long: `Start a read-only HTTP gateway in front of the IDX endpoints.

The API key stays on the server; callers only see JSON.

Endpoints:
  GET  /health
  GET  /api/idx/companies
  GET  /api/idx/prices?symbols=BBCA,TLKM
  GET  /api/idx/trending
  GET  /api/idx/top-gainers
  GET  /api/idx/top-losers
  GET  /api/idx/indices
  GET  /api/idx/e-ipo
  GET  /api/idx/indicators?page=&date=
  GET  /api/idx/{symbol}/historical?from=&to=
  GET  /api/idx/{symbol}/broker-summary?date=

Example:
  go run ./cmd/idx serve
  go run ./cmd/idx serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort string
)

// shutdownTimeout bounds graceful shutdown
const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "게이트웨이 포트 (기본값: PORT 환경변수)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, client, err := setup()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
		"cors": cfg.CORSOrigins,
	}).Info("Initializing IDX gateway")

	idxHandler := handlers.NewIDXHandler(client, log)
	router := api.NewRouter(idxHandler, log, cfg.CORSOrigins)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Gateway running on http://localhost:%s\nPress Ctrl+C to stop\n", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}

	log.Info("Gateway stopped")
	return nil
}
