package screenlore

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenlore/go-screenlore/pkg/server"
)

var (
	serverHost string
	serverPort int
	serverMode string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the screenlore HTTP server",
	Long: `Start the HTTP server exposing the question-answering API.

Endpoints:
- POST /api/query            answer a question
- POST /api/query/baseline   answer with the lexical baseline only
- POST /admin/reload         reload graph artifacts from disk
- GET  /health, /ready       health checks`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Server port (overrides config)")
	serverCmd.Flags().StringVar(&serverMode, "mode", "", "Gin mode: debug, release, test")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if serverMode != "" {
		cfg.Server.Mode = serverMode
	}

	log := newLogger(cfg)
	svc, cleanup := buildService(cfg, log)
	defer cleanup()

	srv := server.New(cfg, svc, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
