package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compozy/pyqs-uploader/internal/handler"
	"github.com/compozy/pyqs-uploader/internal/routes"
	"github.com/compozy/pyqs-uploader/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer func() { _ = c.logger.Sync() }()
			if addr != "" {
				c.cfg.ListenAddr = addr
			}
			uploads, err := c.uploadOrchestrator()
			if err != nil {
				return fmt.Errorf("failed to initialize upload workflow: %w", err)
			}
			srv, err := handler.New(uploads, handler.Config{
				UploadTimeout:  c.cfg.UploadTimeout,
				MaxUploadBytes: c.cfg.MaxUploadBytes,
			}, c.logger)
			if err != nil {
				return err
			}
			httpServer := &http.Server{
				Addr:              c.cfg.ListenAddr,
				Handler:           routes.SetupRoutes(srv, c.logger),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       c.cfg.UploadTimeout,
				WriteTimeout:      c.cfg.UploadTimeout + 15*time.Second,
				IdleTimeout:       60 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, httpServer, c.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr and PORT)")
	return cmd
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", version.Summary()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
