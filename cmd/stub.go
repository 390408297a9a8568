package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/swatch/internal/server"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Stub serves the in-memory development API until the context is cancelled.
func (r *Runner) Stub(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Stub
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.Bool("auto-verify") {
		cfg.AutoVerify = true
	}

	logger := shared.WithLogger(r.logger, "component", "stub")
	stub := server.NewStubAPI(logger, server.WithAutoVerify(cfg.AutoVerify))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("stub API listening", "addr", "http://"+cfg.Addr(), "auto_verify", cfg.AutoVerify)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down stub API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
