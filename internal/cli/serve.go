package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"postdigest/internal/config"
	"postdigest/internal/dashboard"
	"postdigest/internal/scheduler"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the operator dashboard",
	RunE:  serveAction,
}

func serveAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(os.Stdout, cfg.Level())
	start := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.ErrorContext(ctx, "Failed to close app",
				"error", err)
		}
	}()

	if spec := strings.TrimSpace(cfg.AutoRefreshSpec); spec != "" {
		sched, err := scheduler.New(ctx, spec, a.monitor, log)
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}

		if err = sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	srv := dashboard.New(dashboard.Config{
		Addr:     cfg.HTTPAddr,
		Password: cfg.AppPassword,
	}, a.monitor, a.db, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutdown signal is received",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}

	log.InfoContext(shutdownCtx, "Dashboard is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}
