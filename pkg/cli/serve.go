package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/langmgr/pkg/api"
	"github.com/platinummonkey/langmgr/pkg/config"
	"github.com/platinummonkey/langmgr/pkg/g2p/loader"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *Command {
	cmd := &Command{
		Name:        "serve",
		Description: "Serve the registry and conversions over HTTP",
		Flags:       flag.NewFlagSet("serve", flag.ContinueOnError),
	}
	addr := cmd.Flags.String("addr", "", "Listen address (overrides LANGMGR_HTTP_ADDR)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if *addr != "" {
			cfg.Server.Addr = *addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := NewApp(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		return runServe(ctx, app)
	}

	return cmd
}

// runServe serves until ctx ends, then shuts the HTTP server down gracefully
func runServe(ctx context.Context, app *App) error {
	cfg := app.Config

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(api.Options{
			Manager:   app.Manager,
			Processor: app.Processor,
			Languages: app.Descriptors,
			Registry:  app.Registry,
			Metrics:   app.Metrics,
			Log:       app.Log,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	if cfg.Engines.Watch {
		watcher, err := loader.NewWatcher(app.Loader, app.Manager)
		if err != nil {
			return fmt.Errorf("failed to start engine watcher: %w", err)
		}
		defer watcher.Close()

		eg.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	eg.Go(func() error {
		app.Log.Infof("Starting langmgr server on %s with %d engines", cfg.Server.Addr, app.Manager.Count())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		app.Log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
