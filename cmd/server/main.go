package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/platform/cache"
	"github.com/p-n-ai/pai-courses/internal/platform/config"
	"github.com/p-n-ai/pai-courses/internal/platform/database"
	"github.com/p-n-ai/pai-courses/internal/render"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app is the wired server and everything it holds open.
type app struct {
	server   *site.Server
	reloader *site.Reloader
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup connects the optional cache and database, then loads the first
// snapshot. A cache that cannot be reached is logged and skipped.
func setup(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	hub := site.NewHub()
	opts := []site.Option{site.WithHub(hub), site.WithDefaultLocale(cfg.DefaultLocale)}

	if cfg.UseCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("page cache disabled", "error", err)
		} else {
			a.closers = append(a.closers, func() { c.Close() })
			opts = append(opts, site.WithPageCache(site.NewRedisPageCache(c.Client, cfg.Cache.TTL)))
		}
	}

	var src site.Source = site.DirSource{Root: cfg.Content.Path}
	if cfg.Content.Source == config.SourcePostgres {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store, err := content.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		src = site.PostgresSource{Root: cfg.Content.Path, Store: store}
	}

	a.server = site.NewServer(render.Builtins(), opts...)
	a.reloader = site.NewReloader(src, a.server)
	if err := a.reloader.Reload(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return a, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Content.Watch {
		go func() {
			if err := site.Watch(ctx, cfg.Content.Path, a.reloader.Reload); err != nil {
				slog.Error("watcher stopped", "error", err)
			}
		}()
	}

	// No WriteTimeout: /ws connections stay open.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "default_locale", cfg.DefaultLocale)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
