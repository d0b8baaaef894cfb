package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/handlers"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API",
	Long: `The serve command loads the content snapshot, starts the periodic
revalidation and serves the landing page API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	if cfg.RevalidateToken == "" {
		return errors.New("serve requires REVALIDATE_TOKEN")
	}
	site, err := config.LoadSite(cfg.SiteConfigPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	var snapshots service.SnapshotStore
	if store != nil {
		defer store.Close()
		snapshots = store
	}

	svc := service.New(newCMSClient(cfg), snapshots, site, serviceOptions(cfg))
	if err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}
	go svc.Run(ctx)

	if cfg.SiteConfigPath != "" {
		go watchSite(ctx, cfg.SiteConfigPath, svc)
	}

	router, stopLimiter := handlers.NewRouter(handlers.RouterConfig{
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		RevalidateToken:    cfg.RevalidateToken,
		PublicRateLimit:    cfg.PublicRateLimit,
		PublicRateWindow:   cfg.PublicRateWindow,
	}, handlers.NewLandingHandler(svc))
	defer stopLimiter()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Default().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// watchSite reloads the site file when it changes. The directory is watched
// so editors that replace the file on save are still picked up.
func watchSite(ctx context.Context, path string, svc *service.Service) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create site watcher", "error", err)
		return
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		logger.Error("failed to watch site config", "path", abs, "error", err)
		return
	}

	var (
		reload   *time.Timer
		debounce = 500 * time.Millisecond
	)
	defer func() {
		if reload != nil {
			reload.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if reload != nil {
				reload.Stop()
			}
			reload = time.AfterFunc(debounce, func() {
				site, err := config.LoadSite(abs)
				if err != nil {
					if !errors.Is(err, os.ErrNotExist) {
						logger.Error("site config reload failed", "path", abs, "error", err)
					}
					return
				}
				svc.SetSite(site)
				logger.Info("site config reloaded", "path", abs)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("site watcher error", "error", err)
		}
	}
}
