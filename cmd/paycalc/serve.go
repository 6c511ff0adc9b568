package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/paycalc/api"
	"github.com/warp/paycalc/cache"
	"github.com/warp/paycalc/reload"
	"github.com/warp/paycalc/store/sqlite"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the deduction API. Stored constant sets are loaded at startup.

With --redis, breakdowns are cached in Redis and shared between instances;
otherwise an in-process LRU cache of --cache-size entries is used. Entries
expire after --cache-ttl either way.

With --constants-file, the file's set is served and, unless --watch=false,
reloaded whenever the file is saved.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, then closes the database.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	serveCmd.Flags().StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the breakdown cache (empty: in-memory)")
	serveCmd.Flags().DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Cache entry lifetime")
	serveCmd.Flags().IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "Maximum entries in the in-process cache")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload --constants-file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	var c cache.Cache = cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		defer rc.Close()
		c = rc
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(store, c, logger, cfg.DefaultSet)
	if err := handler.LoadConstantSets(ctx); err != nil {
		logger.Warn("failed to load stored constant sets", zap.Error(err))
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DatabasePath),
			zap.String("default_set", cfg.DefaultSet),
			zap.Bool("redis", cfg.RedisAddr != ""),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.ConstantsFile != "" && serveWatch {
		w := reload.NewWatcher(cfg.ConstantsFile, handler.InstallConstantSet, logger)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				logger.Warn("constants file will not be reloaded", zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
