package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/star/sattrack/internal/api"
	"github.com/star/sattrack/internal/auth"
	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/ingest"
	"github.com/star/sattrack/internal/metrics"
	"github.com/star/sattrack/internal/position"
	"github.com/star/sattrack/internal/propagation"
	"github.com/star/sattrack/internal/scheduler"
)

const defaultFeedURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

func main() {
	// Load .env before reading any configuration; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("SATTRACK_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	feedCfg := loadFeedConfig(logger)

	store, closeStore, err := openStore(logger)
	if err != nil {
		logger.Error("opening catalog store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	fetcher := ingest.NewHTTPFetcher(feedCfg.SourceURL, logger, feedCfg.ExtraSourceURLs...)
	pipeline := ingest.NewPipeline(fetcher, store, logger)
	positions := position.NewService(store, propagation.NewSubpointPropagator(), logger)

	srv := api.NewServer(addr, logger, authCfg, store, pipeline, positions)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if feedCfg.EnableFetch {
		sched := scheduler.New(pipeline, feedCfg.RefreshInterval, logger)
		go sched.Start(ctx)
	} else {
		logger.Info("feed fetch disabled, catalog served from existing data")
	}

	// Background goroutine to keep the catalog size and age gauges current.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sets, err := store.List(ctx, catalog.ListOptions{})
				if err != nil {
					logger.Warn("catalog gauge refresh failed", "error", err)
					continue
				}
				metrics.SetCatalogSize(len(sets))
				var newest time.Time
				for _, set := range sets {
					if set.LastUpdated.After(newest) {
						newest = set.LastUpdated
					}
				}
				if !newest.IsZero() {
					metrics.SetCatalogAge(time.Since(newest).Seconds())
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"feed_fetch_enabled", feedCfg.EnableFetch,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// openStore opens the SQLite catalog, or an in-memory catalog when no
// database path is configured.
func openStore(logger *slog.Logger) (catalog.Store, func(), error) {
	path := os.Getenv("SATTRACK_DB_PATH")
	if path == "" {
		logger.Info("no SATTRACK_DB_PATH set, using in-memory catalog")
		return catalog.NewMemoryStore(), func() {}, nil
	}

	store, err := catalog.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("catalog store opened", "path", path)
	return store, func() { store.Close() }, nil
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SATTRACK_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SATTRACK_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SATTRACK_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SATTRACK_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// feedConfig holds feed source and refresh configuration.
type feedConfig struct {
	SourceURL       string
	ExtraSourceURLs []string
	EnableFetch     bool
	RefreshInterval time.Duration
}

func loadFeedConfig(logger *slog.Logger) feedConfig {
	cfg := feedConfig{
		SourceURL:       defaultFeedURL,
		EnableFetch:     true,
		RefreshInterval: 300 * time.Second,
	}

	if v := os.Getenv("SATTRACK_FEED_URL"); v != "" {
		cfg.SourceURL = v
	}

	if v := os.Getenv("SATTRACK_FEED_EXTRA_URLS"); v != "" {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				urls = append(urls, u)
			}
		}
		cfg.ExtraSourceURLs = urls
	}

	if v := os.Getenv("SATTRACK_ENABLE_FEED_FETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SATTRACK_ENABLE_FEED_FETCH value, defaulting to true", "value", v)
		} else {
			cfg.EnableFetch = enabled
		}
	}

	if v := os.Getenv("SATTRACK_REFRESH_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATTRACK_REFRESH_INTERVAL value, using default", "value", v, "default", 300)
		} else {
			cfg.RefreshInterval = time.Duration(n) * time.Second
		}
	}

	logger.Info("feed config",
		"source_url", cfg.SourceURL,
		"extra_urls", cfg.ExtraSourceURLs,
		"refresh_interval_seconds", cfg.RefreshInterval.Seconds(),
	)

	return cfg
}
