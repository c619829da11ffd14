package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fred-catalog/cache"
	"fred-catalog/config"
	"fred-catalog/fetcher"
	"fred-catalog/fred"
	"fred-catalog/history"
	"fred-catalog/scheduler"
	"fred-catalog/tree"
	"fred-catalog/treefile"
	"fred-catalog/walker"
)

func main() {
	// Structured logging from the first line; the level is revisited once
	// the config is in.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	configPath := config.GetConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("starting FRED catalog crawl", "config", configPath)

	apiKey, err := config.LoadAPIKey(cfg.APIKeyFile)
	if err != nil {
		slog.Error("failed to load API key", "path", cfg.APIKeyFile, "error", err)
		os.Exit(1)
	}
	slog.Info("API key loaded")

	store, err := history.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open run history database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchTime == "" {
		crawl(ctx, cfg, apiKey, store)
		if last, err := store.LastRun(ctx); err == nil {
			slog.Info("run recorded", "run_id", last.ID)
		}
		return
	}

	// Watch mode: crawl now, then refresh daily at the configured time.
	crawl(ctx, cfg, apiKey, store)

	sched, err := scheduler.NewScheduler(cfg.Timezone)
	if err != nil {
		slog.Error("failed to initialize scheduler", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}
	if err := sched.Schedule(cfg.WatchTime, func() {
		crawl(context.Background(), cfg, apiKey, store)
	}); err != nil {
		slog.Error("failed to schedule refresh", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()
	slog.Info("watch mode active", "time", cfg.WatchTime, "timezone", cfg.Timezone)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received shutdown signal", "signal", sig)
}

// crawl performs one full traversal: load the cache, walk the hierarchy,
// write the tree file, save the cache, and record the run. Only setup
// failures are fatal; the crawl itself always completes best-effort.
func crawl(ctx context.Context, cfg *config.Config, apiKey string, store *history.Store) {
	startedAt := time.Now().UTC()

	apiCache := cache.New(
		cache.WithEnabled(cfg.CacheOn()),
		cache.WithPath(cfg.CacheFile),
		cache.WithTTL(cfg.CacheTTL()),
	)
	apiCache.Load()

	client := fred.NewClient(
		fred.WithBaseURL(cfg.BaseURL),
		fred.WithAPIKey(apiKey),
	)
	catalog := fetcher.New(client, apiCache, fetcher.WithThrottle(cfg.Throttle()))

	rootID := strconv.FormatInt(cfg.RootCategory, 10)
	catalogTree := tree.New("FRED® Services API at "+cfg.BaseURL, rootID)

	w := walker.New(catalog, catalogTree,
		walker.WithMaxDepth(cfg.Depth()),
		walker.WithSeriesLimit(cfg.SeriesLimit),
	)
	w.Walk(ctx, fred.Category{ID: cfg.RootCategory, Name: "<root>"})

	if err := treefile.Write(cfg.OutputFile, catalogTree); err != nil {
		slog.Error("failed to write tree file", "path", cfg.OutputFile, "error", err)
	}

	apiCache.Save()

	walkStats := w.Stats()
	cacheStats := apiCache.Stats()
	slog.Info("crawl complete",
		"categories", walkStats.Categories,
		"series", walkStats.Series,
		"remote_calls", catalog.RemoteCalls(),
		"cache_hits", cacheStats.Hits,
		"cache_misses", cacheStats.Misses,
		"cache_expired", cacheStats.Expired,
		"cache_invalid", cacheStats.Invalid,
		"tree_nodes", catalogTree.Size(),
	)

	run := &history.Run{
		RootCategory: cfg.RootCategory,
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
		Categories:   walkStats.Categories,
		Series:       walkStats.Series,
		RemoteCalls:  catalog.RemoteCalls(),
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		CacheExpired: cacheStats.Expired,
		CacheInvalid: cacheStats.Invalid,
		TreeNodes:    int64(catalogTree.Size()),
	}
	if err := store.RecordRun(ctx, run); err != nil {
		slog.Warn("failed to record run history", "error", err)
	}
	if err := store.SetSetting(ctx, "last_root_category", rootID); err != nil {
		slog.Warn("failed to save last root category", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
