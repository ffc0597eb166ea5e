package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"rentwatch/internal/config"
	"rentwatch/internal/fetcher"
	"rentwatch/internal/filter"
	"rentwatch/internal/ingest"
	"rentwatch/internal/notify"
	"rentwatch/internal/scheduler"
	"rentwatch/internal/scraper"
	"rentwatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	f := fetcher.New(http.DefaultClient)
	f.SetTimeout(cfg.RequestTimeout)

	scr := scraper.New(f, log)
	if cfg.BaseURL != "" {
		scr.SetBaseURL(cfg.BaseURL)
	}

	ing := ingest.New(store, scr, log)

	if cfg.TelegramBotToken != "" && len(cfg.TelegramChatIDs) > 0 {
		maxRent, err := filter.ParseMaxRent(cfg.NotifyMaxRent)
		if err != nil {
			log.Error("invalid NOTIFY_MAX_RENT", "value", cfg.NotifyMaxRent, "error", err)
			os.Exit(1)
		}
		rules := filter.Rules{
			Include: cfg.NotifyInclude,
			Exclude: cfg.NotifyExclude,
			MaxRent: maxRent,
		}
		notifier, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatIDs, rules, log)
		if err != nil {
			log.Error("create notifier", "error", err)
			os.Exit(1)
		}
		ing.SetNotifier(notifier)
		log.Info("telegram notifications enabled", "chats", len(cfg.TelegramChatIDs))
	}

	sched := scheduler.New(ing, cfg.Cities, cfg.CrawlInterval, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting crawler", "cities", len(cfg.Cities), "interval", cfg.CrawlInterval)

	sched.Run(ctx)

	log.Info("crawler stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
