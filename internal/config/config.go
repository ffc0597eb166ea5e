// Package config handles application configuration from environment
// variables and an optional YAML cities file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Defaults mirroring the marketplace contract and the original crawl
// cadence.
const (
	defaultCity         = "eindhoven"
	defaultMaxPages     = 3
	defaultIntervalMin  = 30
	defaultTimeoutSec   = 15
	defaultDatabasePath = "./data/rentwatch.db"
)

// City is one crawl target: a marketplace city slug and how deep to
// paginate it per run.
type City struct {
	Slug     string `yaml:"slug"`
	MaxPages int    `yaml:"max_pages"`
}

// Config holds the application configuration.
type Config struct {
	DatabasePath   string
	LogLevel       string
	BaseURL        string
	Cities         []City
	CrawlInterval  time.Duration
	RequestTimeout time.Duration

	TelegramBotToken string
	TelegramChatIDs  []int64
	NotifyInclude    []string
	NotifyExclude    []string
	NotifyMaxRent    string
}

// Load reads configuration from a .env file (when present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:     getEnv("DATABASE_PATH", defaultDatabasePath),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BaseURL:          os.Getenv("BASE_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		NotifyInclude:    splitList(os.Getenv("NOTIFY_INCLUDE")),
		NotifyExclude:    splitList(os.Getenv("NOTIFY_EXCLUDE")),
		NotifyMaxRent:    os.Getenv("NOTIFY_MAX_RENT"),
	}

	interval, err := getEnvInt("CRAWL_INTERVAL_MINUTES", defaultIntervalMin)
	if err != nil {
		return nil, err
	}
	cfg.CrawlInterval = time.Duration(interval) * time.Minute

	timeout, err := getEnvInt("REQUEST_TIMEOUT_SECONDS", defaultTimeoutSec)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = time.Duration(timeout) * time.Second

	maxPages, err := getEnvInt("MAX_PAGES", defaultMaxPages)
	if err != nil {
		return nil, err
	}
	for _, slug := range splitList(getEnv("CITIES", defaultCity)) {
		cfg.Cities = append(cfg.Cities, City{Slug: slug, MaxPages: maxPages})
	}

	if path := os.Getenv("CITIES_FILE"); path != "" {
		cities, err := loadCitiesFile(path, maxPages)
		if err != nil {
			return nil, err
		}
		cfg.Cities = cities
	}
	if len(cfg.Cities) == 0 {
		return nil, fmt.Errorf("no cities configured")
	}

	if raw := os.Getenv("TELEGRAM_CHAT_IDS"); raw != "" {
		for _, s := range splitList(raw) {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid chat ID %q in TELEGRAM_CHAT_IDS: %w", s, err)
			}
			cfg.TelegramChatIDs = append(cfg.TelegramChatIDs, id)
		}
	}

	return cfg, nil
}

// loadCitiesFile reads crawl targets from a YAML file:
//
//	cities:
//	  - slug: eindhoven
//	    max_pages: 3
func loadCitiesFile(path string, defaultPages int) ([]City, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator's own config
	if err != nil {
		return nil, fmt.Errorf("open cities file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var doc struct {
		Cities []City `yaml:"cities"`
	}
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse cities file %s: %w", path, err)
	}

	for i := range doc.Cities {
		if doc.Cities[i].Slug == "" {
			return nil, fmt.Errorf("cities file %s: entry %d has no slug", path, i)
		}
		if doc.Cities[i].MaxPages <= 0 {
			doc.Cities[i].MaxPages = defaultPages
		}
	}
	return doc.Cities, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
