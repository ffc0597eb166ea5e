package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// clearEnv blanks every variable Load reads so host values never leak
// into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_PATH", "LOG_LEVEL", "BASE_URL",
		"CITIES", "CITIES_FILE", "MAX_PAGES",
		"CRAWL_INTERVAL_MINUTES", "REQUEST_TIMEOUT_SECONDS",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_IDS",
		"NOTIFY_INCLUDE", "NOTIFY_EXCLUDE", "NOTIFY_MAX_RENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DatabasePath != "./data/rentwatch.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.CrawlInterval != 30*time.Minute {
		t.Errorf("crawl interval = %v", cfg.CrawlInterval)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	want := []City{{Slug: "eindhoven", MaxPages: 3}}
	if diff := cmp.Diff(want, cfg.Cities); diff != "" {
		t.Errorf("cities mismatch (-want +got):\n%s", diff)
	}
	if cfg.TelegramBotToken != "" || cfg.TelegramChatIDs != nil {
		t.Errorf("telegram config = %q / %v", cfg.TelegramBotToken, cfg.TelegramChatIDs)
	}
}

func TestLoadCitiesFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CITIES", "eindhoven, amsterdam ,utrecht")
	t.Setenv("MAX_PAGES", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []City{
		{Slug: "eindhoven", MaxPages: 7},
		{Slug: "amsterdam", MaxPages: 7},
		{Slug: "utrecht", MaxPages: 7},
	}
	if diff := cmp.Diff(want, cfg.Cities); diff != "" {
		t.Errorf("cities mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCitiesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cities.yaml")
	data := "cities:\n  - slug: eindhoven\n    max_pages: 4\n  - slug: rotterdam\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write cities file: %v", err)
	}
	t.Setenv("CITIES_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// An entry without max_pages inherits the default.
	want := []City{
		{Slug: "eindhoven", MaxPages: 4},
		{Slug: "rotterdam", MaxPages: 3},
	}
	if diff := cmp.Diff(want, cfg.Cities); diff != "" {
		t.Errorf("cities mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCitiesFileMissingSlug(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cities.yaml")
	if err := os.WriteFile(path, []byte("cities:\n  - max_pages: 4\n"), 0o600); err != nil {
		t.Fatalf("write cities file: %v", err)
	}
	t.Setenv("CITIES_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for entry without slug")
	}
}

func TestLoadTelegramChatIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_IDS", "100, -200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]int64{100, -200}, cfg.TelegramChatIDs); diff != "" {
		t.Errorf("chat IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"interval", "CRAWL_INTERVAL_MINUTES", "soon"},
		{"timeout", "REQUEST_TIMEOUT_SECONDS", "1.5"},
		{"max pages", "MAX_PAGES", "all"},
		{"chat IDs", "TELEGRAM_CHAT_IDS", "100,bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadNotifyRules(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTIFY_INCLUDE", "balcony,garden")
	t.Setenv("NOTIFY_EXCLUDE", "shared")
	t.Setenv("NOTIFY_MAX_RENT", "1500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"balcony", "garden"}, cfg.NotifyInclude); diff != "" {
		t.Errorf("include mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"shared"}, cfg.NotifyExclude); diff != "" {
		t.Errorf("exclude mismatch (-want +got):\n%s", diff)
	}
	if cfg.NotifyMaxRent != "1500" {
		t.Errorf("max rent = %q", cfg.NotifyMaxRent)
	}
}
