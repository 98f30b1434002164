package config

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T, args ...string) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
	// go test передаёт свои -test.* флаги, подменяем аргументы
	old := os.Args
	os.Args = append([]string{old[0]}, args...)
	t.Cleanup(func() { os.Args = old })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URI", "METADATA_ENCRYPTION_KEY", "CRON_SECRET", "MAX_CIPHERTEXT_KB",
		"MAX_ATTACHMENTS", "ATTACHMENT_MAX_MB", "MAX_DURATION_MINUTES", "RATE_LIMIT",
		"RATE_WINDOW", "TRUST_PROXY", "PURGE_INTERVAL", "HIDE_GONE", "BASE_URL", "ENABLE_HTTPS", "CLIENT_DB_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.DatabaseDSN != "vaultnote.db" {
		t.Fatalf("DatabaseDSN default expected 'vaultnote.db', got %q", cfg.DatabaseDSN)
	}
	if cfg.MetadataKey != "dev-metadata-key" {
		t.Fatalf("MetadataKey default expected 'dev-metadata-key', got %q", cfg.MetadataKey)
	}
	if cfg.CronSecret != "" {
		t.Fatalf("CronSecret must stay empty by default, got %q", cfg.CronSecret)
	}
	if cfg.MaxCiphertextKB != 64 || cfg.MaxAttachments != 10 || cfg.AttachmentMaxMB != 10 {
		t.Fatalf("unexpected limit defaults: %+v", cfg)
	}
	if cfg.MaxDurationMinutes != 43200 {
		t.Fatalf("MaxDurationMinutes default expected 43200, got %d", cfg.MaxDurationMinutes)
	}
	if cfg.RateLimit != 100 || cfg.RateWindow != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %d per %s", cfg.RateLimit, cfg.RateWindow)
	}
	if cfg.PurgeInterval != 0 || cfg.HideGone {
		t.Fatalf("purger and hide-gone must be off by default")
	}
	if cfg.TrustProxy {
		t.Fatalf("proxy headers must not be trusted by default")
	}
	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("BaseURL default expected 'localhost:8081', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "http://localhost:8081" {
		t.Fatalf("ServerURL default expected 'http://localhost:8081', got %q", cfg.ServerURL)
	}
	if cfg.ClientDBPath == "" {
		t.Fatalf("client defaults must be non-empty: ClientDBPath=%q", cfg.ClientDBPath)
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("METADATA_ENCRYPTION_KEY", "top")
	t.Setenv("CRON_SECRET", "cron")
	t.Setenv("MAX_CIPHERTEXT_KB", "128")
	t.Setenv("RATE_WINDOW", "1m")
	t.Setenv("PURGE_INTERVAL", "30s")
	t.Setenv("HIDE_GONE", "true")
	t.Setenv("TRUST_PROXY", "true")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.ServerURL != "https://example.com:443" {
		t.Fatalf("ServerURL expected 'https://example.com:443', got %q", cfg.ServerURL)
	}
	if cfg.MetadataKey != "top" || cfg.CronSecret != "cron" {
		t.Fatalf("secrets must come from env, got %q / %q", cfg.MetadataKey, cfg.CronSecret)
	}
	if cfg.MaxCiphertextKB != 128 {
		t.Fatalf("MaxCiphertextKB expected 128, got %d", cfg.MaxCiphertextKB)
	}
	if cfg.RateWindow != time.Minute || cfg.PurgeInterval != 30*time.Second {
		t.Fatalf("durations not parsed: %s / %s", cfg.RateWindow, cfg.PurgeInterval)
	}
	if !cfg.HideGone {
		t.Fatalf("HideGone expected true")
	}
	if !cfg.TrustProxy {
		t.Fatalf("TrustProxy expected true")
	}
}

func TestNewConfig_FlagsOverrideDefaults(t *testing.T) {
	clearEnv(t)

	resetFlagSet(t, "-d", "postgres://u:p@db/notes", "-rate-limit", "5", "-hide-gone")
	cfg := NewConfig()

	if cfg.DatabaseDSN != "postgres://u:p@db/notes" {
		t.Fatalf("DatabaseDSN expected from flag, got %q", cfg.DatabaseDSN)
	}
	if cfg.RateLimit != 5 {
		t.Fatalf("RateLimit expected 5, got %d", cfg.RateLimit)
	}
	if !cfg.HideGone {
		t.Fatalf("HideGone expected true from flag")
	}
}

func TestNewConfig_InvalidBaseURLFallback(t *testing.T) {
	clearEnv(t)
	// Невалидный BASE_URL (со схемой) должен откатиться на localhost:8081
	t.Setenv("BASE_URL", "http://bad:8080")
	t.Setenv("ENABLE_HTTPS", "false")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("invalid BASE_URL must fallback to 'localhost:8081', got %q", cfg.BaseURL)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://localhost:8081") {
		t.Fatalf("ServerURL must reflect fallback base, got %q", cfg.ServerURL)
	}
}
