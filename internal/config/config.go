package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	MetadataKey string `env:"METADATA_ENCRYPTION_KEY"`
	CronSecret  string `env:"CRON_SECRET"`

	// Limits
	MaxCiphertextKB    int `env:"MAX_CIPHERTEXT_KB"`
	MaxAttachments     int `env:"MAX_ATTACHMENTS"`
	AttachmentMaxMB    int `env:"ATTACHMENT_MAX_MB"`
	MaxDurationMinutes int `env:"MAX_DURATION_MINUTES"`

	// Throttle
	RateLimit  int           `env:"RATE_LIMIT"`
	RateWindow time.Duration `env:"RATE_WINDOW"`
	// брать адрес клиента из X-Forwarded-For/X-Real-IP; включать только за доверенным прокси
	TrustProxy bool `env:"TRUST_PROXY"`

	// 0 — фоновая очистка выключена, остаётся только cron-эндпоинт
	PurgeInterval time.Duration `env:"PURGE_INTERVAL"`
	// отвечать 404 вместо 410 для сгоревших заметок
	HideGone bool `env:"HIDE_GONE"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (путь SQLite или DSN Postgres)")
	flag.StringVar(&cfg.MetadataKey, "metadata-key", cfg.MetadataKey, "секрет шифрования метаданных")
	flag.StringVar(&cfg.CronSecret, "cron-secret", cfg.CronSecret, "секрет эндпоинта очистки (пусто — выключен)")
	flag.IntVar(&cfg.MaxCiphertextKB, "max-ciphertext-kb", cfg.MaxCiphertextKB, "максимальный размер шифртекста, КиБ")
	flag.IntVar(&cfg.MaxAttachments, "max-attachments", cfg.MaxAttachments, "максимальное число вложений")
	flag.IntVar(&cfg.AttachmentMaxMB, "attachment-max-mb", cfg.AttachmentMaxMB, "максимальный размер вложения, МБ")
	flag.IntVar(&cfg.MaxDurationMinutes, "max-duration", cfg.MaxDurationMinutes, "максимальный срок жизни заметки, минуты")
	flag.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "запросов на клиента за окно")
	flag.DurationVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "окно ограничения частоты")
	flag.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "доверять X-Forwarded-For (сервер за reverse proxy)")
	flag.DurationVar(&cfg.PurgeInterval, "purge-interval", cfg.PurgeInterval, "период фоновой очистки (0 — выключена)")
	flag.BoolVar(&cfg.HideGone, "hide-gone", cfg.HideGone, "отвечать 404 вместо 410")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the VaultNote server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB with sent notes")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()

	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "vaultnote.db"
	}
	if cfg.MetadataKey == "" {
		cfg.MetadataKey = "dev-metadata-key"
	}
	if cfg.MaxCiphertextKB <= 0 {
		cfg.MaxCiphertextKB = 64
	}
	if cfg.MaxAttachments <= 0 {
		cfg.MaxAttachments = 10
	}
	if cfg.AttachmentMaxMB <= 0 {
		cfg.AttachmentMaxMB = 10
	}
	if cfg.MaxDurationMinutes <= 0 {
		cfg.MaxDurationMinutes = 30 * 24 * 60
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = 15 * time.Minute
	}
	if cfg.PurgeInterval < 0 {
		cfg.PurgeInterval = 0
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	// Fill client defaults if empty
	if cfg.ClientDBPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.ClientDBPath = filepath.Join(dir, "VaultNote", "client.sqlite")
		} else {
			cfg.ClientDBPath = "vaultnote-client.sqlite"
		}
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
}
