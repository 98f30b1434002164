package main

import (
	"VaultNote/internal/config"
	"VaultNote/internal/crypto"
	"VaultNote/internal/handlers"
	"VaultNote/internal/middleware"
	"VaultNote/internal/repo"
	"VaultNote/internal/service"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	if err := repo.Migrate(ctx, gormDB, sugar); err != nil {
		sugar.Fatalw("failed to migrate database", "error", err)
	}

	meta, err := crypto.NewMetadataCipher(cfg.MetadataKey)
	if err != nil {
		sugar.Fatalw("failed to init metadata cipher", "error", err)
	}

	noteRepo := repo.NewNoteRepository(gormDB)
	noteService := service.NewNoteService(noteRepo, meta, sugar, service.Limits{
		MaxCiphertextBytes: cfg.MaxCiphertextKB * 1024,
		MaxAttachments:     cfg.MaxAttachments,
		AttachmentMaxBytes: int64(cfg.AttachmentMaxMB) * 1024 * 1024,
		MaxDurationMinutes: cfg.MaxDurationMinutes,
	})

	go noteService.RunPurger(ctx, cfg.PurgeInterval)

	h := handlers.NewHandler(noteService, sugar, cfg, gormDB)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"Postgres", repo.IsPostgresDSN(cfg.DatabaseDSN),
		"MaxCiphertextKB", cfg.MaxCiphertextKB,
		"RateLimit", cfg.RateLimit,
		"RateWindow", cfg.RateWindow,
		"TrustProxy", cfg.TrustProxy,
		"PurgeInterval", cfg.PurgeInterval,
		"CleanupEnabled", cfg.CronSecret != "",
		"HideGone", cfg.HideGone,
	)
	if cfg.MetadataKey == "dev-metadata-key" {
		sugar.Warnw("Using development metadata key, set METADATA_ENCRYPTION_KEY in production")
	}

	srv := &http.Server{Addr: addr, Handler: h.Router}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
}
