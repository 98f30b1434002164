package handlers

import (
	"VaultNote/internal/config"
	"VaultNote/internal/middleware"
	"VaultNote/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	noteService *service.NoteService,
	logger *zap.SugaredLogger,
	config *config.Config,
	db *gorm.DB,
) *Handler {
	return NewHandlerWithLimiter(noteService, logger, config, db,
		middleware.NewClientLimiter(config.RateLimit, config.RateWindow))
}

// NewHandlerWithLimiter позволяет подставить свой ограничитель частоты (например, общий для нескольких инстансов).
func NewHandlerWithLimiter(
	noteService *service.NoteService,
	logger *zap.SugaredLogger,
	config *config.Config,
	db *gorm.DB,
	limiter middleware.Limiter,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	// Handlers
	noteHandler := NewNoteHandler(noteService, logger, config)
	systemHandler := NewSystemHandler(noteService, logger, config, db)

	// Note routes
	r.Route("/api/notes", func(r chi.Router) {
		r.Use(middleware.WithRateLimit(limiter, config.TrustProxy))
		r.Post("/", noteHandler.Create)
		r.Get("/{id}", noteHandler.Read)
		r.Delete("/{id}", noteHandler.Destroy)
	})

	// Service routes
	r.Get("/api/cron/cleanup", systemHandler.Cleanup)
	r.Get("/api/health", systemHandler.Health)

	return &Handler{Router: r}
}
