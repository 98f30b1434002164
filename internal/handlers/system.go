package handlers

import (
	"VaultNote/internal/config"
	"VaultNote/internal/repo"
	"VaultNote/internal/service"
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SystemHandler — служебные эндпоинты: очистка по расписанию и health.
type SystemHandler struct {
	NoteService *service.NoteService
	Logger      *zap.SugaredLogger
	Config      *config.Config
	DB          *gorm.DB
}

func NewSystemHandler(noteService *service.NoteService, logger *zap.SugaredLogger, cfg *config.Config, db *gorm.DB) *SystemHandler {
	return &SystemHandler{NoteService: noteService, Logger: logger, Config: cfg, DB: db}
}

// Cleanup удаляет истёкшие и исчерпанные заметки. Вызывается внешним планировщиком с ?auth=<CRON_SECRET>.
func (h *SystemHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	secret := h.Config.CronSecret
	auth := r.URL.Query().Get("auth")
	if secret == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(secret)) != 1 {
		h.Logger.Warnw("Cleanup: unauthorized", "configured", secret != "")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.NoteService.Purge(r.Context())
	if err != nil {
		h.Logger.Errorw("Cleanup: purge failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}

// Health проверяет доступность БД
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := repo.Ping(r.Context(), h.DB); err != nil {
		h.Logger.Errorw("Health: database unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
