package handlers

import (
	"VaultNote/internal/config"
	"VaultNote/internal/model"
	"VaultNote/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NoteHandler обрабатывает создание, чтение и удаление заметок.
type NoteHandler struct {
	NoteService *service.NoteService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewNoteHandler создаёт хендлер заметок
func NewNoteHandler(noteService *service.NoteService, logger *zap.SugaredLogger, cfg *config.Config) *NoteHandler {
	return &NoteHandler{NoteService: noteService, Logger: logger, Config: cfg}
}

// CreateNoteRequest — тело POST /api/notes. Бинарные поля передаются в base64.
type CreateNoteRequest struct {
	Ciphertext      []byte             `json:"ciphertext"`
	IV              []byte             `json:"iv"`
	IsProtected     bool               `json:"isProtected"`
	EncryptedKey    []byte             `json:"encryptedKey,omitempty"`
	KeyIV           []byte             `json:"keyIv,omitempty"`
	Salt            []byte             `json:"salt,omitempty"`
	Title           *string            `json:"title,omitempty"`
	AuthorName      *string            `json:"authorName,omitempty"`
	AuthorEmail     *string            `json:"authorEmail,omitempty"`
	MaxReads        *int               `json:"maxReads,omitempty"`
	DurationMinutes *int               `json:"durationMinutes,omitempty"`
	MaxViews        *int64             `json:"maxViews,omitempty"`
	Attachments     []model.Attachment `json:"attachments,omitempty"`
	NoDestroyToken  bool               `json:"noDestroyToken,omitempty"`
}

// CreateNoteResponse — ответ на создание.
type CreateNoteResponse struct {
	ID           string     `json:"id"`
	DestroyToken string     `json:"destroyToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// NoteResponse — заметка для читателя.
type NoteResponse struct {
	ID             string             `json:"id"`
	Title          *string            `json:"title"`
	Ciphertext     []byte             `json:"ciphertext"`
	IV             []byte             `json:"iv"`
	RemainingReads *int               `json:"remainingReads"`
	IsProtected    bool               `json:"isProtected"`
	EncryptedKey   []byte             `json:"encryptedKey,omitempty"`
	KeyIV          []byte             `json:"keyIv,omitempty"`
	Salt           []byte             `json:"salt,omitempty"`
	Attachments    []model.Attachment `json:"attachments"`
	AuthorName     string             `json:"authorName"`
	AuthorEmail    string             `json:"authorEmail"`
	CreatedAt      time.Time          `json:"createdAt"`
	ExpiresAt      *time.Time         `json:"expiresAt"`
	ViewCount      int64              `json:"viewCount"`
	MaxViews       *int64             `json:"maxViews"`
}

// maxBodyBytes — верхняя граница тела запроса создания: base64 шифртекста и всех вложений плюс запас.
func (h *NoteHandler) maxBodyBytes() int64 {
	kb := int64(h.Config.MaxCiphertextKB) * 1024
	att := int64(h.Config.MaxAttachments) * int64(h.Config.AttachmentMaxMB) * 1024 * 1024
	return (kb+att)*4/3 + 1024*1024
}

// Create сохраняет зашифрованную клиентом заметку
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warnw("Create: request body too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		h.Logger.Warnw("Create: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.NoteService.Create(r.Context(), service.CreateRequest{
		Ciphertext:      req.Ciphertext,
		IV:              req.IV,
		IsProtected:     req.IsProtected,
		EncryptedKey:    req.EncryptedKey,
		KeyIV:           req.KeyIV,
		Salt:            req.Salt,
		Title:           req.Title,
		AuthorName:      req.AuthorName,
		AuthorEmail:     req.AuthorEmail,
		MaxReads:        req.MaxReads,
		DurationMinutes: req.DurationMinutes,
		MaxViews:        req.MaxViews,
		Attachments:     req.Attachments,
		NoDestroyToken:  req.NoDestroyToken,
	})
	if err != nil {
		h.writeServiceError(w, "Create", "", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateNoteResponse{
		ID:           res.ID,
		DestroyToken: res.DestroyToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

// Read выдаёт заметку и расходует одно чтение
func (h *NoteHandler) Read(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.NoteService.Read(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Read", id, err)
		return
	}

	attachments := v.Attachments
	if attachments == nil {
		attachments = []model.Attachment{}
	}
	// ответ одноразовый, кешировать его нельзя
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, NoteResponse{
		ID:             v.ID,
		Title:          v.Title,
		Ciphertext:     v.Ciphertext,
		IV:             v.IV,
		RemainingReads: v.RemainingReads,
		IsProtected:    v.IsProtected,
		EncryptedKey:   v.EncryptedKey,
		KeyIV:          v.KeyIV,
		Salt:           v.Salt,
		Attachments:    attachments,
		AuthorName:     v.AuthorName,
		AuthorEmail:    v.AuthorEmail,
		CreatedAt:      v.CreatedAt,
		ExpiresAt:      v.ExpiresAt,
		ViewCount:      v.ViewCount,
		MaxViews:       v.MaxViews,
	})
}

// Destroy удаляет заметку по токену из заголовка X-Destroy-Token или параметра token
func (h *NoteHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token := r.Header.Get("X-Destroy-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	if err := h.NoteService.Destroy(r.Context(), id, token); err != nil {
		h.writeServiceError(w, "Destroy", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError переводит ошибки сервиса в HTTP-статусы
func (h *NoteHandler) writeServiceError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrGone):
		if h.Config.HideGone {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		writeError(w, http.StatusGone, "Note has expired or been consumed")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Invalid destroy token")
	default:
		h.Logger.Errorw(op+": service error", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
