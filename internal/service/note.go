package service

import (
	"VaultNote/internal/crypto"
	"VaultNote/internal/model"
	"VaultNote/internal/repo"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MetadataCipher — серверный шифр отображаемых метаданных (см. crypto.MetadataCipher).
type MetadataCipher interface {
	EncryptField(field crypto.Field, text string) (string, error)
	DecryptOrPlaceholder(field crypto.Field, token string) string
}

// Limits — квоты, проверяемые при создании заметки.
type Limits struct {
	MaxCiphertextBytes int
	MaxAttachments     int
	AttachmentMaxBytes int64
	MaxDurationMinutes int
}

// DefaultLimits соответствуют значениям конфигурации по умолчанию.
var DefaultLimits = Limits{
	MaxCiphertextBytes: crypto.MaxCiphertextSize,
	MaxAttachments:     10,
	AttachmentMaxBytes: 10 * 1024 * 1024,
	MaxDurationMinutes: 30 * 24 * 60,
}

const (
	destroyTokenBytes = 32
	// AnonymousAuthor отображается, если автор не указан.
	AnonymousAuthor = "Anonymous"
)

// NoteService — движок жизненного цикла заметки: создание, чтение с расходом
// счётчиков, истечение по времени и ручное удаление.
type NoteService struct {
	repo   repo.NoteRepository
	meta   MetadataCipher
	logger *zap.SugaredLogger
	limits Limits
	now    func() time.Time
}

// NewNoteService создаёт сервис заметок.
func NewNoteService(r repo.NoteRepository, meta MetadataCipher, logger *zap.SugaredLogger, limits Limits) *NoteService {
	return &NoteService{
		repo:   r,
		meta:   meta,
		logger: logger,
		limits: limits,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *NoteService) WithClock(now func() time.Time) *NoteService {
	s.now = now
	return s
}

// CreateRequest — вход операции создания. Шифртекст и ключевой материал
// уже зашифрованы клиентом; открытым текстом приходят только метаданные.
type CreateRequest struct {
	Ciphertext []byte
	IV         []byte

	IsProtected  bool
	EncryptedKey []byte
	KeyIV        []byte
	Salt         []byte

	Title       *string
	AuthorName  *string
	AuthorEmail *string

	MaxReads        *int
	DurationMinutes *int
	MaxViews        *int64
	Attachments     []model.Attachment

	// NoDestroyToken — не выдавать токен удаления; тогда удалить заметку может любой владелец id.
	NoDestroyToken bool
}

// CreateResult — результат создания.
type CreateResult struct {
	ID           string
	DestroyToken string
	ExpiresAt    *time.Time
}

// NoteView — снимок заметки для читателя.
type NoteView struct {
	ID         string
	Title      *string
	Ciphertext []byte
	IV         []byte

	// RemainingReads — сколько чтений осталось после текущего; nil — без ограничения.
	RemainingReads *int

	IsProtected  bool
	EncryptedKey []byte
	KeyIV        []byte
	Salt         []byte
	Attachments  []model.Attachment

	AuthorName  string
	AuthorEmail string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	ViewCount   int64
	MaxViews    *int64
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func (s *NoteService) validate(req *CreateRequest) error {
	if len(req.Ciphertext) == 0 {
		return validationErr("ciphertext is required")
	}
	if len(req.Ciphertext) > s.limits.MaxCiphertextBytes {
		return ErrPayloadTooLarge
	}
	if len(req.IV) != crypto.NonceSize {
		return validationErr("iv must be %d bytes", crypto.NonceSize)
	}
	if req.IsProtected {
		if len(req.EncryptedKey) == 0 || len(req.KeyIV) != crypto.NonceSize || len(req.Salt) != crypto.SaltSize {
			return validationErr("protected note requires encryptedKey, keyIv and salt")
		}
	} else if len(req.EncryptedKey) != 0 || len(req.KeyIV) != 0 || len(req.Salt) != 0 {
		return validationErr("key material is only allowed for protected notes")
	}
	if req.MaxReads != nil && *req.MaxReads < 1 {
		return validationErr("maxReads must be positive")
	}
	if req.MaxViews != nil && *req.MaxViews < 1 {
		return validationErr("maxViews must be positive")
	}
	if d := req.DurationMinutes; d != nil && (*d < 1 || *d > s.limits.MaxDurationMinutes) {
		return validationErr("duration must be between 1 and %d minutes", s.limits.MaxDurationMinutes)
	}
	if len(req.Attachments) > s.limits.MaxAttachments {
		return validationErr("at most %d attachments allowed", s.limits.MaxAttachments)
	}
	for i, a := range req.Attachments {
		if a.Name == "" || a.Data == "" || a.Size < 0 {
			return validationErr("attachment %d is malformed", i)
		}
		if len(a.Data) > base64.StdEncoding.EncodedLen(int(s.limits.AttachmentMaxBytes)) {
			return ErrPayloadTooLarge
		}
		raw, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return validationErr("attachment %d data is not base64", i)
		}
		if int64(len(raw)) > s.limits.AttachmentMaxBytes {
			return ErrPayloadTooLarge
		}
	}
	return nil
}

func newDestroyToken() (string, error) {
	b := make([]byte, destroyTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *NoteService) encryptMeta(field crypto.Field, v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	tok, err := s.meta.EncryptField(field, *v)
	if err != nil {
		return nil, fmt.Errorf("encrypt %s: %w", field, err)
	}
	return &tok, nil
}

// Create сохраняет новую активную заметку.
func (s *NoteService) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	if err := s.validate(&req); err != nil {
		return CreateResult{}, err
	}
	now := s.now()

	n := &model.Note{
		ID:             uuid.NewString(),
		Ciphertext:     req.Ciphertext,
		IV:             req.IV,
		IsProtected:    req.IsProtected,
		RemainingReads: req.MaxReads,
		MaxViews:       req.MaxViews,
		Images:         req.Attachments,
		CreatedAt:      now,
	}
	if req.IsProtected {
		n.EncryptedKey, n.KeyIV, n.Salt = req.EncryptedKey, req.KeyIV, req.Salt
	}
	if req.DurationMinutes != nil {
		exp := now.Add(time.Duration(*req.DurationMinutes) * time.Minute)
		n.ExpiresAt = &exp
	}

	var err error
	if n.TitleEncrypted, err = s.encryptMeta(crypto.FieldTitle, req.Title); err != nil {
		return CreateResult{}, err
	}
	if n.AuthorNameEncrypted, err = s.encryptMeta(crypto.FieldAuthorName, req.AuthorName); err != nil {
		return CreateResult{}, err
	}
	if n.AuthorEmailEncrypted, err = s.encryptMeta(crypto.FieldAuthorEmail, req.AuthorEmail); err != nil {
		return CreateResult{}, err
	}

	var token string
	if !req.NoDestroyToken {
		if token, err = newDestroyToken(); err != nil {
			return CreateResult{}, err
		}
		n.DestroyToken = &token
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return CreateResult{}, fmt.Errorf("create note: %w", err)
	}
	s.logger.Infow("Create: note stored",
		"id", n.ID,
		"protected", n.IsProtected,
		"size", len(n.Ciphertext),
		"attachments", len(n.Images),
	)
	return CreateResult{ID: n.ID, DestroyToken: token, ExpiresAt: n.ExpiresAt}, nil
}

func (s *NoteService) fetch(ctx context.Context, id string) (*model.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	n, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// Read выдаёт заметку читателю и расходует одно чтение.
//
// Проверка состояния, декремент и удаление исчерпанной заметки выполняются как
// compare-and-swap: если другой запрос успел изменить строку, состояние
// перечитывается и проверяется заново. Шифртекст возвращается только тому,
// чей CAS прошёл.
//
// Цикл конечен без счётчика попыток: проигранный CAS значит, что счётчик
// чтений или просмотров сдвинулся к исчерпанию либо строка удалена.
func (s *NoteService) Read(ctx context.Context, id string) (*NoteView, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		now := s.now()
		if n.Expired(now) || n.Exhausted() {
			if _, err := s.repo.Delete(ctx, id); err != nil {
				return nil, fmt.Errorf("delete gone note: %w", err)
			}
			s.logger.Infow("Read: note gone, deleted", "id", id, "expired", n.Expired(now))
			return nil, ErrGone
		}

		ok, err := s.repo.ConsumeRead(ctx, n, now)
		if err != nil {
			return nil, fmt.Errorf("consume read: %w", err)
		}
		if !ok {
			continue
		}

		// исчерпанная строка остаётся с consumed_at и удаляется при следующем обращении или Purge
		return s.render(n), nil
	}
}

// render строит ответ из состояния, проверенного CAS (до мутации счётчиков).
func (s *NoteService) render(n *model.Note) *NoteView {
	v := &NoteView{
		ID:           n.ID,
		Ciphertext:   n.Ciphertext,
		IV:           n.IV,
		IsProtected:  n.IsProtected,
		EncryptedKey: n.EncryptedKey,
		KeyIV:        n.KeyIV,
		Salt:         n.Salt,
		Attachments:  n.Images,
		AuthorName:   AnonymousAuthor,
		CreatedAt:    n.CreatedAt,
		ExpiresAt:    n.ExpiresAt,
		ViewCount:    n.ViewCount + 1,
		MaxViews:     n.MaxViews,
	}
	if n.RemainingReads != nil {
		left := *n.RemainingReads - 1
		v.RemainingReads = &left
	}
	if n.TitleEncrypted != nil {
		t := s.meta.DecryptOrPlaceholder(crypto.FieldTitle, *n.TitleEncrypted)
		v.Title = &t
	}
	if n.AuthorNameEncrypted != nil {
		v.AuthorName = s.meta.DecryptOrPlaceholder(crypto.FieldAuthorName, *n.AuthorNameEncrypted)
	}
	if n.AuthorEmailEncrypted != nil {
		v.AuthorEmail = s.meta.DecryptOrPlaceholder(crypto.FieldAuthorEmail, *n.AuthorEmailEncrypted)
	}
	return v
}

// Destroy удаляет заметку вручную. Если при создании был выдан токен удаления,
// без совпадающего токена удаление запрещено. Без токена заметку может удалить
// любой владелец id: id вместе с ключом и так является единственной «учёткой».
func (s *NoteService) Destroy(ctx context.Context, id, token string) error {
	n, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if n.DestroyToken != nil && subtle.ConstantTimeCompare([]byte(token), []byte(*n.DestroyToken)) != 1 {
		s.logger.Warnw("Destroy: token mismatch", "id", id)
		return ErrForbidden
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Infow("Destroy: note deleted", "id", id)
	return nil
}

// Purge удаляет все истёкшие и исчерпанные заметки.
func (s *NoteService) Purge(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	if count > 0 {
		s.logger.Infow("Purge: removed notes", "count", count)
	}
	return count, nil
}

// RunPurger периодически вызывает Purge, пока не отменён ctx.
func (s *NoteService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Purge(ctx); err != nil {
				s.logger.Errorw("Purge: sweep failed", "error", err)
			}
		}
	}
}
