package model

import "time"

// Attachment — вложение заметки (данные в base64).
type Attachment struct {
	Name string `json:"name"`
	Data string `json:"data"`
	Size int64  `json:"size"`
}

// CreateNoteRequest — тело запроса создания заметки.
type CreateNoteRequest struct {
	Ciphertext      []byte       `json:"ciphertext"`
	IV              []byte       `json:"iv"`
	IsProtected     bool         `json:"isProtected"`
	EncryptedKey    []byte       `json:"encryptedKey,omitempty"`
	KeyIV           []byte       `json:"keyIv,omitempty"`
	Salt            []byte       `json:"salt,omitempty"`
	Title           *string      `json:"title,omitempty"`
	AuthorName      *string      `json:"authorName,omitempty"`
	AuthorEmail     *string      `json:"authorEmail,omitempty"`
	MaxReads        *int         `json:"maxReads,omitempty"`
	DurationMinutes *int         `json:"durationMinutes,omitempty"`
	MaxViews        *int64       `json:"maxViews,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	NoDestroyToken  bool         `json:"noDestroyToken,omitempty"`
}

// CreateNoteResponse — ответ сервера на создание.
type CreateNoteResponse struct {
	ID           string     `json:"id"`
	DestroyToken string     `json:"destroyToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// NoteResponse — заметка в том виде, в каком её отдаёт сервер.
type NoteResponse struct {
	ID             string       `json:"id"`
	Title          *string      `json:"title"`
	Ciphertext     []byte       `json:"ciphertext"`
	IV             []byte       `json:"iv"`
	RemainingReads *int         `json:"remainingReads"`
	IsProtected    bool         `json:"isProtected"`
	EncryptedKey   []byte       `json:"encryptedKey,omitempty"`
	KeyIV          []byte       `json:"keyIv,omitempty"`
	Salt           []byte       `json:"salt,omitempty"`
	Attachments    []Attachment `json:"attachments"`
	AuthorName     string       `json:"authorName"`
	AuthorEmail    string       `json:"authorEmail"`
	CreatedAt      time.Time    `json:"createdAt"`
	ExpiresAt      *time.Time   `json:"expiresAt"`
	ViewCount      int64        `json:"viewCount"`
	MaxViews       *int64       `json:"maxViews"`
}

// SentNote — запись локальной истории отправленных заметок.
// Ключ заметки в истории не хранится, только то, что нужно для удаления.
type SentNote struct {
	ID           string
	Server       string
	DestroyToken string
	Title        string
	CreatedAt    int64
	ExpiresAt    int64 // 0 — без срока
}
