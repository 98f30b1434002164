package model

import "time"

// Note — серверная модель заметки. Сервер хранит только шифртекст;
// ключ содержимого лежит во фрагменте ссылки либо обёрнут паролем.
type Note struct {
	ID string `gorm:"primaryKey;type:uuid"`

	// Неизменяемые после создания
	Ciphertext   []byte `gorm:"not null"`
	IV           []byte `gorm:"column:iv;not null"`
	IsProtected  bool   `gorm:"not null;default:false"`
	EncryptedKey []byte
	KeyIV        []byte `gorm:"column:key_iv"`
	Salt         []byte

	TitleEncrypted       *string
	AuthorNameEncrypted  *string
	AuthorEmailEncrypted *string

	Images []Attachment `gorm:"serializer:json"`

	// Счётчики жизненного цикла
	RemainingReads *int       // nil — без ограничения по чтениям
	ExpiresAt      *time.Time // nil — без ограничения по времени
	ConsumedAt     *time.Time
	ViewCount      int64 `gorm:"not null;default:0"`
	MaxViews       *int64

	DestroyToken *string

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Attachment — уже зашифрованное клиентом вложение, сервер его не интерпретирует.
type Attachment struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64
	Size int64  `json:"size"`
}

// Expired: истёкшей считается заметка с expiresAt строго раньше now.
func (n *Note) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

// Exhausted — закончились чтения или достигнут лимит просмотров.
func (n *Note) Exhausted() bool {
	if n.RemainingReads != nil && *n.RemainingReads <= 0 {
		return true
	}
	return n.MaxViews != nil && n.ViewCount >= *n.MaxViews
}
