package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Field — семантическое поле метаданных. Имя поля используется как associated data,
// поэтому токен заголовка нельзя подставить вместо токена автора.
type Field string

const (
	FieldTitle       Field = "title"
	FieldAuthorName  Field = "author_name"
	FieldAuthorEmail Field = "author_email"
)

// DecryptionPlaceholder отдаётся читателю вместо метаданных, которые не удалось расшифровать.
const DecryptionPlaceholder = "[Decryption Failed]"

const metadataKeyInfo = "vaultnote metadata v1"

// MetadataCipher шифрует отображаемые метаданные (заголовок, имя и email автора)
// серверным секретом.
//
// ВНИМАНИЕ: это НЕ zero-knowledge шифрование. Сервер держит ключ и может прочитать
// эти поля; шифр защищает только от пассивного просмотра хранилища. Содержимое
// заметки шифруется только на клиенте через Seal/Open, и эти гарантии не эквивалентны.
type MetadataCipher struct {
	key []byte
}

// NewMetadataCipher выводит ключ метаданных из серверного секрета (HKDF-SHA256).
func NewMetadataCipher(secret string) (*MetadataCipher, error) {
	if secret == "" {
		return nil, errors.New("empty metadata secret")
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(metadataKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return &MetadataCipher{key: key}, nil
}

// EncryptField шифрует text и возвращает токен base64(nonce || ciphertext).
func (m *MetadataCipher) EncryptField(field Field, text string) (string, error) {
	c, n, err := seal([]byte(text), m.key, []byte(field))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(n, c...)), nil
}

// DecryptField расшифровывает токен поля. Ошибка всегда ErrDecrypt.
func (m *MetadataCipher) DecryptField(field Field, token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(raw) < NonceSize {
		return "", ErrDecrypt
	}
	plain, err := open(raw[NonceSize:], raw[:NonceSize], m.key, []byte(field))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// DecryptOrPlaceholder — вариант для пути чтения: метаданные косметические,
// поэтому ошибка превращается в DecryptionPlaceholder.
func (m *MetadataCipher) DecryptOrPlaceholder(field Field, token string) string {
	s, err := m.DecryptField(field, token)
	if err != nil {
		return DecryptionPlaceholder
	}
	return s
}
