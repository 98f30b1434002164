// Package crypto содержит примитивы конверта заметки: шифрование содержимого (AES-256-GCM),
// сериализацию ключа для фрагмента ссылки, обёртку ключа паролем и шифр метаданных.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize — длина ключа содержимого для AES‑256 (в байтах).
	KeySize = 32
	// NonceSize — длина nonce AES-GCM (96 бит).
	NonceSize = 12
	// MaxCiphertextSize — предел размера шифртекста содержимого (64 KiB).
	MaxCiphertextSize = 64 * 1024
)

var (
	ErrInvalidKey      = errors.New("invalid key")
	ErrDecrypt         = errors.New("decryption failed")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// GenerateKey создаёт новый случайный ключ содержимого.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal шифрует plain с помощью AES‑GCM и заданного ключа.
// Возвращает шифртекст и nonce. Nonce генерируется заново при каждом вызове.
func Seal(plain, key []byte) ([]byte, []byte, error) {
	return seal(plain, key, nil)
}

// Open расшифровывает шифртекст. Любое изменение шифртекста или nonce даёт ErrDecrypt.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	return open(ciphertext, nonce, key, nil)
}

func seal(plain, key, aad []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	if len(plain)+gcm.Overhead() > MaxCiphertextSize {
		return nil, nil, ErrPayloadTooLarge
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	out := gcm.Seal(nil, nonce, plain, aad)
	return out, nonce, nil
}

func open(ciphertext, nonce, key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, ErrDecrypt
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
