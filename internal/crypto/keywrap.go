package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize — длина соли для вывода ключа из пароля.
	SaltSize = 16
	// MinPasswordLen — минимальная длина пароля в символах.
	MinPasswordLen = 6
)

var (
	ErrWeakPassword = errors.New("password must be at least 6 characters long")
	// ErrWrongPassword возвращается и при неверном пароле, и при повреждённой обёртке.
	ErrWrongPassword = errors.New("wrong password or corrupted key")
)

// KDFParams — параметры argon2id.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams подобраны так, чтобы вывод ключа занимал порядка 100 мс.
var DefaultKDFParams = KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}

// WrappedKey — ключ содержимого, зашифрованный ключом из пароля.
type WrappedKey struct {
	Cipher []byte
	Nonce  []byte
	Salt   []byte
}

func deriveWrappingKey(password string, salt []byte, p KDFParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, KeySize)
}

// Wrap шифрует contentKey ключом, выведенным из пароля и свежей соли.
func Wrap(contentKey []byte, password string) (WrappedKey, error) {
	return WrapWithParams(contentKey, password, DefaultKDFParams)
}

// WrapWithParams — Wrap с явными параметрами KDF.
func WrapWithParams(contentKey []byte, password string, p KDFParams) (WrappedKey, error) {
	// короткий пароль отсекаем до дорогого вывода ключа
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return WrappedKey{}, ErrWeakPassword
	}
	if len(contentKey) != KeySize {
		return WrappedKey{}, ErrInvalidKey
	}
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return WrappedKey{}, err
	}
	c, n, err := Seal(contentKey, deriveWrappingKey(password, salt, p))
	if err != nil {
		return WrappedKey{}, err
	}
	return WrappedKey{Cipher: c, Nonce: n, Salt: salt}, nil
}

// Unwrap восстанавливает ключ содержимого.
func Unwrap(w WrappedKey, password string) ([]byte, error) {
	return UnwrapWithParams(w, password, DefaultKDFParams)
}

// UnwrapWithParams — Unwrap с явными параметрами KDF.
func UnwrapWithParams(w WrappedKey, password string, p KDFParams) ([]byte, error) {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if len(w.Salt) != SaltSize {
		return nil, ErrWrongPassword
	}
	key, err := Open(w.Cipher, w.Nonce, deriveWrappingKey(password, w.Salt, p))
	if err != nil || len(key) != KeySize {
		return nil, ErrWrongPassword
	}
	return key, nil
}
