package crypto

import "encoding/base64"

// ExportKey сериализует ключ содержимого в URL-безопасную строку для фрагмента ссылки (#...).
// Фрагмент не отправляется на сервер, поэтому ключ никогда не попадает в запрос.
func ExportKey(key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKey
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}

// ImportKey — обратная операция к ExportKey.
func ImportKey(s string) ([]byte, error) {
	key, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
