package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client — общий HTTP-клиент CLI.
var Client = &http.Client{Timeout: 30 * time.Second}

// Ошибки сервера, различимые клиентом.
var (
	ErrNotFound  = errors.New("note not found")
	ErrGone      = errors.New("note has expired or been consumed")
	ErrForbidden = errors.New("forbidden")
	ErrThrottled = errors.New("too many requests, try later")
	ErrTooLarge  = errors.New("payload too large")
	ErrAuth      = errors.New("unauthorized")
)

// do выполняет запрос и читает тело ответа целиком.
func do(ctx context.Context, method, url string, payload any, headers map[string]string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, b, nil
}

// PostJSON sends a JSON POST request.
func PostJSON(ctx context.Context, url string, payload any) (*http.Response, []byte, error) {
	return do(ctx, http.MethodPost, url, payload, nil)
}

// GetJSON sends a GET request.
func GetJSON(ctx context.Context, url string) (*http.Response, []byte, error) {
	return do(ctx, http.MethodGet, url, nil, nil)
}

// Delete sends a DELETE request with extra headers.
func Delete(ctx context.Context, url string, headers map[string]string) (*http.Response, []byte, error) {
	return do(ctx, http.MethodDelete, url, nil, headers)
}

// CheckStatus переводит неуспешный ответ в ошибку; тело вида {"error": "..."} попадает в текст.
func CheckStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusGone:
		return ErrGone
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusUnauthorized:
		return ErrAuth
	}
	return fmt.Errorf("server error (%d): %s", resp.StatusCode, ErrorMessage(body))
}

// ErrorMessage извлекает поле error из JSON-ответа, иначе возвращает тело как есть.
func ErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
