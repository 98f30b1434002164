package service

import (
	"VaultNote/internal/cli/api"
	"VaultNote/internal/cli/model"
	"VaultNote/internal/crypto"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrMissingKey — в ссылке нет ключа, а заметка не защищена паролем.
	ErrMissingKey = errors.New("link has no key fragment")
	// ErrPasswordRequired — заметка под паролем, а пароль не передан.
	ErrPasswordRequired = errors.New("note is password protected")
)

// NoteClient шифрует заметки локально и общается с сервером.
// Сервер видит только шифртекст; ключ живёт во фрагменте ссылки или под паролем.
type NoteClient struct {
	server string
	kdf    crypto.KDFParams
}

func NewNoteClient(server string) *NoteClient {
	return &NoteClient{server: strings.TrimRight(server, "/"), kdf: crypto.DefaultKDFParams}
}

// WithKDFParams задаёт параметры argon2id (в тестах — облегчённые).
func (c *NoteClient) WithKDFParams(p crypto.KDFParams) *NoteClient {
	c.kdf = p
	return c
}

// CreateOptions — параметры новой заметки.
type CreateOptions struct {
	Password        string
	MaxReads        *int
	DurationMinutes *int
	MaxViews        *int64
	Title           *string
	AuthorName      *string
	AuthorEmail     *string
	NoDestroyToken  bool
}

// Created — результат создания.
type Created struct {
	ID           string
	Link         string
	DestroyToken string
	ExpiresAt    *time.Time
}

// Create шифрует plaintext новым ключом и загружает заметку.
func (c *NoteClient) Create(ctx context.Context, plaintext []byte, opts CreateOptions) (*Created, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	ct, iv, err := crypto.Seal(plaintext, key)
	if err != nil {
		return nil, err
	}

	req := model.CreateNoteRequest{
		Ciphertext:      ct,
		IV:              iv,
		Title:           opts.Title,
		AuthorName:      opts.AuthorName,
		AuthorEmail:     opts.AuthorEmail,
		MaxReads:        opts.MaxReads,
		DurationMinutes: opts.DurationMinutes,
		MaxViews:        opts.MaxViews,
		NoDestroyToken:  opts.NoDestroyToken,
	}
	if opts.Password != "" {
		w, err := crypto.WrapWithParams(key, opts.Password, c.kdf)
		if err != nil {
			return nil, err
		}
		req.IsProtected = true
		req.EncryptedKey, req.KeyIV, req.Salt = w.Cipher, w.Nonce, w.Salt
	}

	resp, body, err := api.PostJSON(ctx, c.server+"/api/notes", req)
	if err != nil {
		return nil, err
	}
	if err := api.CheckStatus(resp, body); err != nil {
		return nil, err
	}
	var res model.CreateNoteResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}

	// для заметки под паролем ключ в ссылку не кладём
	linkKey := key
	if req.IsProtected {
		linkKey = nil
	}
	link, err := BuildLink(c.server, res.ID, linkKey)
	if err != nil {
		return nil, err
	}
	return &Created{ID: res.ID, Link: link, DestroyToken: res.DestroyToken, ExpiresAt: res.ExpiresAt}, nil
}

// Opened — расшифрованная заметка.
type Opened struct {
	Plaintext      []byte
	Title          *string
	AuthorName     string
	AuthorEmail    string
	RemainingReads *int
	ViewCount      int64
	MaxViews       *int64
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	Attachments    []model.Attachment
}

// Read забирает заметку по ссылке (расходуя одно чтение) и расшифровывает её.
// password вызывается, только если заметка защищена паролем.
func (c *NoteClient) Read(ctx context.Context, rawLink string, password func() (string, error)) (*Opened, error) {
	l, err := ParseLink(rawLink)
	if err != nil {
		return nil, err
	}
	server := l.Server
	if server == "" {
		server = c.server
	}

	resp, body, err := api.GetJSON(ctx, server+"/api/notes/"+url.PathEscape(l.ID))
	if err != nil {
		return nil, err
	}
	if err := api.CheckStatus(resp, body); err != nil {
		return nil, err
	}
	var n model.NoteResponse
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decode note: %w", err)
	}

	key := l.Key
	if n.IsProtected {
		if password == nil {
			return nil, ErrPasswordRequired
		}
		pw, err := password()
		if err != nil {
			return nil, err
		}
		key, err = crypto.UnwrapWithParams(crypto.WrappedKey{Cipher: n.EncryptedKey, Nonce: n.KeyIV, Salt: n.Salt}, pw, c.kdf)
		if err != nil {
			return nil, err
		}
	}
	if key == nil {
		return nil, ErrMissingKey
	}

	plain, err := crypto.Open(n.Ciphertext, n.IV, key)
	if err != nil {
		return nil, err
	}
	return &Opened{
		Plaintext:      plain,
		Title:          n.Title,
		AuthorName:     n.AuthorName,
		AuthorEmail:    n.AuthorEmail,
		RemainingReads: n.RemainingReads,
		ViewCount:      n.ViewCount,
		MaxViews:       n.MaxViews,
		CreatedAt:      n.CreatedAt,
		ExpiresAt:      n.ExpiresAt,
		Attachments:    n.Attachments,
	}, nil
}

// Destroy удаляет заметку; server пустой — сервер клиента.
func (c *NoteClient) Destroy(ctx context.Context, server, id, token string) error {
	if server == "" {
		server = c.server
	}
	headers := map[string]string{}
	if token != "" {
		headers["X-Destroy-Token"] = token
	}
	resp, body, err := api.Delete(ctx, strings.TrimRight(server, "/")+"/api/notes/"+url.PathEscape(id), headers)
	if err != nil {
		return err
	}
	return api.CheckStatus(resp, body)
}

// Purge запускает очистку на сервере и возвращает число удалённых заметок.
func (c *NoteClient) Purge(ctx context.Context, secret string) (int64, error) {
	resp, body, err := api.GetJSON(ctx, c.server+"/api/cron/cleanup?auth="+url.QueryEscape(secret))
	if err != nil {
		return 0, err
	}
	if err := api.CheckStatus(resp, body); err != nil {
		return 0, err
	}
	var res struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, fmt.Errorf("decode cleanup response: %w", err)
	}
	return res.Deleted, nil
}
