package sqlite

import (
	"VaultNote/internal/cli/model"
	"VaultNote/internal/cli/repo"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SentRepositorySQLite — локальная история отправленных заметок (SQLite).
type SentRepositorySQLite struct {
	db *sql.DB
}

var _ repo.SentNoteRepository = (*SentRepositorySQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД клиента.
func Open(path string) (*SentRepositorySQLite, error) {
	if path == "" {
		return nil, errors.New("empty client db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SentRepositorySQLite{db: db}, nil
}

// Close закрывает соединение с БД.
func (r *SentRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *SentRepositorySQLite) Migrate() error {
	_, err := r.db.Exec(sentNotesSchema)
	return err
}

func (r *SentRepositorySQLite) Save(n model.SentNote) error {
	_, err := r.db.Exec(`INSERT INTO sent_notes(id, server, destroy_token, title, created_at, expires_at)
        VALUES(?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            server = excluded.server,
            destroy_token = excluded.destroy_token,
            title = excluded.title,
            created_at = excluded.created_at,
            expires_at = excluded.expires_at`,
		n.ID, n.Server, n.DestroyToken, n.Title, n.CreatedAt, n.ExpiresAt,
	)
	return err
}

func (r *SentRepositorySQLite) Get(id string) (*model.SentNote, error) {
	var n model.SentNote
	err := r.db.QueryRow(`SELECT id, server, destroy_token, title, created_at, expires_at
   FROM sent_notes WHERE id = ?`, id).
		Scan(&n.ID, &n.Server, &n.DestroyToken, &n.Title, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrSentNotFound
		}
		return nil, err
	}
	return &n, nil
}

// List возвращает все записи, отсортированные по created_at DESC.
func (r *SentRepositorySQLite) List() ([]model.SentNote, error) {
	rows, err := r.db.Query(`SELECT id, server, destroy_token, title, created_at, expires_at
   FROM sent_notes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.SentNote
	for rows.Next() {
		var n model.SentNote
		if err := rows.Scan(&n.ID, &n.Server, &n.DestroyToken, &n.Title, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func (r *SentRepositorySQLite) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sent_notes WHERE id = ?`, id)
	return err
}
