package bootstrap

import (
	"fmt"

	"VaultNote/internal/cli/repo"
	reposqlite "VaultNote/internal/cli/repo/sqlite"
	"VaultNote/internal/config"
)

// OpenSentRepo открывает локальную историю отправленных заметок,
// выполняет миграции и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenSentRepo(cfg *config.Config) (repo.SentNoteRepository, func() error, error) {
	r, err := reposqlite.Open(cfg.ClientDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open client db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("migrate client db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}
