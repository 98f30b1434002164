package repo

import (
	"VaultNote/internal/cli/model"
	"errors"
)

// ErrSentNotFound — заметки нет в локальной истории.
var ErrSentNotFound = errors.New("note not found in local history")

// SentNoteRepository определяет порт доступа к локальной истории отправленных заметок.
type SentNoteRepository interface {
	// Save добавляет или перезаписывает запись.
	Save(n model.SentNote) error

	// Get возвращает запись по id или ErrSentNotFound.
	Get(id string) (*model.SentNote, error)

	// List возвращает записи, новые первыми.
	List() ([]model.SentNote, error)

	// Delete удаляет запись; отсутствие записи не ошибка.
	Delete(id string) error
}
