package repo

import (
	"VaultNote/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// NoteRepository — контракт хранилища заметок для движка жизненного цикла.
// Каждая операция атомарна на уровне одной строки.
type NoteRepository interface {
	// Create вставляет новую заметку.
	Create(ctx context.Context, n *model.Note) error

	// GetByID возвращает заметку или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id string) (*model.Note, error)

	// ConsumeRead атомарно засчитывает одно чтение, если строка всё ещё совпадает
	// с прочитанным ранее состоянием pre (compare-and-swap по счётчикам).
	// Возвращает false, если строку успел изменить или удалить другой запрос.
	ConsumeRead(ctx context.Context, pre *model.Note, now time.Time) (bool, error)

	// Delete удаляет заметку. Возвращает false, если её уже нет.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteExpired удаляет истёкшие и исчерпанные заметки, возвращает их количество.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type noteRepo struct {
	db *gorm.DB
}

// NewNoteRepository создаёт реализацию репозитория для Note.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *noteRepo) GetByID(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepo) ConsumeRead(ctx context.Context, pre *model.Note, now time.Time) (bool, error) {
	updates := map[string]any{"view_count": gorm.Expr("view_count + 1")}
	q := r.db.WithContext(ctx).Model(&model.Note{}).Where("id = ?", pre.ID)
	if pre.RemainingReads != nil {
		left := *pre.RemainingReads - 1
		q = q.Where("remaining_reads = ?", *pre.RemainingReads)
		updates["remaining_reads"] = left
		// consumed_at ставится тем же UPDATE, что и последний декремент
		if left == 0 {
			updates["consumed_at"] = now
		}
	}
	if pre.MaxViews != nil {
		q = q.Where("view_count = ?", pre.ViewCount)
	}
	tx := q.Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *noteRepo) Delete(ctx context.Context, id string) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *noteRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR remaining_reads <= 0 OR (max_views IS NOT NULL AND view_count >= max_views)", now).
		Delete(&model.Note{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
