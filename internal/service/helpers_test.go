package service

import (
	"VaultNote/internal/crypto"
	"VaultNote/internal/repo"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// fakeClock — управляемое время для проверки границ истечения
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.Migrate(context.Background(), db, zap.NewNop().Sugar()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestMeta(t *testing.T) *crypto.MetadataCipher {
	t.Helper()
	m, err := crypto.NewMetadataCipher("test-metadata-secret")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// newTestService собирает сервис поверх настоящего репозитория на SQLite
func newTestService(t *testing.T) (*NoteService, *gorm.DB, *fakeClock) {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	svc := NewNoteService(repo.NewNoteRepository(db), newTestMeta(t), zap.NewNop().Sugar(), DefaultLimits).
		WithClock(clock.Now)
	return svc, db, clock
}

func ptrInt(v int) *int       { return &v }
func ptrInt64(v int64) *int64 { return &v }
func ptrStr(s string) *string { return &s }

func iv() []byte { return make([]byte, crypto.NonceSize) }
