package service

import (
	"VaultNote/internal/config"
	"VaultNote/internal/crypto"
	"VaultNote/internal/handlers"
	"VaultNote/internal/repo"
	srv "VaultNote/internal/service"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

var testKDF = crypto.KDFParams{Time: 1, Memory: 8 * 1024, Threads: 1}

// newTestServer поднимает настоящий сервер заметок поверх SQLite в памяти
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:cli_%s?mode=memory&cache=shared", name))
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.Migrate(context.Background(), db, nil); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		MetadataKey:        "cli-test-secret",
		CronSecret:         "cron",
		MaxCiphertextKB:    64,
		MaxAttachments:     10,
		AttachmentMaxMB:    1,
		MaxDurationMinutes: 60,
		RateLimit:          1000,
		RateWindow:         time.Minute,
	}
	meta, err := crypto.NewMetadataCipher(cfg.MetadataKey)
	if err != nil {
		t.Fatal(err)
	}
	log := zap.NewNop().Sugar()
	svc := srv.NewNoteService(repo.NewNoteRepository(db), meta, log, srv.DefaultLimits)
	ts := httptest.NewServer(handlers.NewHandler(svc, log, cfg, db).Router)
	t.Cleanup(ts.Close)
	return ts
}

func ptrInt(v int) *int       { return &v }
func ptrStr(s string) *string { return &s }
