package handlers_test

import (
	"VaultNote/internal/config"
	"VaultNote/internal/crypto"
	"VaultNote/internal/handlers"
	"VaultNote/internal/middleware"
	"VaultNote/internal/repo"
	"VaultNote/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:h_%s?mode=memory&cache=shared", name))
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

func testConfig() *config.Config {
	return &config.Config{
		MetadataKey:        "test-metadata-secret",
		CronSecret:         "cron-secret",
		MaxCiphertextKB:    64,
		MaxAttachments:     10,
		AttachmentMaxMB:    1,
		MaxDurationMinutes: 60,
		RateLimit:          1000,
		RateWindow:         time.Minute,
	}
}

// newTestRouter собирает роутер поверх настоящего сервиса и SQLite
func newTestRouter(t *testing.T, cfg *config.Config, limiter middleware.Limiter) http.Handler {
	t.Helper()
	db := newTestDB(t)
	meta, err := crypto.NewMetadataCipher(cfg.MetadataKey)
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop().Sugar()
	svc := service.NewNoteService(repo.NewNoteRepository(db), meta, logger, service.Limits{
		MaxCiphertextBytes: cfg.MaxCiphertextKB * 1024,
		MaxAttachments:     cfg.MaxAttachments,
		AttachmentMaxBytes: int64(cfg.AttachmentMaxMB) * 1024 * 1024,
		MaxDurationMinutes: cfg.MaxDurationMinutes,
	})
	if limiter == nil {
		limiter = middleware.NewClientLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	return handlers.NewHandlerWithLimiter(svc, logger, cfg, db, limiter).Router
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func validCreate() map[string]any {
	return map[string]any{
		"ciphertext": []byte("opaque-ciphertext"),
		"iv":         make([]byte, crypto.NonceSize),
	}
}

func createNote(t *testing.T, h http.Handler, body map[string]any) handlers.CreateNoteResponse {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/notes", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var res handlers.CreateNoteResponse
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	return res
}
