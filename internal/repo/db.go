package repo

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Версионированные миграции схемы, по каталогу на диалект.
//
//go:embed migrations
var migrationsFS embed.FS

// IsPostgresDSN определяет, что строка подключения указывает на PostgreSQL.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// SQLiteDSN дополняет путь к файлу SQLite нужными параметрами драйвера modernc.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_time_format=sqlite&_pragma=busy_timeout(5000)"
	}
	return path + "?_time_format=sqlite&_pragma=busy_timeout(5000)"
}

// InitDB открывает БД: PostgreSQL для postgres DSN, иначе файл SQLite (modernc.org/sqlite).
func InitDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if IsPostgresDSN(dsn) {
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: SQLiteDSN(dsn)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite допускает одного писателя; сериализуем доступ на уровне пула
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// gooseLogger направляет вывод goose в zap.
type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) { g.l.Fatalf(format, v...) }
func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Infof(strings.TrimSpace(format), v...)
}

// Migrate применяет миграции схемы один раз при старте.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	name := db.Dialector.Name()
	dialect := "sqlite3"
	if name == "postgres" {
		dialect = "postgres"
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{l: log})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations/"+name); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping проверяет доступность БД.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
