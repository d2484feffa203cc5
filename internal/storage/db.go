package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc регистрируется как "sqlite", sqlx по умолчанию знает только "sqlite3"
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open выбирает драйвер по схеме dsn:
// postgres://... и postgresql://... идут в lib/pq, sqlite://path и sqlite::memory: во встроенный sqlite
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, source)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// sqlite не любит параллельных писателей, а :memory: живет в одном соединении
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

func parseDSN(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	default:
		return "", "", fmt.Errorf("unsupported database dsn %q", dsn)
	}
}

var schema = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT UNIQUE,
	content TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	views INTEGER NOT NULL DEFAULT 0,
	reading_time INTEGER NOT NULL DEFAULT 1,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	slug TEXT UNIQUE,
	content TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	views INTEGER NOT NULL DEFAULT 0,
	reading_time INTEGER NOT NULL DEFAULT 1,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
}

// Migrate создает таблицу posts под текущий драйвер
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ddl, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}

	return nil
}
