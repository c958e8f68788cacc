package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a connection pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	driver string
}

// New creates a new database connection pool for the given driver ("sqlite" or "postgres").
func New(driver, dataSourceName string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch driver {
	case "sqlite":
		conn, err = sql.Open("sqlite", sqliteDSN(dataSourceName))
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; an in-memory database also lives per connection.
		conn.SetMaxOpenConns(1)
	case "postgres":
		conn, err = sql.Open("pgx", dataSourceName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{DB: conn, driver: driver}, nil
}

// Driver returns the driver name the pool was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites '?' placeholders into the positional form the driver expects.
func (db *DB) Rebind(query string) string {
	if db.Driver() != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate applies the embedded goose migrations.
func Migrate(db *DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: log.With().Str("component", "migrate").Logger()})

	dialect := "sqlite3"
	if db.Driver() == "postgres" {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
