// Package database stores per-owner documents (settings and projects) in
// PostgreSQL or SQLite.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard `database/sql`
// with helpers like Rebind and GetContext. Each row holds one JSON document,
// so the queries stay tiny and the same SQL runs on both dialects.
//
// Go's database/sql has built-in connection pooling — you create one *sqlx.DB
// at startup and share it across your entire application.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver — the underscore import runs its init()
	_ "modernc.org/sqlite" // pure-Go SQLite driver, registered as "sqlite"

	"github.com/Shimizu-Technology/storyboard-api/internal/secrets"
)

// Dialect names the SQL backend behind a DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own.
type DB struct {
	*sqlx.DB
	dialect Dialect
	sealer  *secrets.Sealer
}

// ParseURL picks the dialect and driver DSN for a DATABASE_URL.
//
//	postgres://... or postgresql://...  -> Postgres
//	sqlite://path, sqlite:path, file:path or a bare *.db path -> SQLite
func ParseURL(databaseURL string) (Dialect, string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", fmt.Errorf("DATABASE_URL is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return Postgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		return SQLite, strings.TrimPrefix(u, "sqlite://"), nil
	case strings.HasPrefix(u, "sqlite:"):
		return SQLite, strings.TrimPrefix(u, "sqlite:"), nil
	case strings.HasPrefix(u, "file:"), strings.HasSuffix(u, ".db"), u == ":memory:":
		return SQLite, u, nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme (want postgres:// or sqlite://)")
}

// New opens the database named by databaseURL. Secret settings fields are
// sealed with sealer before they are written.
func New(databaseURL string, sealer *secrets.Sealer) (*DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	driver := "postgres"
	if dialect == SQLite {
		driver = "sqlite"
		dsn = sqliteDSN(dsn)
	}

	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == SQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(2 * time.Minute)
		db.SetConnMaxIdleTime(30 * time.Second)
	}

	return &DB{DB: db, dialect: dialect, sealer: sealer}, nil
}

// sqliteDSN turns on foreign keys and a busy timeout unless the DSN already
// carries pragmas.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Dialect reports which backend this DB talks to.
func (db *DB) Dialect() Dialect { return db.dialect }

// HealthCheck verifies the database connection is alive.
// Go Pattern: context.Context is passed to functions that may be slow or
// need cancellation (like database queries, HTTP requests).
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// q rebinds a query written with ? placeholders for the current driver.
func (db *DB) q(query string) string {
	return db.Rebind(query)
}
