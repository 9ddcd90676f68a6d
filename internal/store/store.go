package store

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/where"
)

// IDGenerator produces search request ids.
type IDGenerator interface {
	Generate() string
}

// uuidV7 generates time-ordered request ids.
type uuidV7 struct{}

func (uuidV7) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 request id generator.
// Tests use testutil.FixedIDGenerator for stable output.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// Store runs attribute searches against mapped tables.
type Store struct {
	db       *sql.DB
	dialect  where.Dialect
	mapping  *colmap.Mapping
	resolver *colmap.Resolver
	ids      IDGenerator
}

// Open connects to a database and prepares it for searches.
//
// driver is a database/sql driver name ("sqlite3", "postgres", "mysql")
// and selects the SQL dialect. The caller must import the postgres and
// mysql drivers; sqlite3 is registered by this package.
//
// SQLite connections are configured with:
//   - WAL mode for concurrent reads during writes
//   - a 5-second busy timeout for lock contention
//   - case-sensitive LIKE, matching the in-memory filter evaluator
func Open(driver, dsn string, m *colmap.Mapping, opts ...Option) (*Store, error) {
	if m == nil {
		return nil, fmt.Errorf("open store: no column mapping")
	}
	dialect, err := where.ParseDialect(driver)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if dialect == where.MySQL {
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("open store: invalid mysql dsn: %w", err)
		}
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == where.SQLite {
		// SQLite only supports one writer at a time, and pragmas are
		// per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return OpenDB(db, dialect, m, opts...), nil
}

// OpenDB wraps an existing connection pool. The Store takes ownership of db.
func OpenDB(db *sql.DB, dialect where.Dialect, m *colmap.Mapping, opts ...Option) *Store {
	s := &Store{
		db:       db,
		dialect:  dialect,
		mapping:  m,
		resolver: colmap.NewResolver(m, dialect),
		ids:      uuidV7{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the connection.
func (s *Store) Dialect() where.Dialect {
	return s.dialect
}

// Resolver returns the column resolver searches translate filters with.
func (s *Store) Resolver() *colmap.Resolver {
	return s.resolver
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA case_sensitive_like = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
