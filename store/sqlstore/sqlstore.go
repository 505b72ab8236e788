/*
Package sqlstore implements leave.TxStore on a relational database.

PURPOSE:
  One implementation for SQLite (development, tests) and PostgreSQL
  (production). Queries are written with ? placeholders and rebound for
  the active driver.

DRIVERS:
  sqlite3   github.com/mattn/go-sqlite3, DSN is a file path or ":memory:"
  postgres  github.com/lib/pq, DSN is a connection URL

KEY TABLES:
  users:          accounts, unique email, optional live manager
  leave_types:    reference data, seeded on migrate
  leave_balances: one row per (user, leave type, year)
  leave_requests: submissions with a manager snapshot

CONCURRENCY:
  SQLite opens write transactions with BEGIN IMMEDIATE so two approvals
  serialize on the database lock. PostgreSQL row locks taken by the
  conditional UPDATE do the same.

USAGE:
  store, err := sqlstore.NewSQLite("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, logger)

MIGRATION:
  Schema is created on Open with CREATE TABLE IF NOT EXISTS and the
  leave types are seeded idempotently.
*/
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-service/leave"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store implements leave.TxStore. A Store returned by Open runs against
// the pool; the one handed to WithTx callbacks runs inside the transaction.
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

var _ leave.TxStore = (*Store)(nil)

// Open connects to the database, creates the schema and seeds the
// leave types.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, ext: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// NewSQLite opens a SQLite store. Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*Store, error) {
	return Open(DriverSQLite, path)
}

func sqliteDSN(path string) string {
	params := "_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.db.DriverName()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id {{PK}},
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'employee'
		CHECK (role IN ('employee', 'manager', 'admin')),
	department TEXT,
	manager_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leave_types (
	id {{PK}},
	name TEXT NOT NULL UNIQUE,
	days_per_year INTEGER NOT NULL CHECK (days_per_year >= 0)
);

CREATE TABLE IF NOT EXISTS leave_balances (
	id {{PK}},
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	leave_type_id BIGINT NOT NULL REFERENCES leave_types(id),
	year INTEGER NOT NULL,
	total_days INTEGER NOT NULL,
	used_days INTEGER NOT NULL DEFAULT 0,
	remaining_days INTEGER NOT NULL,
	UNIQUE (user_id, leave_type_id, year)
);

CREATE TABLE IF NOT EXISTS leave_requests (
	id {{PK}},
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	leave_type_id BIGINT NOT NULL REFERENCES leave_types(id),
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	working_days INTEGER NOT NULL CHECK (working_days > 0),
	reason TEXT NOT NULL,
	manager_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'approved', 'rejected')),
	approved_by BIGINT REFERENCES users(id),
	approved_date TEXT,
	rejected_by BIGINT REFERENCES users(id),
	rejected_date TEXT,
	rejection_reason TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_manager ON users(manager_id);
CREATE INDEX IF NOT EXISTS idx_balances_user_year ON leave_balances(user_id, year);
CREATE INDEX IF NOT EXISTS idx_requests_user ON leave_requests(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_requests_manager_status ON leave_requests(manager_id, status);
CREATE INDEX IF NOT EXISTS idx_requests_status ON leave_requests(status);
`

// DefaultLeaveTypes is the reference data seeded on migrate.
var DefaultLeaveTypes = []leave.LeaveType{
	{Name: "Annual Leave", DaysPerYear: 21},
	{Name: "Sick Leave", DaysPerYear: 14},
	{Name: "Personal Leave", DaysPerYear: 5},
	{Name: "Maternity Leave", DaysPerYear: 90},
	{Name: "Paternity Leave", DaysPerYear: 14},
}

func (s *Store) migrate(ctx context.Context) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.DriverName() == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}
	if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(schema, "{{PK}}", pk)); err != nil {
		return err
	}

	seed := s.db.Rebind(`
		INSERT INTO leave_types (name, days_per_year)
		VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`)
	for _, lt := range DefaultLeaveTypes {
		if _, err := s.db.ExecContext(ctx, seed, lt.Name, lt.DaysPerYear); err != nil {
			return fmt.Errorf("failed to seed leave type %s: %w", lt.Name, err)
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS (leave.TxStore interface)
// =============================================================================

// WithTx runs fn inside a database transaction. fn receives a Store bound
// to the transaction; an error from fn rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	if _, nested := s.ext.(*sqlx.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, ext: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translate(err))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.ext, dest, s.ext.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.ext.ExecContext(ctx, s.ext.Rebind(query), args...)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.ext.QueryRowxContext(ctx, s.ext.Rebind(query), args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(t time.Time) string {
	return t.Format(leave.DateLayout)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(leave.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
