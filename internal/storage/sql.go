package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver - no CGO required
)

// dialect holds the SQL that differs between engines.
type dialect struct {
	name   string
	driver string
	schema string
	get    string
	upsert string
	del    string
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite",
		schema: `
	CREATE TABLE IF NOT EXISTS device_storage (
		namespace TEXT NOT NULL,
		k TEXT NOT NULL,
		v BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, k)
	)`,
		get: `SELECT v FROM device_storage WHERE namespace = ? AND k = ?`,
		upsert: `
		INSERT INTO device_storage (namespace, k, v, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, k) DO UPDATE SET
			v = excluded.v,
			updated_at = excluded.updated_at`,
		del: `DELETE FROM device_storage WHERE namespace = ? AND k = ?`,
	}

	mysqlDialect = dialect{
		name:   "mysql",
		driver: "mysql",
		schema: `
	CREATE TABLE IF NOT EXISTS device_storage (
		namespace VARCHAR(128) NOT NULL,
		k VARCHAR(191) NOT NULL,
		v LONGBLOB NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (namespace, k)
	)`,
		get: `SELECT v FROM device_storage WHERE namespace = ? AND k = ?`,
		upsert: `
		INSERT INTO device_storage (namespace, k, v, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			v = VALUES(v),
			updated_at = VALUES(updated_at)`,
		del: `DELETE FROM device_storage WHERE namespace = ? AND k = ?`,
	}

	postgresDialect = dialect{
		name:   "postgres",
		driver: "postgres",
		schema: `
	CREATE TABLE IF NOT EXISTS device_storage (
		namespace TEXT NOT NULL,
		k TEXT NOT NULL,
		v BYTEA NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (namespace, k)
	)`,
		get: `SELECT v FROM device_storage WHERE namespace = $1 AND k = $2`,
		upsert: `
		INSERT INTO device_storage (namespace, k, v, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, k) DO UPDATE SET
			v = EXCLUDED.v,
			updated_at = EXCLUDED.updated_at`,
		del: `DELETE FROM device_storage WHERE namespace = $1 AND k = $2`,
	}
)

// SQLStore implements Store on a single key-value table. SQLite is the
// on-device default; MySQL and PostgreSQL serve shared profiles.
type SQLStore struct {
	db        *sql.DB
	dialect   dialect
	namespace string
}

// NewSQLiteStore opens (or creates) a SQLite database file at dbPath.
func NewSQLiteStore(dbPath, namespace string) (*SQLStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return newSQLStore(db, sqliteDialect, namespace)
}

// NewMySQLStore connects to MySQL with the given DSN.
func NewMySQLStore(dsn, namespace string) (*SQLStore, error) {
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newSQLStore(db, mysqlDialect, namespace)
}

// NewPostgresStore connects to PostgreSQL with the given DSN.
func NewPostgresStore(dsn, namespace string) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newSQLStore(db, postgresDialect, namespace)
}

func newSQLStore(db *sql.DB, d dialect, namespace string) (*SQLStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Debug("Storage initialized", "component", "storage", "dialect", d.name, "namespace", namespace)
	return &SQLStore{db: db, dialect: d, namespace: namespace}, nil
}

// Get retrieves a value by key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces a value.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, s.namespace, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.del, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Dialect returns the engine name.
func (s *SQLStore) Dialect() string {
	return s.dialect.name
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
