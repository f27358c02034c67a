package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	createTable = `
		CREATE TABLE IF NOT EXISTS data (
			digest VARCHAR(128) NOT NULL,
			value INTEGER NOT NULL
		);
	`

	createIndex = `CREATE INDEX IF NOT EXISTS digest_idx ON data (digest)`
	dropIndex   = `DROP INDEX IF EXISTS digest_idx`

	insertRecord = `INSERT INTO data (digest, value) VALUES (?, ?)`

	// SQLite caps the number of bound parameters per statement; stay well below it.
	maxLookupChunk = 500
)

// Record is a stored (digest, value) pair.
type Record struct {
	Digest string
	Value  int64
}

// Options controls how the SQLite file is opened and how the connection pool is bounded.
type Options struct {
	ReadOnly        bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	BusyTimeout     time.Duration
}

// DefaultOptions returns the options used by InitDB.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    8,
		MaxIdleConns:    8,
		ConnMaxIdleTime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

// InitDB opens a read-write SQLite database with default options
func InitDB(dbPath string) (*sql.DB, error) {
	return Open(dbPath, DefaultOptions())
}

// Open opens the SQLite database at dbPath, bounds its connection pool and checks that it is
// reachable.
func Open(dbPath string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func dsn(dbPath string, opts Options) string {
	params := []string{fmt.Sprintf("_busy_timeout=%d", opts.BusyTimeout.Milliseconds())}
	if opts.ReadOnly {
		params = append(params, "mode=ro")
	}
	return "file:" + uriPathEscaper.Replace(dbPath) + "?" + strings.Join(params, "&")
}

// SQLite decodes %HH in URI paths and ends the path at ? or #.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// EnsureSchema creates the data table if it does not exist yet. Safe to call on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// DropLookupIndex removes the digest index if present.
func DropLookupIndex(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropIndex); err != nil {
		return fmt.Errorf("failed to drop digest index: %w", err)
	}
	return nil
}

// BuildLookupIndex creates the digest index if absent.
func BuildLookupIndex(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create digest index: %w", err)
	}
	return nil
}

// HasLookupIndex reports whether the digest index currently exists.
func HasLookupIndex(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'digest_idx'`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect indexes: %w", err)
	}
	return n > 0, nil
}

// WriteRange inserts every record of one range inside a single transaction. Either all of
// them are committed or, on any error, none are. It returns the number of rows written.
func WriteRange(ctx context.Context, db *sql.DB, records iter.Seq[Record]) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Digest, rec.Value); err != nil {
			return 0, fmt.Errorf("failed to insert value %d: %w", rec.Value, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return written, nil
}

// Lookup fetches the value stored for digest. A missing digest is not an error.
func Lookup(ctx context.Context, db *sql.DB, digest string) (int64, bool, error) {
	var value int64
	err := db.QueryRowContext(ctx, `SELECT value FROM data WHERE digest = ? LIMIT 1`, digest).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query digest: %w", err)
	}
	return value, true, nil
}

// LookupMany resolves a set of digests with one IN-list query per chunk. Digests that are not
// stored are absent from the returned map. When a digest was stored more than once the first
// row returned wins.
func LookupMany(ctx context.Context, db *sql.DB, digests []string) (map[string]int64, error) {
	found := make(map[string]int64, len(digests))

	for start := 0; start < len(digests); start += maxLookupChunk {
		end := min(start+maxLookupChunk, len(digests))
		if err := lookupChunk(ctx, db, digests[start:end], found); err != nil {
			return nil, err
		}
	}

	return found, nil
}

func lookupChunk(ctx context.Context, db *sql.DB, digests []string, found map[string]int64) error {
	// Build query with placeholders
	query := `SELECT digest, value FROM data WHERE digest IN (`
	args := make([]interface{}, len(digests))
	for i, d := range digests {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = d
	}
	query += ")"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query digests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var digest string
		var value int64
		if err := rows.Scan(&digest, &value); err != nil {
			return fmt.Errorf("failed to scan record: %w", err)
		}
		if _, ok := found[digest]; !ok {
			found[digest] = value
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating records: %w", err)
	}

	return nil
}

// Count returns the number of stored records.
func Count(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}
