package params

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Table is the parameter table name.
const Table = "gui_para"

const schema = `CREATE TABLE IF NOT EXISTS gui_para (
    name        TEXT,
    param_order INTEGER,
    param_value TEXT
)`

// normalizedName strips the separators Normalize removes so stored names
// compare against normalized keys.
const normalizedName = `REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(name, ' ', ''), '　', ''), char(9), ''), '；', ';'), '，', ','), '：', ':')`

// ErrStoreMissing reports that the database file does not exist.
var ErrStoreMissing = errors.New("parameter store not found")

// Store wraps the SQLite parameter database.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path. Read-only stores must already
// exist; writable ones are created with the gui_para schema.
func Open(path string, readOnly bool) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("parameter store path is empty")
	}
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrStoreMissing, path)
			}
			return nil, fmt.Errorf("stat parameter store: %w", err)
		}
	}

	dsn, err := storeDSN(path, readOnly)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path}
	if !readOnly {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create %s: %w", Table, err)
		}
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// HasTable reports whether the gui_para table exists.
func (s *Store) HasTable(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, Table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return n == 1, nil
}

// Count returns the number of rows in gui_para.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gui_para`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", Table, err)
	}
	return n, nil
}

// Lookup returns the values stored under key, ordered by param_order. NULL
// values come back as empty strings so positions are preserved.
func (s *Store) Lookup(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT param_value FROM gui_para WHERE `+normalizedName+` = ? ORDER BY param_order ASC`,
		Normalize(key))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", Table, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", Table, err)
		}
		values = append(values, strings.TrimSpace(value.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", Table, err)
	}
	return values, nil
}

// storeDSN builds a file: URI for path so characters such as ? and # in
// directory names are escaped rather than read as query or fragment.
func storeDSN(path string, readOnly bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve parameter store path: %w", err)
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	query := "_pragma=busy_timeout(2000)"
	if readOnly {
		query = "mode=ro&" + query
	}
	return (&url.URL{Scheme: "file", Path: abs, RawQuery: query}).String(), nil
}
