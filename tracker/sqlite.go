package tracker

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists metric rows to a SQLite database file so that
// runs can be inspected after the fact with ordinary SQL tooling.
// Rows are keyed by (row, name).
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path
// and prepares the metrics table
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("newsqlitestore: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "newsqlitestore: could not open "+
			"database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "newsqlitestore: could not reach "+
			"database")
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS metrics (
			row   INTEGER NOT NULL,
			name  TEXT    NOT NULL,
			value REAL    NOT NULL,
			PRIMARY KEY (row, name)
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "newsqlitestore: could not create "+
			"metrics table")
	}

	return &SQLiteStore{path: path, db: db}, nil
}

// StoreRow implements Store. All scalars of one row are written in a
// single transaction.
func (s *SQLiteStore) StoreRow(row int, scalars map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "storerow: could not begin transaction")
	}

	for name, value := range scalars {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO metrics (row, name, value)
			 VALUES (?, ?, ?)`, row, name, value); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "storerow: could not insert %v", name)
		}
	}
	return errors.Wrap(tx.Commit(), "storerow")
}

// History returns the stored values of the named metric in row order
func (s *SQLiteStore) History(name string) ([]float64, error) {
	rows, err := s.db.Query(
		`SELECT value FROM metrics WHERE name = ? ORDER BY row`, name)
	if err != nil {
		return nil, errors.Wrap(err, "history: could not query metrics")
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "history: could not scan value")
		}
		values = append(values, v)
	}
	return values, errors.Wrap(rows.Err(), "history")
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
