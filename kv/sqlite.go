package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite persists values in a SQLite database file.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path. The special path
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer, and an in-memory database lives on a single connection.
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS item_transforms (
			container_id TEXT NOT NULL,
			slot INTEGER NOT NULL,
			field TEXT NOT NULL,
			value REAL NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (container_id, slot, field)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_item_transforms_container ON item_transforms(container_id)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}

// Get returns the stored value and whether it exists.
func (db *SQLite) Get(containerID string, slot int, field string) (float64, bool, error) {
	var v float64
	err := db.conn.QueryRow(
		`SELECT value FROM item_transforms WHERE container_id = ? AND slot = ? AND field = ?`,
		containerID, slot, field,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", Key{containerID, slot, field}, err)
	}
	return v, true, nil
}

// Set stores a value, replacing any previous one.
func (db *SQLite) Set(containerID string, slot int, field string, value float64) error {
	_, err := db.conn.Exec(
		`INSERT INTO item_transforms (container_id, slot, field, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(container_id, slot, field) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		containerID, slot, field, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", Key{containerID, slot, field}, err)
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (db *SQLite) Delete(containerID string, slot int, field string) error {
	_, err := db.conn.Exec(
		`DELETE FROM item_transforms WHERE container_id = ? AND slot = ? AND field = ?`,
		containerID, slot, field,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", Key{containerID, slot, field}, err)
	}
	return nil
}

// Fields returns every stored field of one slot.
func (db *SQLite) Fields(containerID string, slot int) (map[string]float64, error) {
	rows, err := db.conn.Query(
		`SELECT field, value FROM item_transforms WHERE container_id = ? AND slot = ? ORDER BY field`,
		containerID, slot,
	)
	if err != nil {
		return nil, fmt.Errorf("list fields %s/%d: %w", containerID, slot, err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var f string
		var v float64
		if err := rows.Scan(&f, &v); err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, rows.Err()
}
