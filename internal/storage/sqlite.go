package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"timekeeper/internal/core/model"
)

const sqliteFileName = "timekeeper.db"

const createRecordsTable = `CREATE TABLE IF NOT EXISTS records (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLiteGateway keeps the record as JSON in a SQLite key/value table.
type SQLiteGateway struct {
	db *sql.DB
}

// NewSQLite opens the database at path and prepares the records table.
func NewSQLite(path string) (*SQLiteGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createRecordsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &SQLiteGateway{db: db}, nil
}

// Load reads the stored record. It returns the defaults and ErrNotFound when none was saved.
func (gateway *SQLiteGateway) Load(ctx context.Context) (model.Record, error) {
	var payload string
	err := gateway.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE name = ?`, RecordName,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultRecord(), ErrNotFound
		}
		return model.DefaultRecord(), fmt.Errorf("select record: %w", err)
	}

	record := model.DefaultRecord()
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return model.DefaultRecord(), fmt.Errorf("decode record: %w", err)
	}
	sanitizeRecord(&record)
	return record, nil
}

// Save upserts the record.
func (gateway *SQLiteGateway) Save(ctx context.Context, record model.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = gateway.db.ExecContext(ctx,
		`INSERT INTO records (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		RecordName, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// Close closes the database.
func (gateway *SQLiteGateway) Close() error {
	return gateway.db.Close()
}
