// Package store keeps the catalog of finished recordings in a local
// SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Recording is one catalog row, created when a capture session stops.
type Recording struct {
	ID            int       `json:"id"`
	SessionID     string    `json:"session_id"`
	Filename      string    `json:"filename"`
	FilePath      string    `json:"file_path"`
	FileSize      int64     `json:"file_size"`
	SampleRate    int       `json:"sample_rate"`
	Channels      int       `json:"channels"`
	BitsPerSample int       `json:"bits_per_sample"`
	AudioFormat   string    `json:"audio_format"`
	Mode          string    `json:"mode"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// DB wraps the catalog connection.
type DB struct {
	*sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS recordings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		sample_rate INTEGER NOT NULL,
		channels INTEGER NOT NULL,
		bits_per_sample INTEGER NOT NULL,
		audio_format TEXT NOT NULL DEFAULT 'wav',
		mode TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_recordings_created_at
		ON recordings(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_recordings_mode
		ON recordings(mode);`

// NewDB opens (creating if needed) the catalog at dbPath.
func NewDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// WAL mode for better concurrency between the recorder and the UI.
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// CreateRecording inserts a recording and fills in its assigned ID.
func (db *DB) CreateRecording(r *Recording) error {
	query := `
		INSERT INTO recordings (
			session_id, filename, file_path, file_size,
			sample_rate, channels, bits_per_sample,
			audio_format, mode, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := db.Exec(query,
		r.SessionID,
		r.Filename,
		r.FilePath,
		r.FileSize,
		r.SampleRate,
		r.Channels,
		r.BitsPerSample,
		r.AudioFormat,
		r.Mode,
		r.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get recording ID: %w", err)
	}
	r.ID = int(id)
	r.CreatedAt = time.Now()
	return nil
}

const recordingColumns = `
	id, session_id, filename, file_path, file_size,
	sample_rate, channels, bits_per_sample,
	audio_format, mode, duration_ms, created_at`

func scanRecording(row interface{ Scan(...any) error }) (*Recording, error) {
	var r Recording
	err := row.Scan(
		&r.ID,
		&r.SessionID,
		&r.Filename,
		&r.FilePath,
		&r.FileSize,
		&r.SampleRate,
		&r.Channels,
		&r.BitsPerSample,
		&r.AudioFormat,
		&r.Mode,
		&r.DurationMs,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecording retrieves a recording by ID.
func (db *DB) GetRecording(id int) (*Recording, error) {
	r, err := scanRecording(db.QueryRow(
		"SELECT"+recordingColumns+" FROM recordings WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recording not found")
		}
		return nil, fmt.Errorf("get recording: %w", err)
	}
	return r, nil
}

// ListRecordings retrieves recordings newest first, optionally
// filtered by mode and paginated.
func (db *DB) ListRecordings(limit, offset int, mode string) ([]*Recording, error) {
	query := "SELECT" + recordingColumns + " FROM recordings WHERE 1=1"
	args := []any{}
	if mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var recordings []*Recording
	for rows.Next() {
		r, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, r)
	}
	return recordings, rows.Err()
}

// UpdateRecordingFile updates the file fields after a post-capture
// transcode replaces the capture file.
func (db *DB) UpdateRecordingFile(id int, filename, filePath, format string, fileSize int64) error {
	result, err := db.Exec(`
		UPDATE recordings
		SET filename = ?, file_path = ?, audio_format = ?, file_size = ?
		WHERE id = ?`,
		filename, filePath, format, fileSize, id)
	if err != nil {
		return fmt.Errorf("update recording file: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recording file: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recording not found")
	}
	return nil
}

// DeleteRecording removes a catalog row. The audio file is not touched.
func (db *DB) DeleteRecording(id int) error {
	result, err := db.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recording not found")
	}
	return nil
}
