package sessions

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a SQLite cache of session metadata, refreshed as searches run so
// `sessions list` can show recent transcripts without rescanning every file.
type Index struct {
	db *sql.DB
}

// IndexedSession is one cached row.
type IndexedSession struct {
	ID          string
	Path        string
	ProjectName string
	ProjectPath string
	ModTime     time.Time
	Lines       int
	Preview     string
}

// OpenIndex opens or creates the index at the given path.
func OpenIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrateIndex(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating index: %w", err)
	}

	return &Index{db: db}, nil
}

func migrateIndex(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		project_name TEXT NOT NULL,
		project_path TEXT NOT NULL,
		mod_time DATETIME NOT NULL,
		lines INTEGER NOT NULL,
		preview TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_mod_time ON sessions(mod_time);
	`
	_, err := db.Exec(schema)
	return err
}

// Record upserts session metadata.
func (ix *Index) Record(s Session) error {
	_, err := ix.db.Exec(
		`INSERT INTO sessions (id, path, project_name, project_path, mod_time, lines, preview)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   path = excluded.path,
		   project_name = excluded.project_name,
		   project_path = excluded.project_path,
		   mod_time = excluded.mod_time,
		   lines = excluded.lines,
		   preview = excluded.preview`,
		s.ID, s.Path, s.ProjectName, s.ProjectPath, s.ModTime, s.Lines, s.Preview,
	)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", s.ID, err)
	}
	return nil
}

// RecordAll upserts a batch of sessions in one transaction.
func (ix *Index) RecordAll(sessions []Session) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	for _, s := range sessions {
		_, err := tx.Exec(
			`INSERT INTO sessions (id, path, project_name, project_path, mod_time, lines, preview)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   path = excluded.path,
			   project_name = excluded.project_name,
			   project_path = excluded.project_path,
			   mod_time = excluded.mod_time,
			   lines = excluded.lines,
			   preview = excluded.preview`,
			s.ID, s.Path, s.ProjectName, s.ProjectPath, s.ModTime, s.Lines, s.Preview,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("recording session %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit sessions, newest first.
func (ix *Index) Recent(limit int) ([]IndexedSession, error) {
	rows, err := ix.db.Query(
		`SELECT id, path, project_name, project_path, mod_time, lines, preview
		 FROM sessions ORDER BY mod_time DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []IndexedSession
	for rows.Next() {
		var s IndexedSession
		var preview sql.NullString
		if err := rows.Scan(&s.ID, &s.Path, &s.ProjectName, &s.ProjectPath, &s.ModTime, &s.Lines, &preview); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.Preview = preview.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the index.
func (ix *Index) Close() error {
	return ix.db.Close()
}
