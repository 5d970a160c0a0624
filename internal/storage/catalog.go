package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one cataloged saved frame.
type Snapshot struct {
	ID         int64
	Path       string
	Frame      uint64
	FPS        float64
	Processors []string
	CreatedAt  time.Time
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	frame INTEGER NOT NULL,
	fps REAL NOT NULL,
	processors TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_path ON snapshots(path);`

// Catalog records saved frames in a sqlite database so a run's snapshots can
// be listed later with the conditions they were captured under.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens the catalog at dbPath, creating the schema if needed.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Record inserts one saved frame.
func (c *Catalog) Record(path string, frame uint64, fps float64, processors []string) error {
	_, err := c.db.Exec(
		"INSERT INTO snapshots (path, frame, fps, processors, created_at) VALUES (?, ?, ?, ?, ?)",
		path, int64(frame), fps, strings.Join(processors, ","), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording snapshot %s: %w", path, err)
	}
	return nil
}

// List returns every cataloged snapshot, newest first.
func (c *Catalog) List() ([]Snapshot, error) {
	rows, err := c.db.Query(
		"SELECT id, path, frame, fps, processors, created_at FROM snapshots ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			s          Snapshot
			frame      int64
			processors string
			createdAt  string
		)
		if err := rows.Scan(&s.ID, &s.Path, &frame, &s.FPS, &processors, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		s.Frame = uint64(frame)
		if processors != "" {
			s.Processors = strings.Split(processors, ",")
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			s.CreatedAt = t
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
