package storage

import (
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const indexFile = "index.sqlite3"

// Index is a queryable summary of the saved runs kept next to the run
// directories.
type Index struct {
	db *sql.DB
}

// IndexEntry is one row of the index.
type IndexEntry struct {
	ID           string
	Model        string
	Integrator   string
	Timestamp    time.Time
	Duration     float64
	OutputSpikes int
}

// Query filters index lookups. Zero fields match everything.
type Query struct {
	Model      string
	Integrator string
	MinSpikes  int
	Limit      int
}

// OpenIndex opens or creates the index of the store.
func (s *Store) OpenIndex() (*Index, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs(
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			integrator TEXT NOT NULL,
			ts INTEGER NOT NULL,
			duration REAL NOT NULL,
			output_spikes INTEGER NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add inserts or replaces the entry for meta.
func (ix *Index) Add(meta RunMetadata) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO runs(id, model, integrator, ts, duration, output_spikes) VALUES(?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Integrator, meta.Timestamp.UnixNano(), meta.Duration, len(meta.OutputSpikes),
	)
	return err
}

// Sync adds every run of the store missing from the index and drops entries
// whose run directory is gone. It returns the number of entries added.
func (ix *Index) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS present(id TEXT PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM present`); err != nil {
		return 0, err
	}

	added := 0
	for _, meta := range runs {
		if _, err := tx.Exec(`INSERT INTO present(id) VALUES(?)`, meta.ID); err != nil {
			return 0, err
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO runs(id, model, integrator, ts, duration, output_spikes) VALUES(?, ?, ?, ?, ?, ?)`,
			meta.ID, meta.Model, meta.Integrator, meta.Timestamp.UnixNano(), meta.Duration, len(meta.OutputSpikes),
		)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id NOT IN (SELECT id FROM present)`); err != nil {
		return 0, err
	}
	return added, tx.Commit()
}

// Find returns the matching entries, newest first.
func (ix *Index) Find(q Query) ([]IndexEntry, error) {
	var where []string
	var args []any
	if q.Model != "" {
		where = append(where, "model = ?")
		args = append(args, q.Model)
	}
	if q.Integrator != "" {
		where = append(where, "integrator = ?")
		args = append(args, q.Integrator)
	}
	if q.MinSpikes > 0 {
		where = append(where, "output_spikes >= ?")
		args = append(args, q.MinSpikes)
	}

	query := `SELECT id, model, integrator, ts, duration, output_spikes FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := ix.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Model, &e.Integrator, &ts, &e.Duration, &e.OutputSpikes); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
