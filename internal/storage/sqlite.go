package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/estrelalabs/telereport/internal/types"
)

// ErrMonthNotFound is returned when a month has no consolidated data.
var ErrMonthNotFound = errors.New("month not found")

const schema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS months (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ym TEXT UNIQUE NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS uploads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  month_id INTEGER,
  filename TEXT NOT NULL,
  uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY (month_id) REFERENCES months(id)
);

CREATE TABLE IF NOT EXISTS metrics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  month_id INTEGER NOT NULL,
  store TEXT NOT NULL,
  received INTEGER NOT NULL DEFAULT 0,
  lost INTEGER NOT NULL DEFAULT 0,
  total_volume INTEGER NOT NULL DEFAULT 0,
  pct_lost REAL NOT NULL DEFAULT 0.0,
  FOREIGN KEY (month_id) REFERENCES months(id),
  UNIQUE(month_id, store)
);
`

// SQLiteStore implements Store using a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and ensures the schema
func NewSQLiteStore(cfg StoreConfig, logger zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("sqlite store ready")
	return &SQLiteStore{db: db, logger: logger}, nil
}

// ListMonths returns all consolidated months, newest first, with upload and
// store counts.
func (s *SQLiteStore) ListMonths() ([]types.MonthSummary, error) {
	rows, err := s.db.Query(`
		SELECT m.ym,
		  (SELECT COUNT(*) FROM uploads u WHERE u.month_id=m.id) AS uploads,
		  (SELECT COUNT(*) FROM metrics t WHERE t.month_id=m.id) AS stores
		FROM months m
		ORDER BY m.ym DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list months: %w", err)
	}
	defer rows.Close()

	var out []types.MonthSummary
	for rows.Next() {
		var m types.MonthSummary
		if err := rows.Scan(&m.YM, &m.Uploads, &m.Stores); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MonthExists(ym string) (bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM months WHERE ym=?", ym).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceMonthMetrics swaps out a month's metrics and upload record in a
// single transaction. Volumes reset to zero; the admin supplies them after
// each upload. On any failure the month keeps its previous data.
func (s *SQLiteStore) ReplaceMonthMetrics(ym, filename string, aggs []types.StoreAggregate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	mid, err := monthIDFor(tx, ym)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM metrics WHERE month_id=?", mid); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM uploads WHERE month_id=?", mid); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO uploads (month_id, filename) VALUES (?, ?)", mid, filename); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO metrics (month_id, store, received, lost, total_volume, pct_lost)
		VALUES (?, ?, ?, ?, 0, 0.0)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, agg := range aggs {
		if _, err := stmt.Exec(mid, agg.Store, agg.Received, agg.Lost); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info().Str("ym", ym).Str("filename", filename).Int("stores", len(aggs)).Msg("month metrics replaced")
	return nil
}

func (s *SQLiteStore) GetMonthMetrics(ym string) ([]types.StoreAggregate, error) {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMonthNotFound
	}

	rows, err := s.db.Query(`
		SELECT store, received, lost, total_volume, pct_lost
		  FROM metrics WHERE month_id=? ORDER BY store`, mid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.StoreAggregate
	for rows.Next() {
		var a types.StoreAggregate
		if err := rows.Scan(&a.Store, &a.Received, &a.Lost, &a.TotalVolume, &a.PctLost); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetStoreMetric(ym, store string) (*types.StoreAggregate, error) {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMonthNotFound
	}

	var a types.StoreAggregate
	err = s.db.QueryRow(`
		SELECT store, received, lost, total_volume, pct_lost
		  FROM metrics WHERE month_id=? AND store=?`, mid, store).
		Scan(&a.Store, &a.Received, &a.Lost, &a.TotalVolume, &a.PctLost)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateVolumes sets the monthly call volume per store and recomputes the
// loss percentage against it. Non-positive volumes are skipped.
func (s *SQLiteStore) UpdateVolumes(ym string, volumes map[string]int) error {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMonthNotFound
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for store, vol := range volumes {
		if vol <= 0 {
			continue
		}
		_, err := tx.Exec(`
			UPDATE metrics
			   SET total_volume = ?,
			       pct_lost = (CAST(lost AS REAL) / ?) * 100.0
			 WHERE month_id=? AND store=?`, vol, vol, mid, store)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info().Str("ym", ym).Int("stores", len(volumes)).Msg("volumes updated")
	return nil
}

// PendingVolumes counts stores still waiting for an admin-entered volume.
func (s *SQLiteStore) PendingVolumes(ym string) (int, error) {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrMonthNotFound
	}

	var c int
	err = s.db.QueryRow("SELECT COUNT(*) FROM metrics WHERE month_id=? AND total_volume=0", mid).Scan(&c)
	return c, err
}

// LatestUpload returns the filename of the most recent upload for a month.
func (s *SQLiteStore) LatestUpload(ym string) (string, error) {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrMonthNotFound
	}

	var filename string
	err = s.db.QueryRow(`
		SELECT filename FROM uploads
		 WHERE month_id=? ORDER BY uploaded_at DESC, id DESC LIMIT 1`, mid).Scan(&filename)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return filename, err
}

func (s *SQLiteStore) DeleteMonth(ym string) error {
	mid, ok, err := s.monthID(ym)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM metrics WHERE month_id=?",
		"DELETE FROM uploads WHERE month_id=?",
		"DELETE FROM months WHERE id=?",
	} {
		if _, err := tx.Exec(q, mid); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info().Str("ym", ym).Msg("month deleted")
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) monthID(ym string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM months WHERE ym=?", ym).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// monthIDFor finds or creates the month row inside the given transaction.
func monthIDFor(tx *sql.Tx, ym string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM months WHERE ym=?", ym).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := tx.Exec("INSERT INTO months (ym) VALUES (?)", ym)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
