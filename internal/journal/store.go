package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	defaultMaxRows int64   = 1_000_000
	evictPct       float64 = 0.10 // evict oldest 10% of rows
	vacuumInterval         = 10   // incremental vacuum every N evictions
)

func round5(v float64) float64 {
	return math.Round(v*100000) / 100000
}

// Entry is one journaled sheet as read back from the store.
type Entry struct {
	ID         string
	Ts         time.Time
	FixtureID  string
	League     string
	HomeTeam   string
	AwayTeam   string
	HomeRating float64
	AwayRating float64
	HomePct    float64
	DrawPct    float64
	AwayPct    float64
	Lambda     float64
	XGHome     float64
	XGAway     float64
	Sheet      quoting.Sheet
}

// Store journals priced sheets in a FIFO SQLite database capped at
// maxRows. Oldest 10% of rows are evicted when the cap is exceeded.
type Store struct {
	db           *sql.DB
	mu           sync.Mutex
	rowCount     int64
	maxRows      int64
	evictCounter int
}

// Open opens (or creates) the journal at path. maxRows <= 0 uses the default cap.
func Open(path string, maxRows int64) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA auto_vacuum = INCREMENTAL`,
		`CREATE TABLE IF NOT EXISTS priced_sheets (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT    NOT NULL UNIQUE,
			ts           TEXT    NOT NULL,
			fixture_id   TEXT,
			league       TEXT,
			home_team    TEXT,
			away_team    TEXT,
			home_rating  REAL,
			away_rating  REAL,
			margin_pct   REAL,

			home_pct     REAL,
			draw_pct     REAL,
			away_pct     REAL,

			lambda_total REAL,
			xg_home      REAL,
			xg_away      REAL,

			sheet_json   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ps_fixture ON priced_sheets(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ps_ts ON priced_sheets(ts)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	var size int64
	row := db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`)
	if err := row.Scan(&size); err != nil {
		db.Close()
		return nil, fmt.Errorf("read db size: %w", err)
	}

	var count int64
	row = db.QueryRow(`SELECT COUNT(*) FROM priced_sheets`)
	if err := row.Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}

	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}

	telemetry.Infof("Started pricing journal  path=%s  size=%s  rows=%s  max_rows=%s",
		path, humanize.Bytes(uint64(size)), humanize.Comma(count), humanize.Comma(maxRows))

	return &Store{db: db, rowCount: count, maxRows: maxRows}, nil
}

// Record implements quoting.Recorder.
func (s *Store) Record(ctx context.Context, sheet quoting.Sheet) error {
	blob, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("journal encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := sheet.Fixture
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO priced_sheets (
			id, ts, fixture_id, league, home_team, away_team,
			home_rating, away_rating, margin_pct,
			home_pct, draw_pct, away_pct,
			lambda_total, xg_home, xg_away, sheet_json
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(),
		sheet.PricedAt.UTC().Format(time.RFC3339Nano),
		f.ID,
		f.League,
		f.HomeTeam,
		f.AwayTeam,
		f.HomeRating,
		f.AwayRating,
		sheet.MarginPercent,
		round5(sheet.Outcome.Home),
		round5(sheet.Outcome.Draw),
		round5(sheet.Outcome.Away),
		round5(sheet.Grid.LambdaTotal),
		round5(sheet.Grid.XGHome),
		round5(sheet.Grid.XGAway),
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	telemetry.Metrics.JournalWrites.Inc()

	s.rowCount++
	if s.rowCount > s.maxRows {
		s.evict()
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, fixture_id, league, home_team, away_team,
			home_rating, away_rating, home_pct, draw_pct, away_pct,
			lambda_total, xg_home, xg_away, sheet_json
		FROM priced_sheets ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			ts   string
			blob string
		)
		if err := rows.Scan(&e.ID, &ts, &e.FixtureID, &e.League, &e.HomeTeam, &e.AwayTeam,
			&e.HomeRating, &e.AwayRating, &e.HomePct, &e.DrawPct, &e.AwayPct,
			&e.Lambda, &e.XGHome, &e.XGAway, &blob); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		if e.Ts, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("journal ts %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(blob), &e.Sheet); err != nil {
			return nil, fmt.Errorf("journal decode %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of journaled sheets.
func (s *Store) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowCount
}

// evict deletes the oldest 10% of rows by count.
// Must be called with s.mu held.
func (s *Store) evict() {
	toDelete := int64(float64(s.rowCount) * evictPct)
	if toDelete < 1 {
		toDelete = 1
	}

	res, err := s.db.Exec(
		`DELETE FROM priced_sheets WHERE seq IN (
			SELECT seq FROM priced_sheets ORDER BY seq ASC LIMIT ?
		)`, toDelete,
	)
	if err != nil {
		telemetry.Warnf("journal evict: %v", err)
		return
	}

	deleted, _ := res.RowsAffected()
	s.rowCount -= deleted
	s.evictCounter++

	telemetry.Debugf("journal: evicted %d rows (target %d)", deleted, toDelete)

	if s.evictCounter%vacuumInterval == 0 {
		s.db.Exec(`PRAGMA incremental_vacuum`)
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
