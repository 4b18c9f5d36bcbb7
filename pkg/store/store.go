package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tielmuzi/snake-game-mz92/pkg/game"

	_ "modernc.org/sqlite"
)

// Keys of the two flat records
const (
	SettingsKey   = "snakeGameSettings"
	StatisticsKey = "snakeGameStats"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("store: key not found")

// Store persists settings, statistics and the run log in SQLite
type Store struct {
	db *sql.DB
}

// Open opens (and creates if missing) the database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps read-modify-write transactions serialized
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			score INTEGER NOT NULL,
			level INTEGER NOT NULL,
			food_eaten INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			difficulty TEXT,
			won INTEGER NOT NULL DEFAULT 0,
			ended_at DATETIME
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Get returns the raw text stored under key
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return get(ctx, s.db, key)
}

// Put stores value under key, replacing any previous value
func (s *Store) Put(ctx context.Context, key, value string) error {
	return put(ctx, s.db, key, value)
}

func get(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func put(ctx context.Context, q queryer, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// loadJSON decodes the record under key over dst; a missing key leaves dst untouched
func loadJSON(ctx context.Context, q queryer, key string, dst any) error {
	raw, err := get(ctx, q, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func saveJSON(ctx context.Context, q queryer, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return put(ctx, q, key, string(data))
}

// LoadSettings returns the stored settings merged over the defaults
func (s *Store) LoadSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	if err := loadJSON(ctx, s.db, SettingsKey, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings.Normalized(), nil
}

// SaveSettings stores settings
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	return saveJSON(ctx, s.db, SettingsKey, settings.Normalized())
}

// LoadStatistics returns the stored statistics (zero if none)
func (s *Store) LoadStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	if err := loadJSON(ctx, s.db, StatisticsKey, &stats); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

// SaveStatistics replaces the stored statistics
func (s *Store) SaveStatistics(ctx context.Context, stats Statistics) error {
	return saveJSON(ctx, s.db, StatisticsKey, stats)
}

// RecordRun folds a finished run into the statistics and appends it to the
// run log in one transaction. It returns the updated statistics.
func (s *Store) RecordRun(ctx context.Context, run game.RunSummary) (Statistics, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Statistics{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var stats Statistics
	if err := loadJSON(ctx, tx, StatisticsKey, &stats); err != nil {
		return Statistics{}, err
	}
	stats = stats.Fold(run)
	if err := saveJSON(ctx, tx, StatisticsKey, stats); err != nil {
		return Statistics{}, err
	}

	endedAt := run.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (score, level, food_eaten, duration_seconds, difficulty, won, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Score, run.Level, run.FoodEaten, run.DurationSeconds, run.Difficulty, boolToInt(run.Won), endedAt.UTC(),
	)
	if err != nil {
		return Statistics{}, fmt.Errorf("insert run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Statistics{}, fmt.Errorf("commit: %w", err)
	}
	return stats, nil
}

// RecentRuns returns up to limit runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]game.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT score, level, food_eaten, duration_seconds, difficulty, won, ended_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []game.RunSummary
	for rows.Next() {
		var (
			r          game.RunSummary
			difficulty sql.NullString
			endedAt    sql.NullTime
		)
		if err := rows.Scan(&r.Score, &r.Level, &r.FoodEaten, &r.DurationSeconds, &difficulty, &r.Won, &endedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Difficulty = difficulty.String
		r.EndedAt = endedAt.Time
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
