package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS player_stats (
	player_key   TEXT PRIMARY KEY,
	games_played INTEGER NOT NULL DEFAULT 0,
	wins         INTEGER NOT NULL DEFAULT 0,
	losses       INTEGER NOT NULL DEFAULT 0,
	win_streak   INTEGER NOT NULL DEFAULT 0,
	updated_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore keeps stats in a local file, one row per key.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create stats dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	// Single writer connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init stats db: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}
	return s.get(ctx, s.db, key)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q queryer, key string) (Stats, error) {
	var st Stats
	err := q.QueryRowContext(ctx,
		`SELECT games_played, wins, losses, win_streak FROM player_stats WHERE player_key = ?`, key,
	).Scan(&st.GamesPlayed, &st.Wins, &st.Losses, &st.WinStreak)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) RecordResult(ctx context.Context, key string, r Result) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, err
	}
	defer tx.Rollback()

	cur, err := s.get(ctx, tx, key)
	if err != nil {
		return Stats{}, err
	}
	next := Apply(cur, r)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_stats (player_key, games_played, wins, losses, win_streak, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player_key) DO UPDATE SET
			games_played = excluded.games_played,
			wins         = excluded.wins,
			losses       = excluded.losses,
			win_streak   = excluded.win_streak,
			updated_at   = excluded.updated_at`,
		key, next.GamesPlayed, next.Wins, next.Losses, next.WinStreak)
	if err != nil {
		return Stats{}, fmt.Errorf("save stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Stats{}, err
	}
	return next, nil
}
