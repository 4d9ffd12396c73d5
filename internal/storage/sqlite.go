package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is the SQLite Repository.
type Store struct {
	db *sql.DB
}

var _ Repository = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time; the HTTP server shares this handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_active DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC, id);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(username, game_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Login implements Repository.
func (s *Store) Login(ctx context.Context, username string) (User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username) VALUES (?)
		 ON CONFLICT(username) DO UPDATE SET last_active = CURRENT_TIMESTAMP`,
		username,
	)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot upsert user: %w", err)
	}

	var u User
	var createdAt, lastActive any
	err = s.db.QueryRowContext(ctx,
		"SELECT username, created_at, last_active FROM users WHERE username = ?",
		username,
	).Scan(&u.Username, &createdAt, &lastActive)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot load user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	u.LastActive = parseTime(lastActive)
	return u, nil
}

// UserExists implements Repository.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?",
		username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query user: %w", err)
	}
	return n > 0, nil
}

// SaveScore implements Repository.
func (s *Store) SaveScore(ctx context.Context, username, gameID string, score int) (ScoreEntry, error) {
	gameID = gameOrDefault(gameID)
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO scores (username, game_id, score) VALUES (?, ?, ?)",
		username, gameID, score,
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	var createdAt any
	if err := s.db.QueryRowContext(ctx, "SELECT created_at FROM scores WHERE id = ?", id).Scan(&createdAt); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot read saved score: %w", err)
	}

	return ScoreEntry{
		ID:        strconv.FormatInt(id, 10),
		Username:  username,
		GameID:    gameID,
		Score:     score,
		CreatedAt: parseTime(createdAt),
	}, nil
}

// TopScores implements Repository.
func (s *Store) TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	return s.queryScores(ctx,
		`SELECT id, username, game_id, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameOrDefault(gameID), normalizeLimit(limit, 10, 100),
	)
}

// GlobalLeaderboard implements Repository.
func (s *Store) GlobalLeaderboard(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	return s.queryScores(ctx,
		`SELECT s.id, s.username, s.game_id, s.score, s.created_at
		 FROM scores s
		 WHERE s.game_id = ? AND s.id = (
			SELECT b.id FROM scores b
			WHERE b.username = s.username AND b.game_id = s.game_id
			ORDER BY b.score DESC, b.id ASC
			LIMIT 1
		 )
		 ORDER BY s.score DESC, s.id ASC
		 LIMIT ?`,
		gameOrDefault(gameID), normalizeLimit(limit, 10, 100),
	)
}

// UserScores implements Repository.
func (s *Store) UserScores(ctx context.Context, username, gameID string, limit int) ([]ScoreEntry, error) {
	return s.queryScores(ctx,
		`SELECT id, username, game_id, score, created_at
		 FROM scores
		 WHERE username = ? AND game_id = ?
		 ORDER BY score DESC, id DESC
		 LIMIT ?`,
		username, gameOrDefault(gameID), normalizeLimit(limit, 10, 100),
	)
}

// BestScore implements Repository.
func (s *Store) BestScore(ctx context.Context, username, gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM scores WHERE username = ? AND game_id = ?",
		username, gameOrDefault(gameID),
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	if !score.Valid {
		return 0, ErrNotFound
	}
	return int(score.Int64), nil
}

// CountAbove implements Repository.
func (s *Store) CountAbove(ctx context.Context, gameID string, score int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scores WHERE game_id = ? AND score > ?",
		gameOrDefault(gameID), score,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count scores: %w", err)
	}
	return n, nil
}

// Stats implements Repository.
func (s *Store) Stats(ctx context.Context) ([]GameStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, COUNT(*), COUNT(DISTINCT username), MAX(score), AVG(score), MAX(created_at)
		 FROM scores
		 GROUP BY game_id
		 ORDER BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	defer rows.Close()

	var stats []GameStats
	for rows.Next() {
		var g GameStats
		var lastPlayed any
		if err := rows.Scan(&g.GameID, &g.GamesCount, &g.Players, &g.HighScore, &g.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		g.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

func (s *Store) queryScores(ctx context.Context, query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	entries := []ScoreEntry{}
	for rows.Next() {
		var e ScoreEntry
		var id int64
		var createdAt any
		if err := rows.Scan(&id, &e.Username, &e.GameID, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.DateTime, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
