// Package storage persists players and their stacking scores.
//
// Two backends implement Repository: SQLite through the pure-Go
// modernc.org/sqlite driver (the default, no CGO) and MongoDB.
package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultGameID is used when a score does not name its game.
const DefaultGameID = "stack"

// ErrNotFound is returned when a user or score does not exist.
var ErrNotFound = errors.New("storage: not found")

// User is a registered player.
type User struct {
	Username   string
	CreatedAt  time.Time
	LastActive time.Time
}

// ScoreEntry represents a single score record.
type ScoreEntry struct {
	ID        string
	Username  string
	GameID    string
	Score     int
	CreatedAt time.Time
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	Players    int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Repository is the persistence surface of the leaderboard.
// Score listings are ordered by score descending, then oldest first.
type Repository interface {
	// Login returns the user, creating it on first sight, and marks it active.
	Login(ctx context.Context, username string) (User, error)
	// UserExists reports whether the username is registered.
	UserExists(ctx context.Context, username string) (bool, error)
	// SaveScore records a score and returns the stored entry.
	SaveScore(ctx context.Context, username, gameID string, score int) (ScoreEntry, error)
	// TopScores returns the best individual scores.
	TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error)
	// GlobalLeaderboard returns each user's best score.
	GlobalLeaderboard(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error)
	// UserScores returns one user's scores.
	UserScores(ctx context.Context, username, gameID string, limit int) ([]ScoreEntry, error)
	// BestScore returns the user's best score or ErrNotFound.
	BestScore(ctx context.Context, username, gameID string) (int, error)
	// CountAbove counts scores strictly greater than score.
	CountAbove(ctx context.Context, gameID string, score int) (int, error)
	// Stats aggregates every game that has scores.
	Stats(ctx context.Context) ([]GameStats, error)
	Close() error
}

// Rank returns the 1-based rank of the user's best score: one more than the
// number of scores strictly above it. It returns ErrNotFound when the user
// has no scores.
func Rank(ctx context.Context, repo Repository, username, gameID string) (rank, best int, err error) {
	best, err = repo.BestScore(ctx, username, gameID)
	if err != nil {
		return 0, 0, err
	}
	above, err := repo.CountAbove(ctx, gameID, best)
	if err != nil {
		return 0, 0, err
	}
	return above + 1, best, nil
}

func normalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func gameOrDefault(gameID string) string {
	if gameID == "" {
		return DefaultGameID
	}
	return gameID
}
