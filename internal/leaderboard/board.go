// Package leaderboard is the account and score service of HyperStack.
//
// Server exposes a storage.Repository over a small JSON API. Client talks to
// that API, Local talks to a repository in-process; both satisfy Board, which
// is all the terminal frontend needs. Notifier submits a finished run's
// score in the background.
package leaderboard

import (
	"context"
	"errors"
	"time"
)

// ErrInvalid is wrapped by errors caused by rejected input.
var ErrInvalid = errors.New("leaderboard: invalid input")

// Player is a registered account.
type Player struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry is one leaderboard row.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Board is the leaderboard surface used by game frontends.
type Board interface {
	// Login finds or creates the player.
	Login(ctx context.Context, username string) (Player, error)
	// SaveScore records a finished run.
	SaveScore(ctx context.Context, username, gameID string, score int) (Entry, error)
	// Global returns each player's best score, best first.
	Global(ctx context.Context, gameID string, limit int) ([]Entry, error)
}
