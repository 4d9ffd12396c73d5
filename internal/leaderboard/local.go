package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/vovakirdan/hyperstack/internal/storage"
)

// Local is a Board backed directly by a repository, used for offline play.
// It applies the same validation rules as the HTTP API.
type Local struct {
	repo storage.Repository
}

var _ Board = (*Local)(nil)

// NewLocal wraps repo.
func NewLocal(repo storage.Repository) *Local {
	return &Local{repo: repo}
}

// Login finds or creates the player.
func (l *Local) Login(ctx context.Context, username string) (Player, error) {
	name, errs := ValidateUsername(username)
	if len(errs) > 0 {
		return Player{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	user, err := l.repo.Login(ctx, name)
	if err != nil {
		return Player{}, err
	}
	return Player{Username: user.Username, CreatedAt: user.CreatedAt}, nil
}

// SaveScore records a score.
func (l *Local) SaveScore(ctx context.Context, username, gameID string, score int) (Entry, error) {
	if score < 0 {
		return Entry{}, fmt.Errorf("%w: score must be a non-negative integer", ErrInvalid)
	}
	entry, err := l.repo.SaveScore(ctx, username, gameID, score)
	if err != nil {
		return Entry{}, err
	}
	return toEntry(entry), nil
}

// Global returns each player's best score.
func (l *Local) Global(ctx context.Context, gameID string, limit int) ([]Entry, error) {
	entries, err := l.repo.GlobalLeaderboard(ctx, gameID, limit)
	if err != nil {
		return nil, err
	}
	return toEntries(entries), nil
}
