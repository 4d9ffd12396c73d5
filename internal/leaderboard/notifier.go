package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Result is the outcome of a background score submission.
type Result struct {
	Entry Entry
	Err   error
}

// Notifier submits the score of a finished run at most once per run.
// Submissions run in their own goroutine with a timeout; failures are
// logged and reported, never retried.
type Notifier struct {
	board   Board
	timeout time.Duration
	logger  *log.Logger

	mu    sync.Mutex
	fired bool
}

// NewNotifier creates a notifier. A nil board makes every Notify a no-op.
func NewNotifier(board Board, timeout time.Duration, logger *log.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{board: board, timeout: timeout, logger: logger}
}

// Arm allows the next Notify to fire. Call it when a new run starts.
func (n *Notifier) Arm() {
	n.mu.Lock()
	n.fired = false
	n.mu.Unlock()
}

// Notify starts the submission and returns a channel that yields its result.
// When the notifier already fired for this run, or has no board, the
// returned channel is closed without a value.
func (n *Notifier) Notify(username, gameID string, score int) <-chan Result {
	out := make(chan Result, 1)

	n.mu.Lock()
	skip := n.fired || n.board == nil
	n.fired = true
	n.mu.Unlock()

	if skip {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		entry, err := n.board.SaveScore(ctx, username, gameID, score)
		if err != nil {
			n.logger.Warn("could not submit score", "user", username, "game", gameID, "score", score, "error", err)
		} else {
			n.logger.Debug("score submitted", "user", username, "game", gameID, "score", score)
		}
		out <- Result{Entry: entry, Err: err}
	}()
	return out
}
