package tui

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
)

// fakeGame records the frames it receives and reports a scripted state.
type fakeGame struct {
	resets int
	steps  int
	drops  int
	state  core.GameState
}

func (g *fakeGame) ID() string               { return "fake" }
func (g *fakeGame) Title() string            { return "Fake" }
func (g *fakeGame) Reset(core.RuntimeConfig) { g.resets++ }
func (g *fakeGame) Render(dst *core.Screen)  { dst.Clear(); dst.DrawText(0, 0, "fake") }
func (g *fakeGame) State() core.GameState    { return g.state }
func (g *fakeGame) Step(in core.InputFrame) core.StepResult {
	g.steps++
	if in.Has(core.ActionDrop) {
		g.drops++
	}
	return core.StepResult{State: g.state}
}

// fakeBoard counts saved scores.
type fakeBoard struct {
	mu      sync.Mutex
	saves   []int
	entries []leaderboard.Entry
	err     error
}

func (b *fakeBoard) Login(_ context.Context, username string) (leaderboard.Player, error) {
	if b.err != nil {
		return leaderboard.Player{}, b.err
	}
	return leaderboard.Player{Username: username}, nil
}

func (b *fakeBoard) SaveScore(_ context.Context, username, _ string, score int) (leaderboard.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves = append(b.saves, score)
	return leaderboard.Entry{Username: username, Score: score}, b.err
}

func (b *fakeBoard) Global(context.Context, string, int) ([]leaderboard.Entry, error) {
	return b.entries, b.err
}

func (b *fakeBoard) saved() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.saves...)
}

func testOptions(board *fakeBoard) Options {
	return NewSessionOptions(board, log.NewWithOptions(io.Discard, log.Options{}))
}

func testConfig(player string) core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 60, ScreenH: 20, TickRate: 60, Seed: 1, Player: player}
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(TickMsg{Time: time.Now(), gen: m.tickGen})
	return next.(Model)
}

func TestModel_InitResetsGame(t *testing.T) {
	g := &fakeGame{}
	m := NewModel(g, Options{}, testConfig(""))

	require.NotNil(t, m.Init())
	assert.Equal(t, 1, g.resets)
}

func TestModel_IgnoresForeignTicks(t *testing.T) {
	g := &fakeGame{}
	m := NewModel(g, Options{}, testConfig(""))

	next, cmd := m.Update(TickMsg{Time: time.Now(), gen: m.tickGen + 1000})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, g.steps)

	tick(t, next.(Model))
	assert.Equal(t, 1, g.steps)
}

func TestModel_ClickDrops(t *testing.T) {
	g := &fakeGame{}
	m := NewModel(g, Options{}, testConfig(""))

	next, _ := m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = tick(t, next.(Model))
	assert.Equal(t, 1, g.drops)

	// Input is consumed by one frame.
	tick(t, m)
	assert.Equal(t, 1, g.drops)
}

func TestModel_SubmitsOncePerRun(t *testing.T) {
	board := &fakeBoard{}
	g := &fakeGame{}
	m := NewModel(g, testOptions(board), testConfig("alice"))

	g.state = core.GameState{Score: 4}
	m = tick(t, m)
	g.state = core.GameState{Score: 4, GameOver: true}
	m = tick(t, m)
	m = tick(t, m)
	m = tick(t, m)

	require.Eventually(t, func() bool { return len(board.saved()) == 1 }, time.Second, 5*time.Millisecond)

	// Restart, then a second game over.
	g.state = core.GameState{}
	m = tick(t, m)
	g.state = core.GameState{Score: 9, GameOver: true}
	tick(t, m)

	require.Eventually(t, func() bool { return len(board.saved()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{4, 9}, board.saved())
}

func TestModel_SkipsDemoGuestAndZero(t *testing.T) {
	tests := []struct {
		name   string
		player string
		state  core.GameState
	}{
		{"demo", "alice", core.GameState{Score: 6, GameOver: true, Demo: true}},
		{"guest", "", core.GameState{Score: 6, GameOver: true}},
		{"zero", "alice", core.GameState{Score: 0, GameOver: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &fakeBoard{}
			g := &fakeGame{state: tt.state}
			m := NewModel(g, testOptions(board), testConfig(tt.player))
			tick(t, m)
			time.Sleep(20 * time.Millisecond)
			assert.Empty(t, board.saved())
		})
	}
}

func TestModel_ScoreSavedStatus(t *testing.T) {
	m := NewModel(&fakeGame{}, Options{}, testConfig("alice"))

	next, _ := m.Update(scoreSavedMsg{Entry: leaderboard.Entry{Score: 3}})
	assert.Equal(t, "Score 3 saved", next.(Model).Status())

	next, _ = m.Update(scoreSavedMsg{Err: errors.New("offline")})
	assert.Equal(t, "Offline: score not saved", next.(Model).Status())
}

func TestModel_OverlayFreezesGame(t *testing.T) {
	board := &fakeBoard{entries: []leaderboard.Entry{{Username: "alice", Score: 12}}}
	g := &fakeGame{}
	m := NewModel(g, testOptions(board), testConfig("alice"))

	next, cmd := m.Update(keyMsg("l"))
	m = next.(Model)
	require.NotNil(t, m.overlay)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Len(t, m.overlay.Entries(), 1)

	m = tick(t, m)
	assert.Equal(t, 0, g.steps, "no frames while the leaderboard is open")

	next, _ = m.Update(keyMsg("esc"))
	m = next.(Model)
	assert.Nil(t, m.overlay)
	assert.False(t, m.BackToMenu(), "esc closes the overlay only")

	tick(t, m)
	assert.Equal(t, 1, g.steps)
}

func TestModel_QuitAndBack(t *testing.T) {
	m := NewModel(&fakeGame{}, Options{}, testConfig(""))

	next, _ := m.Update(keyMsg("q"))
	assert.True(t, next.(Model).IsQuitting())
	assert.Empty(t, next.(Model).View())

	next, _ = m.Update(keyMsg("esc"))
	assert.True(t, next.(Model).BackToMenu())
}

func TestModel_ViewShowsGame(t *testing.T) {
	m := NewModel(&fakeGame{}, Options{}, testConfig(""))
	assert.Contains(t, m.View(), "fake")
}
