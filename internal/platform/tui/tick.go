// Package tui is the Bubble Tea frontend of HyperStack: login, game picker,
// the frame-driven game view, the leaderboard overlay and the SSH server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives one simulation step. Each tick advances the game's virtual
// clock by exactly one frame, so slow terminals slow the game down instead
// of making it skip.
type TickMsg struct {
	Time time.Time
	gen  uint64 // tick chain the message belongs to
}

var tickGenerations atomic.Uint64

// nextTickGen returns a fresh tick chain id. A model only accepts ticks of
// its own chain, so a chain left over from a closed game view dies out.
func nextTickGen() uint64 {
	return tickGenerations.Add(1)
}

// tickCmd schedules the next tick of chain gen at the given rate.
func tickCmd(tickRate int, gen uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, gen: gen}
	})
}
