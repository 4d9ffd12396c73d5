package core

import "time"

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // Simulation ticks per second (default 60)
	Seed     int64  // RNG seed for deterministic gameplay
	Player   string // Logged-in username, empty for anonymous play
}

// WithDefaults fills unset fields: an 80x24 screen, 60 ticks per second
// and a seed taken from now.
func (c RuntimeConfig) WithDefaults(now time.Time) RuntimeConfig {
	if c.ScreenW <= 0 || c.ScreenH <= 0 {
		c.ScreenW, c.ScreenH = 80, 24
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.Seed == 0 {
		c.Seed = now.UnixNano()
	}
	return c
}

// FrameMillis returns the duration of one tick in milliseconds.
func (c RuntimeConfig) FrameMillis() float64 {
	if c.TickRate <= 0 {
		return 1000.0 / 60.0
	}
	return 1000.0 / float64(c.TickRate)
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Current score
	GameOver bool // Whether the run has ended
	Paused   bool // Whether the game is paused
	Demo     bool // Whether the run is played by the autopilot
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
