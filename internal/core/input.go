package core

// Action represents a semantic game action, abstracted from physical key presses.
// Pointer clicks, touches and the space key all collapse to ActionDrop.
type Action int

const (
	ActionNone        Action = iota
	ActionDrop               // Space, Enter, mouse click - drop the moving block
	ActionRestart            // R key - start a fresh run
	ActionLeaderboard        // L key - toggle the leaderboard overlay
	ActionBack               // Esc, B - close overlay / go back
	ActionQuit               // Q, Ctrl+C - exit game/session
	ActionPause              // P - pause/unpause game
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionDrop:
		return "Drop"
	case ActionRestart:
		return "Restart"
	case ActionLeaderboard:
		return "Leaderboard"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame is the set of actions triggered during one tick. The zero
// value is an empty frame and frames are plain values.
type InputFrame struct {
	bits uint32
}

// NewInputFrame returns an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if a > ActionNone && a < 32 {
		f.bits |= 1 << uint(a)
	}
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return a > ActionNone && a < 32 && f.bits&(1<<uint(a)) != 0
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return f.bits == 0
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	f.bits = 0
}
