package stack

import "math/rand"

// Autopilot plays by itself: it lets the moving layer slide until it reaches
// the layer below plus a small random error, then drops.
type Autopilot struct {
	Precision float64 // current offset from a perfect drop

	spread float64
	rng    *rand.Rand
}

// NewAutopilot creates an autopilot whose offsets are drawn uniformly from
// [-spread/2, spread/2).
func NewAutopilot(seed int64, spread float64) *Autopilot {
	a := &Autopilot{
		spread: spread,
		rng:    rand.New(rand.NewSource(seed)),
	}
	a.Reroll()
	return a
}

// Reroll draws a new precision offset.
func (a *Autopilot) Reroll() {
	a.Precision = a.rng.Float64()*a.spread - a.spread/2
}

// Reached reports whether top has slid up to its target over below.
func (a *Autopilot) Reached(top, below *Layer) bool {
	axis := top.Axis
	return top.Position().Component(axis) >= below.Position().Component(axis)+a.Precision
}
