// Package physics is a small rigid-body simulation for stacked boxes.
//
// It knows about gravity, boxes resting on the top faces of static boxes,
// boxes tipping over edges they are not centered on, and sleeping. It is
// not a general solver: there is no box-box stacking between dynamic bodies.
package physics

import (
	"math"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// Simulation tuning.
const (
	DefaultIterations = 40
	DefaultKillPlane  = -40.0
	MaxSubstep        = 1.0 / 60.0
	MaxSubsteps       = 8

	tipAccel      = 6.0 // horizontal push while hanging over an edge
	tipSpin       = 4.0 // radians/sec applied while tipping
	sleepSpeed    = 0.05
	contactMargin = 1e-6
)

// World owns a set of bodies and advances them in time.
type World struct {
	Gravity    core.Vec3
	Iterations int     // contact passes per substep
	KillPlane  float64 // bodies below this height go to sleep

	bodies []*Body
}

// NewWorld creates an empty world with the given gravity.
func NewWorld(gravity core.Vec3) *World {
	return &World{
		Gravity:    gravity,
		Iterations: DefaultIterations,
		KillPlane:  DefaultKillPlane,
	}
}

// AddBody adds a body to the world. Adding the same body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b.world == w {
		return
	}
	b.world = w
	w.bodies = append(w.bodies, b)
}

// RemoveBody removes a body from the world.
func (w *World) RemoveBody(b *Body) {
	for i, o := range w.bodies {
		if o == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			b.world = nil
			return
		}
	}
}

// Clear removes every body.
func (w *World) Clear() {
	for _, b := range w.bodies {
		b.world = nil
	}
	w.bodies = w.bodies[:0]
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	for n := 0; dt > 0 && n < MaxSubsteps; n++ {
		h := min(dt, MaxSubstep)
		w.substep(h)
		dt -= h
	}
}

func (w *World) substep(h float64) {
	for _, b := range w.bodies {
		if b.IsStatic() || b.sleeping {
			continue
		}

		prevBottom := b.bottom()

		// Semi-implicit Euler: velocity first, then position.
		b.Velocity = b.Velocity.Add(w.Gravity.Scale(h))
		b.Position = b.Position.Add(b.Velocity.Scale(h))
		b.Quaternion = b.Quaternion.Integrate(b.AngularVelocity, h)

		resting := false
		for i := 0; i < w.Iterations; i++ {
			support := w.findSupport(b, prevBottom)
			if support == nil {
				break
			}
			resting = w.resolve(b, support, h) || resting
		}

		if !b.Position.IsFinite() {
			b.Position = core.Vec3{Y: w.KillPlane}
			b.Velocity = core.Vec3{}
		}
		if b.Position.Y < w.KillPlane || (resting && b.Velocity.Len() < sleepSpeed) {
			b.Velocity = core.Vec3{}
			b.AngularVelocity = core.Vec3{}
			b.sleeping = true
		}
	}
}

// findSupport returns the highest static body whose top face b has crossed
// during this substep and is still penetrating.
func (w *World) findSupport(b *Body, prevBottom float64) *Body {
	var best *Body
	bottom := b.bottom()
	for _, o := range w.bodies {
		if o == b || !o.IsStatic() || len(o.shapes) == 0 {
			continue
		}
		top := o.top()
		if prevBottom < top-contactMargin || bottom >= top-contactMargin {
			continue
		}
		if !b.footprintOverlaps(o) {
			continue
		}
		if best == nil || top > best.top() {
			best = o
		}
	}
	return best
}

// resolve pushes b onto the top face of support. It returns true when b is
// fully supported; otherwise b is pushed off the edge and starts to spin.
func (w *World) resolve(b, support *Body, h float64) bool {
	b.Position.Y = support.top() + b.halfExtents().Y
	if b.Velocity.Y < 0 {
		b.Velocity.Y = 0
	}

	if b.centeredOver(support) {
		b.Velocity.X *= 0.5
		b.Velocity.Z *= 0.5
		b.AngularVelocity = b.AngularVelocity.Scale(0.5)
		return true
	}

	off := b.Position.Sub(support.Position)
	off.Y = 0
	dir := off.Normalize()
	b.Velocity = b.Velocity.Add(dir.Scale(tipAccel * h))
	b.AngularVelocity = core.V3(0, 1, 0).Cross(dir).Scale(-tipSpin)
	// Nudge sideways so the next pass can fall clear of the edge.
	b.Position = b.Position.Add(dir.Scale(tipAccel * h * h))
	return false
}
