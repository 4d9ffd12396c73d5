package physics

import (
	"testing"

	"github.com/vovakirdan/hyperstack/internal/core"
)

func newTestWorld() (*World, *Body) {
	w := NewWorld(core.V3(0, -10, 0))
	ground := NewBody(0, NewBox(core.V3(1.5, 0.5, 1.5)))
	w.AddBody(ground)
	return w, ground
}

func stepFor(w *World, seconds float64) {
	for t := 0.0; t < seconds; t += 1.0 / 60 {
		w.Step(1.0 / 60)
	}
}

func TestStaticBodiesDoNotMove(t *testing.T) {
	w, ground := newTestWorld()
	stepFor(w, 2)

	if ground.Position != (core.Vec3{}) {
		t.Errorf("static body moved to %+v", ground.Position)
	}
	if ground.Quaternion != core.IdentityQuat() {
		t.Errorf("static body rotated to %+v", ground.Quaternion)
	}
}

func TestBodyFallsUnderGravity(t *testing.T) {
	w := NewWorld(core.V3(0, -10, 0))
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 0.5)))
	b.Position = core.V3(0, 10, 0)
	w.AddBody(b)

	w.Step(0.5)

	if b.Position.Y >= 10 {
		t.Errorf("body should fall, Y = %f", b.Position.Y)
	}
	if b.Velocity.Y >= 0 {
		t.Errorf("velocity should point down, got %f", b.Velocity.Y)
	}
}

func TestBodyRestsOnSupport(t *testing.T) {
	w, _ := newTestWorld()
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 0.5)))
	b.Position = core.V3(0.2, 3, 0)
	w.AddBody(b)

	stepFor(w, 3)

	if got, want := b.Position.Y, 1.0; got < want-1e-9 || got > want+1e-6 {
		t.Errorf("resting Y = %f, expected %f", got, want)
	}
	if !b.Sleeping() {
		t.Error("resting body should fall asleep")
	}
}

func TestBodyTipsOffEdge(t *testing.T) {
	w, _ := newTestWorld()
	// Center hangs past the support edge at x = 1.5.
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 1.5)))
	b.Position = core.V3(1.8, 1, 0)
	w.AddBody(b)

	stepFor(w, 4)

	if b.Position.Y > 0 {
		t.Errorf("overhanging body should fall past the support, Y = %f", b.Position.Y)
	}
	if b.Position.X <= 1.8 {
		t.Errorf("overhanging body should slide away from the support, X = %f", b.Position.X)
	}
}

func TestBodySleepsBelowKillPlane(t *testing.T) {
	w := NewWorld(core.V3(0, -10, 0))
	w.KillPlane = -5
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 0.5)))
	w.AddBody(b)

	stepFor(w, 5)

	if !b.Sleeping() {
		t.Error("body below the kill plane should sleep")
	}
	y := b.Position.Y
	w.Step(1)
	if b.Position.Y != y {
		t.Error("sleeping body should not move")
	}
}

func TestZeroSizeBodyStaysFinite(t *testing.T) {
	w, _ := newTestWorld()
	b := NewBody(0.0001, NewBox(core.Vec3{}))
	b.Position = core.V3(1.5, 1, 0)
	w.AddBody(b)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60)
		if !b.Position.IsFinite() {
			t.Fatalf("position became non-finite at step %d: %+v", i, b.Position)
		}
		q := b.Quaternion
		if !core.V3(q.X, q.Y, q.Z).IsFinite() {
			t.Fatalf("orientation became non-finite at step %d: %+v", i, q)
		}
	}
}

func TestStepIgnoresBadDt(t *testing.T) {
	w := NewWorld(core.V3(0, -10, 0))
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 0.5)))
	w.AddBody(b)

	for _, dt := range []float64{0, -1} {
		w.Step(dt)
	}
	if b.Position != (core.Vec3{}) {
		t.Errorf("non-positive dt should not move bodies, got %+v", b.Position)
	}
}

func TestReplaceShapes(t *testing.T) {
	b := NewBody(0, NewBox(core.V3(1.5, 0.5, 1.5)))
	b.ClearShapes()
	b.AddShape(NewBox(core.V3(0.9, 0.5, 1.5)))

	if n := len(b.Shapes()); n != 1 {
		t.Fatalf("expected 1 shape, got %d", n)
	}
	if got := b.Shapes()[0].HalfExtents.X; got != 0.9 {
		t.Errorf("half extent X = %f, expected 0.9", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	w, ground := newTestWorld()
	b := NewBody(5, NewBox(core.V3(0.5, 0.5, 0.5)))
	w.AddBody(b)
	w.AddBody(b)

	if n := len(w.Bodies()); n != 2 {
		t.Fatalf("expected 2 bodies, got %d", n)
	}
	w.RemoveBody(ground)
	if n := len(w.Bodies()); n != 1 || w.Bodies()[0] != b {
		t.Fatalf("RemoveBody left %d bodies", n)
	}
	w.Clear()
	if n := len(w.Bodies()); n != 0 {
		t.Errorf("Clear left %d bodies", n)
	}
}
