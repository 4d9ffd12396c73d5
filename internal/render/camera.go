package render

import "github.com/vovakirdan/hyperstack/internal/core"

// Camera start position, looking at the origin.
var (
	CameraStart  = core.V3(4, 4, 4)
	CameraTarget = core.Vec3{}
)

// Camera is the view state. Only the height changes during play.
type Camera struct {
	Position core.Vec3
	LookAt   core.Vec3
}

// NewCamera creates a camera at the start position.
func NewCamera() Camera {
	c := Camera{}
	c.Reset()
	return c
}

// Reset moves the camera back to the start position.
func (c *Camera) Reset() {
	c.Position = CameraStart
	c.LookAt = CameraTarget
}

// RaiseToward moves the camera up toward target by at most step.
// It never moves down.
func (c *Camera) RaiseToward(target, step float64) {
	if c.Position.Y >= target || step <= 0 {
		return
	}
	c.Position.Y = min(c.Position.Y+step, target)
}

// Focus returns the world height drawn at the panel focus row.
func (c Camera) Focus() float64 {
	return c.Position.Y - CameraStart.Y
}
