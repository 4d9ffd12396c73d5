package physics

import "github.com/vovakirdan/hyperstack/internal/core"

// Box is an axis-aligned box shape centered on its body.
type Box struct {
	HalfExtents core.Vec3
}

// NewBox creates a box shape from half extents.
func NewBox(half core.Vec3) Box {
	return Box{HalfExtents: half}
}

// Body is a rigid body. A zero mass makes it static.
// Position and Quaternion are authoritative once a dynamic body is added to a world.
type Body struct {
	Mass            float64
	Position        core.Vec3
	Quaternion      core.Quat
	Velocity        core.Vec3
	AngularVelocity core.Vec3

	shapes   []Box
	sleeping bool
	world    *World
}

// NewBody creates a body with one box shape.
func NewBody(mass float64, shape Box) *Body {
	return &Body{
		Mass:       mass,
		Quaternion: core.IdentityQuat(),
		shapes:     []Box{shape},
	}
}

// AddShape attaches another box to the body.
func (b *Body) AddShape(s Box) {
	b.shapes = append(b.shapes, s)
	b.Wake()
}

// ClearShapes detaches every shape. Shapes are never resized in place.
func (b *Body) ClearShapes() {
	b.shapes = b.shapes[:0]
	b.Wake()
}

// Shapes returns the attached shapes.
func (b *Body) Shapes() []Box {
	return b.shapes
}

// IsStatic reports whether the body is immovable.
func (b *Body) IsStatic() bool {
	return b.Mass <= 0
}

// SetMass changes the body mass. A positive mass turns a static body
// into a falling one.
func (b *Body) SetMass(m float64) {
	b.Mass = m
	b.Wake()
}

// Sleeping reports whether the body has come to rest and is skipped by Step.
func (b *Body) Sleeping() bool {
	return b.sleeping
}

// Wake puts a sleeping body back into the simulation.
func (b *Body) Wake() {
	b.sleeping = false
}

// halfExtents returns the bounding half extents over all shapes.
func (b *Body) halfExtents() core.Vec3 {
	var h core.Vec3
	for _, s := range b.shapes {
		h.X = max(h.X, s.HalfExtents.X)
		h.Y = max(h.Y, s.HalfExtents.Y)
		h.Z = max(h.Z, s.HalfExtents.Z)
	}
	return h
}

func (b *Body) top() float64 {
	return b.Position.Y + b.halfExtents().Y
}

func (b *Body) bottom() float64 {
	return b.Position.Y - b.halfExtents().Y
}

// footprintOverlaps reports whether the XZ footprints of a and o intersect.
func (b *Body) footprintOverlaps(o *Body) bool {
	ha, ho := b.halfExtents(), o.halfExtents()
	dx := b.Position.X - o.Position.X
	dz := b.Position.Z - o.Position.Z
	return abs(dx) < ha.X+ho.X && abs(dz) < ha.Z+ho.Z
}

// centeredOver reports whether the center of b lies inside the footprint of o.
func (b *Body) centeredOver(o *Body) bool {
	ho := o.halfExtents()
	return abs(b.Position.X-o.Position.X) <= ho.X && abs(b.Position.Z-o.Position.Z) <= ho.Z
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
