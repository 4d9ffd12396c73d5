package stack

import (
	"fmt"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/physics"
	"github.com/vovakirdan/hyperstack/internal/render"
)

// Space is where every block lives: one render scene and one physics world
// sharing the block dimensions.
type Space struct {
	Scene *render.Scene
	World *physics.World
	Block config.StackBlock
}

// NewSpace creates an empty scene and world.
func NewSpace(cfg config.StackConfig) *Space {
	w := physics.NewWorld(core.V3(0, cfg.Physics.Gravity, 0))
	if cfg.Physics.Iterations > 0 {
		w.Iterations = cfg.Physics.Iterations
	}
	if cfg.Physics.KillPlane < 0 {
		w.KillPlane = cfg.Physics.KillPlane
	}
	return &Space{
		Scene: render.NewScene(),
		World: w,
		Block: cfg.Block,
	}
}

// Mass returns the mass of a falling block with the given footprint.
func (s *Space) Mass(width, depth float64) float64 {
	return s.Block.BaseMass * (width / s.Block.Size) * (depth / s.Block.Size)
}

// Clear removes every mesh and body.
func (s *Space) Clear() {
	s.Scene.Clear()
	s.World.Clear()
}

// Pair is one block: a mesh and a body that always describe the same box.
// While solid, both are moved together through the pair; once dynamic, the
// body is the authority and SyncFromBody copies it onto the mesh.
type Pair struct {
	Mesh  *render.Mesh
	Body  *physics.Body
	Width float64
	Depth float64

	space *Space
}

// NewPair creates a block at pos. Dynamic blocks get a mass proportional to
// their footprint, solid ones are static.
func (s *Space) NewPair(pos core.Vec3, width, depth float64, dynamic bool, color core.Color) *Pair {
	mustBePositive(width, depth)

	h := s.Block.Height
	mesh := s.Scene.AddBox(core.V3(width, h, depth), color)
	mesh.SetPosition(pos)

	var mass float64
	if dynamic {
		mass = s.Mass(width, depth)
	}
	body := physics.NewBody(mass, physics.NewBox(core.V3(width/2, h/2, depth/2)))
	body.Position = pos
	s.World.AddBody(body)

	return &Pair{
		Mesh:  mesh,
		Body:  body,
		Width: width,
		Depth: depth,
		space: s,
	}
}

// Position returns the block position.
func (p *Pair) Position() core.Vec3 {
	return p.Mesh.Position
}

// Extent returns the block size along an axis.
func (p *Pair) Extent(a core.Axis) float64 {
	switch a {
	case core.AxisX:
		return p.Width
	case core.AxisZ:
		return p.Depth
	default:
		return p.space.Block.Height
	}
}

// SetScaleAlongAxis scales the mesh relative to its creation size.
func (p *Pair) SetScaleAlongAxis(a core.Axis, factor float64) {
	p.Mesh.SetScale(p.Mesh.Scale.WithComponent(a, factor))
}

// ShiftAlongAxis moves mesh and body by the same delta.
func (p *Pair) ShiftAlongAxis(a core.Axis, delta float64) {
	p.Mesh.SetPosition(p.Mesh.Position.WithComponent(a, p.Mesh.Position.Component(a)+delta))
	p.Body.Position = p.Body.Position.WithComponent(a, p.Body.Position.Component(a)+delta)
}

// ReplaceShape detaches the body's shapes and attaches a new box.
func (p *Pair) ReplaceShape(half core.Vec3) {
	mustBePositive(half.X, half.Z)
	p.Body.ClearShapes()
	p.Body.AddShape(physics.NewBox(half))
}

// SyncFromBody copies the simulated transform onto the mesh.
func (p *Pair) SyncFromBody() {
	p.Mesh.SetPosition(p.Body.Position)
	p.Mesh.SetOrientation(p.Body.Quaternion)
}

// MakeDynamic hands the block over to the physics simulation.
func (p *Pair) MakeDynamic() {
	p.Body.SetMass(p.space.Mass(p.Width, p.Depth))
}

// Destroy removes the block from the scene and the world.
func (p *Pair) Destroy() {
	p.space.Scene.Remove(p.Mesh)
	p.space.World.RemoveBody(p.Body)
}

func mustBePositive(width, depth float64) {
	if !(width > 0) || !(depth > 0) {
		panic(fmt.Sprintf("stack: block extents must be positive, got %gx%g", width, depth))
	}
}
