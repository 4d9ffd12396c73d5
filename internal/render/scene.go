// Package render draws box meshes into a character screen.
//
// A Scene holds meshes whose transforms are written by the game; a
// Projector turns the scene into two orthographic panels (front and side)
// on a core.Screen.
package render

import "github.com/vovakirdan/hyperstack/internal/core"

// Mesh is a box with a transform. Size is fixed at creation; Scale
// multiplies it per axis.
type Mesh struct {
	Size        core.Vec3
	Position    core.Vec3
	Scale       core.Vec3
	Orientation core.Quat
	Color       core.Color
}

// SetPosition moves the mesh.
func (m *Mesh) SetPosition(p core.Vec3) {
	m.Position = p
}

// SetScale sets the per-axis scale factors.
func (m *Mesh) SetScale(s core.Vec3) {
	m.Scale = s
}

// SetOrientation rotates the mesh.
func (m *Mesh) SetOrientation(q core.Quat) {
	m.Orientation = q
}

// Extents returns the scaled size of the mesh.
func (m *Mesh) Extents() core.Vec3 {
	return m.Size.Mul(m.Scale)
}

// corners returns the eight world-space corners of the mesh.
func (m *Mesh) corners() [8]core.Vec3 {
	h := m.Extents().Scale(0.5)
	var out [8]core.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := core.V3(h.X*sx, h.Y*sy, h.Z*sz)
				out[i] = m.Orientation.Rotate(local).Add(m.Position)
				i++
			}
		}
	}
	return out
}

// Scene is an ordered set of meshes.
type Scene struct {
	meshes []*Mesh
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// AddBox creates a box mesh of the given size and adds it to the scene.
func (s *Scene) AddBox(size core.Vec3, color core.Color) *Mesh {
	m := &Mesh{
		Size:        size,
		Scale:       core.V3(1, 1, 1),
		Orientation: core.IdentityQuat(),
		Color:       color,
	}
	s.meshes = append(s.meshes, m)
	return m
}

// Remove takes a mesh out of the scene.
func (s *Scene) Remove(m *Mesh) {
	for i, o := range s.meshes {
		if o == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return
		}
	}
}

// Clear removes every mesh.
func (s *Scene) Clear() {
	s.meshes = s.meshes[:0]
}

// Meshes returns the meshes in insertion order.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// Len returns the number of meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}
