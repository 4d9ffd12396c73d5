package stack

import (
	"math"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// Cut is the measurement of a drop: how far the moving layer overshoots
// the layer below along its slide axis.
type Cut struct {
	Axis         core.Axis
	Size         float64 // moving layer extent along Axis
	Delta        float64 // signed offset from the layer below
	OverhangSize float64 // |Delta|
	Overlap      float64 // Size - OverhangSize
}

// Slab is the geometry of a block that is about to be created.
type Slab struct {
	Position core.Vec3
	Width    float64
	Depth    float64
	Axis     core.Axis
}

// Measure compares the moving layer with the one below it.
func Measure(top, below *Layer) Cut {
	axis := top.Axis
	size := top.Extent(axis)
	delta := top.Position().Component(axis) - below.Position().Component(axis)
	overhang := math.Abs(delta)
	return Cut{
		Axis:         axis,
		Size:         size,
		Delta:        delta,
		OverhangSize: overhang,
		Overlap:      size - overhang,
	}
}

// Miss reports whether nothing of the moving layer rests on the one below.
// A zero overlap is a miss.
func (c Cut) Miss() bool {
	return !(c.Overlap > 0)
}

// Perfect reports a drop with no offset at all.
func (c Cut) Perfect() bool {
	return c.OverhangSize == 0
}

// Apply trims top to the overlap and recenters it over the kept part.
// It returns the cut-off remainder, or ok=false for a perfect drop where
// nothing is cut off. Apply must not be called for a miss.
func (c Cut) Apply(top *Layer, height float64) (overhang Slab, ok bool) {
	width, depth := top.Width, top.Depth
	if c.Axis == core.AxisX {
		width = c.Overlap
	} else {
		depth = c.Overlap
	}

	top.Width, top.Depth = width, depth
	top.SetScaleAlongAxis(c.Axis, c.Overlap/c.Size)
	top.ShiftAlongAxis(c.Axis, -c.Delta/2)
	top.ReplaceShape(core.V3(width/2, height/2, depth/2))

	if c.Perfect() {
		return Slab{}, false
	}

	shift := (c.Overlap/2 + c.OverhangSize/2) * core.Sign(c.Delta)
	pos := top.Position()
	pos = pos.WithComponent(c.Axis, pos.Component(c.Axis)+shift)

	overhang = Slab{Position: pos, Width: width, Depth: depth, Axis: c.Axis}
	if c.Axis == core.AxisX {
		overhang.Width = c.OverhangSize
	} else {
		overhang.Depth = c.OverhangSize
	}
	return overhang, true
}

// Next returns the layer that follows a trimmed top layer: same footprint,
// sliding along the other axis from spawn, one level higher.
func Next(top *Layer, spawn, y float64) Slab {
	next := top.Axis.Other()
	pos := top.Position().WithComponent(next, spawn)
	pos.Y = y
	return Slab{Position: pos, Width: top.Width, Depth: top.Depth, Axis: next}
}
