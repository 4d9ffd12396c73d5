package render

import (
	"math"
	"sort"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// Projector defaults.
const (
	DefaultCellsPerUnit = 4.0
	DefaultRowsPerUnit  = 2.0
	BlockRune           = '█'
	DividerRune         = '│'
)

// Projector draws a scene as two orthographic panels: the front view
// (world X across) on the left and the side view (world Z across) on the
// right. World Y always runs up the screen.
type Projector struct {
	CellsPerUnit float64 // columns per world unit
	RowsPerUnit  float64 // rows per world unit
	FocusRatio   float64 // panel height fraction above the focus row
}

// NewProjector creates a projector with default scale.
func NewProjector() *Projector {
	return &Projector{
		CellsPerUnit: DefaultCellsPerUnit,
		RowsPerUnit:  DefaultRowsPerUnit,
		FocusRatio:   0.6,
	}
}

// Render draws the scene over the whole screen.
func (p *Projector) Render(scene *Scene, cam Camera, dst *core.Screen) {
	p.RenderInto(scene, cam, dst, core.NewRect(0, 0, dst.Width(), dst.Height()))
}

// RenderInto draws the scene inside area. Cells outside area are untouched.
func (p *Projector) RenderInto(scene *Scene, cam Camera, dst *core.Screen, area core.Rect) {
	if area.W < 3 || area.H < 1 {
		return
	}
	leftW := (area.W - 1) / 2
	front := core.NewRect(area.X, area.Y, leftW, area.H)
	side := core.NewRect(area.X+leftW+1, area.Y, area.W-leftW-1, area.H)

	dst.FillRect(area, ' ', core.ColorDefault)
	dst.DrawVLine(area.X+leftW, area.Y, area.H, DividerRune, core.ColorDarkGray)

	p.drawPanel(scene, cam, dst, front, core.AxisX, core.AxisZ)
	p.drawPanel(scene, cam, dst, side, core.AxisZ, core.AxisX)
}

// drawPanel draws every mesh projected onto the (across, Y) plane. Meshes
// are sorted by their depth axis so nearer boxes are drawn last.
func (p *Projector) drawPanel(scene *Scene, cam Camera, dst *core.Screen, panel core.Rect, across, depth core.Axis) {
	meshes := make([]*Mesh, len(scene.Meshes()))
	copy(meshes, scene.Meshes())
	sort.SliceStable(meshes, func(i, j int) bool {
		return meshes[i].Position.Component(depth) < meshes[j].Position.Component(depth)
	})

	centerCol := float64(panel.X) + float64(panel.W)/2
	focusRow := float64(panel.Y) + float64(panel.H)*p.FocusRatio
	lookAt := cam.LookAt.Component(across)
	focus := cam.Focus()

	for _, m := range meshes {
		minH, maxH := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, c := range m.corners() {
			h := c.Component(across)
			minH, maxH = math.Min(minH, h), math.Max(maxH, h)
			minV, maxV = math.Min(minV, c.Y), math.Max(maxV, c.Y)
		}
		if !isFinite(minH, maxH, minV, maxV) {
			continue
		}

		r := core.RectFromBounds(
			centerCol+(minH-lookAt)*p.CellsPerUnit,
			focusRow-(maxV-focus)*p.RowsPerUnit,
			centerCol+(maxH-lookAt)*p.CellsPerUnit,
			focusRow-(minV-focus)*p.RowsPerUnit,
		)
		dst.FillRect(r.Intersect(panel), BlockRune, m.Color)
	}
}

func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
