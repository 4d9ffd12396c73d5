package render

import (
	"math"
	"testing"

	"github.com/vovakirdan/hyperstack/internal/core"
)

func countColor(s *core.Screen, c core.Color) int {
	n := 0
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			cell := s.GetCell(x, y)
			if cell.Rune == BlockRune && cell.Color == c {
				n++
			}
		}
	}
	return n
}

func TestSceneAddRemove(t *testing.T) {
	s := NewScene()
	a := s.AddBox(core.V3(3, 1, 3), core.ColorWhite)
	b := s.AddBox(core.V3(1, 1, 1), core.ColorGray)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2", s.Len())
	}
	s.Remove(a)
	if s.Len() != 1 || s.Meshes()[0] != b {
		t.Error("Remove should keep the other mesh")
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Clear left %d meshes", s.Len())
	}
}

func TestMeshExtents(t *testing.T) {
	s := NewScene()
	m := s.AddBox(core.V3(3, 1, 3), core.ColorWhite)
	m.SetScale(core.V3(0.6, 1, 1))

	if got := m.Extents(); math.Abs(got.X-1.8) > 1e-9 || got.Z != 3 {
		t.Errorf("Extents() = %+v, expected (1.8, 1, 3)", got)
	}
}

func TestCameraRaiseToward(t *testing.T) {
	c := NewCamera()
	c.RaiseToward(10, 0.5)
	if c.Position.Y != 4.5 {
		t.Errorf("camera Y = %f, expected 4.5", c.Position.Y)
	}
	c.RaiseToward(4.6, 1)
	if c.Position.Y != 4.6 {
		t.Errorf("camera should stop at target, got %f", c.Position.Y)
	}
	c.RaiseToward(2, 1)
	if c.Position.Y != 4.6 {
		t.Errorf("camera should not move down, got %f", c.Position.Y)
	}
	c.Reset()
	if c.Position != CameraStart {
		t.Errorf("Reset() position = %+v", c.Position)
	}
}

func TestRenderDrawsBothPanels(t *testing.T) {
	s := NewScene()
	m := s.AddBox(core.V3(3, 1, 3), core.ColorOrange)
	m.SetPosition(core.V3(0, 0, 0))

	dst := core.NewScreen(41, 20)
	NewProjector().Render(s, NewCamera(), dst)

	left, right := 0, 0
	for y := 0; y < dst.Height(); y++ {
		for x := 0; x < dst.Width(); x++ {
			if dst.GetCell(x, y).Color != core.ColorOrange {
				continue
			}
			if x < 20 {
				left++
			} else if x > 20 {
				right++
			}
		}
	}
	if left == 0 || right == 0 {
		t.Errorf("box should appear in both panels, left=%d right=%d", left, right)
	}
	if dst.Get(20, 0) != DividerRune {
		t.Errorf("divider missing, got %q", dst.Get(20, 0))
	}
}

func TestRenderWidthFollowsScale(t *testing.T) {
	s := NewScene()
	s.AddBox(core.V3(3, 1, 3), core.ColorOrange)
	narrow := s.AddBox(core.V3(3, 1, 3), core.ColorCyan)
	narrow.SetPosition(core.V3(0, 1, 0))
	narrow.SetScale(core.V3(0.5, 1, 1))

	dst := core.NewScreen(81, 30)
	NewProjector().Render(s, NewCamera(), dst)

	if w, n := countColor(dst, core.ColorOrange), countColor(dst, core.ColorCyan); n >= w {
		t.Errorf("narrow box should cover fewer cells: wide=%d narrow=%d", w, n)
	}
}

func TestRenderSkipsNonFiniteMesh(t *testing.T) {
	s := NewScene()
	m := s.AddBox(core.V3(1, 1, 1), core.ColorRed)
	m.SetPosition(core.V3(math.NaN(), 0, 0))

	dst := core.NewScreen(40, 20)
	NewProjector().Render(s, NewCamera(), dst)

	if n := countColor(dst, core.ColorRed); n != 0 {
		t.Errorf("non-finite mesh should not be drawn, got %d cells", n)
	}
}

func TestRenderIntoLeavesOutsideUntouched(t *testing.T) {
	s := NewScene()
	s.AddBox(core.V3(30, 30, 30), core.ColorOrange)

	dst := core.NewScreen(40, 20)
	dst.DrawText(0, 0, "HUD")
	NewProjector().RenderInto(s, NewCamera(), dst, core.NewRect(0, 1, 40, 19))

	if dst.Row(0)[:3] != "HUD" {
		t.Errorf("row 0 should be untouched, got %q", dst.Row(0))
	}
}
