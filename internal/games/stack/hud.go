package stack

import (
	"fmt"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// Render draws the tower and the HUD.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.space == nil {
		dst.DrawTextCentered(dst.Height()/2, "HyperStack")
		return
	}

	g.projector.RenderInto(g.space.Scene, g.camera, dst, core.NewRect(0, 1, dst.Width(), dst.Height()-1))

	// Draw HUD
	hud := fmt.Sprintf(" Score: %d ", g.score)
	if g.perfects > 0 {
		hud += fmt.Sprintf(" Perfect: %d ", g.perfects)
	}
	dst.DrawTextColored(1, 0, hud, core.ColorYellow)
	right := dst.Width() - 1
	if g.rush {
		right -= 7
		dst.DrawTextColored(right, 0, " RUSH ", core.ColorOrange)
	}
	if name := g.runtime.Player; name != "" {
		dst.DrawTextColored(right-len(name)-2, 0, " "+name+" ", core.ColorCyan)
	}

	switch {
	case g.autopilot && g.state != StateEnded:
		g.drawCenteredMessage(dst, "HYPERSTACK", "Press SPACE to play")
	case g.autopilot:
		g.drawCenteredMessage(dst, "DEMO OVER", "Press SPACE to play")
	case g.paused:
		g.drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	case g.state == StateEnded:
		g.drawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", g.score))
	}
}

// drawCenteredMessage draws a message box in the upper part of the screen,
// clear of the tower.
func (g *Game) drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()

	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := max(2, dst.Height()/5)

	box := core.NewRect(boxX, boxY, boxW, boxH)
	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box)

	dst.DrawTextColored(boxX+(boxW-len(title))/2, boxY+1, title, core.ColorCyan)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
