package stack

import "github.com/vovakirdan/hyperstack/internal/render"

// Frame advances the game to timestamp now, in milliseconds. The first
// frame after a (re)start only records the time.
func (g *Game) Frame(now float64) {
	if g.space == nil {
		return
	}
	if !g.synced {
		g.synced = true
		g.lastTime = now
		return
	}
	elapsed := now - g.lastTime
	g.lastTime = now
	if elapsed < 0 {
		elapsed = 0
	}

	speed := g.speed()

	if top, below, ok := g.ledger.Active(); ok && g.state != StateEnded {
		advance := !g.autopilot || !g.pilot.Reached(top, below)
		if advance {
			top.ShiftAlongAxis(top.Axis, speed*elapsed)
			if top.Position().Component(top.Axis) > g.cfg.Motion.TravelBound {
				g.miss()
			}
		} else {
			g.split()
			g.pilot.Reroll()
		}
	}

	target := g.cfg.Block.Height*float64(g.ledger.Len()-2) + render.CameraStart.Y
	g.camera.RaiseToward(target, speed*elapsed)

	g.space.World.Step(elapsed / 1000)
	for _, o := range g.ledger.Overhangs() {
		o.SyncFromBody()
	}
}

// speed returns the slide speed in world units per millisecond.
func (g *Game) speed() float64 {
	base := g.cfg.Motion.Speed
	if !g.rush {
		return base
	}
	return g.difficulty.Speed(base, g.score, g.ticks)
}
