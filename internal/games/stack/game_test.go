package stack

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/registry"
	"github.com/vovakirdan/hyperstack/internal/render"
)

const eps = 1e-9

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

// newRunning returns a game with a fresh player run.
func newRunning(t *testing.T) *Game {
	t.Helper()
	g := New().WithConfig(config.DefaultStackConfig())
	g.Reset(testRuntime(42))
	g.Start()
	return g
}

// moveTop places the moving layer at pos along its slide axis.
func moveTop(g *Game, pos float64) {
	top := g.ledger.Top()
	top.ShiftAlongAxis(top.Axis, pos-top.Position().Component(top.Axis))
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestStartSeedsTower(t *testing.T) {
	g := newRunning(t)

	if g.Phase() != StateRunning {
		t.Fatalf("Phase() = %v, expected Running", g.Phase())
	}
	if g.ledger.Len() != 2 {
		t.Fatalf("expected 2 layers, got %d", g.ledger.Len())
	}
	top, below, ok := g.ledger.Active()
	if !ok {
		t.Fatal("Active() should succeed with 2 layers")
	}
	if below.Position() != (core.Vec3{}) {
		t.Errorf("foundation at %+v, expected origin", below.Position())
	}
	if top.Position() != core.V3(-10, 1, 0) || top.Axis != core.AxisX {
		t.Errorf("first layer at %+v axis %v, expected (-10, 1, 0) axis x", top.Position(), top.Axis)
	}
	if top.Width != 3 || top.Depth != 3 {
		t.Errorf("first layer extents %fx%f, expected 3x3", top.Width, top.Depth)
	}
	if !top.Body.IsStatic() || !below.Body.IsStatic() {
		t.Error("seed layers should be static")
	}
}

func TestDropCutExample(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 1.2)
	placed := g.ledger.Top()

	g.Drop()

	if g.State().Score != 1 {
		t.Errorf("Score = %d, expected 1", g.State().Score)
	}
	if !near(placed.Width, 1.8) || placed.Depth != 3 {
		t.Errorf("retained extents %fx%f, expected 1.8x3", placed.Width, placed.Depth)
	}
	if !near(placed.Position().X, 0.6) {
		t.Errorf("retained X = %f, expected 0.6", placed.Position().X)
	}
	if placed.Body.Position != placed.Mesh.Position {
		t.Errorf("mesh %+v and body %+v diverged", placed.Mesh.Position, placed.Body.Position)
	}
	if got := placed.Body.Shapes()[0].HalfExtents; !near(got.X, 0.9) || got.Z != 1.5 || got.Y != 0.5 {
		t.Errorf("shape half extents = %+v, expected (0.9, 0.5, 1.5)", got)
	}
	if !near(placed.Mesh.Extents().X, 1.8) {
		t.Errorf("mesh width = %f, expected 1.8", placed.Mesh.Extents().X)
	}

	overhangs := g.ledger.Overhangs()
	if len(overhangs) != 1 {
		t.Fatalf("expected 1 overhang, got %d", len(overhangs))
	}
	o := overhangs[0]
	if !near(o.Width, 1.2) || o.Depth != 3 {
		t.Errorf("overhang extents %fx%f, expected 1.2x3", o.Width, o.Depth)
	}
	if !near(o.Position().X, 2.1) || o.Position().Y != 1 {
		t.Errorf("overhang at %+v, expected x=2.1 y=1", o.Position())
	}
	if o.Body.IsStatic() {
		t.Error("overhang should be dynamic")
	}

	next := g.ledger.Top()
	if next.Axis != core.AxisZ {
		t.Errorf("next axis = %v, expected z", next.Axis)
	}
	if !near(next.Position().X, 0.6) || next.Position().Z != -10 || next.Position().Y != 2 {
		t.Errorf("next layer at %+v, expected (0.6, 2, -10)", next.Position())
	}
	if !near(next.Width, 1.8) || next.Depth != 3 {
		t.Errorf("next layer extents %fx%f, expected 1.8x3", next.Width, next.Depth)
	}
}

func TestDropMissExample(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 3.5)
	missed := g.ledger.Top()

	g.Drop()

	if g.Phase() != StateEnded || !g.State().GameOver {
		t.Fatalf("Phase() = %v, expected Ended", g.Phase())
	}
	if g.ledger.Len() != 1 {
		t.Errorf("missed layer should leave the tower, %d layers remain", g.ledger.Len())
	}
	overhangs := g.ledger.Overhangs()
	if len(overhangs) != 1 || overhangs[0] != missed.Pair {
		t.Fatalf("missed layer should become the only overhang, got %d", len(overhangs))
	}
	if overhangs[0].Width != 3 || overhangs[0].Depth != 3 {
		t.Errorf("overhang extents %fx%f, expected full 3x3", overhangs[0].Width, overhangs[0].Depth)
	}
	if overhangs[0].Body.IsStatic() {
		t.Error("missed layer should be dynamic")
	}
	if g.State().Score != 0 {
		t.Errorf("Score = %d, expected 0", g.State().Score)
	}

	// Drops after a miss are ignored.
	g.Drop()
	if g.Phase() != StateEnded || len(g.ledger.Overhangs()) != 1 {
		t.Error("drop while ended should be a no-op")
	}
}

func TestMissClassification(t *testing.T) {
	cfg := config.DefaultStackConfig()

	tests := []struct {
		name    string
		pos     float64
		miss    bool
		perfect bool
	}{
		{"zero overlap", 3, true, false},
		{"negative overlap", -3.5, true, false},
		{"partial overlap", 1, false, false},
		{"zero offset", 0, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			space := NewSpace(cfg)
			below := &Layer{Pair: space.NewPair(core.Vec3{}, 3, 3, false, core.ColorWhite), Axis: core.AxisZ}
			top := &Layer{Pair: space.NewPair(core.V3(tc.pos, 1, 0), 3, 3, false, core.ColorGray), Axis: core.AxisX}

			c := Measure(top, below)
			if c.Miss() != tc.miss {
				t.Errorf("Miss() = %v, expected %v (overlap %f)", c.Miss(), tc.miss, c.Overlap)
			}
			if c.Perfect() != tc.perfect {
				t.Errorf("Perfect() = %v, expected %v", c.Perfect(), tc.perfect)
			}
			if tc.perfect && c.Overlap != 3 {
				t.Errorf("perfect overlap = %f, expected full extent", c.Overlap)
			}
		})
	}
}

func TestPerfectDropSpawnsNoOverhang(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 0)
	placed := g.ledger.Top()

	g.Drop()

	if n := len(g.ledger.Overhangs()); n != 0 {
		t.Errorf("perfect drop should not spawn overhangs, got %d", n)
	}
	if placed.Width != 3 || placed.Depth != 3 {
		t.Errorf("perfect drop should keep full extents, got %fx%f", placed.Width, placed.Depth)
	}
	if g.State().Score != 1 || g.Perfects() != 1 {
		t.Errorf("Score = %d, Perfects = %d, expected 1 and 1", g.State().Score, g.Perfects())
	}

	// The physics keeps producing finite numbers afterwards.
	for i := 0; i < 300; i++ {
		g.Step(core.NewInputFrame())
	}
	for _, b := range g.space.World.Bodies() {
		if !b.Position.IsFinite() {
			t.Fatalf("body position became non-finite: %+v", b.Position)
		}
	}
	for _, m := range g.space.Scene.Meshes() {
		if !m.Position.IsFinite() || !m.Extents().IsFinite() {
			t.Fatalf("mesh transform became non-finite: %+v", m)
		}
	}
}

func TestDropSequenceProperties(t *testing.T) {
	g := newRunning(t)
	rng := rand.New(rand.NewSource(7))

	const drops = 12
	prevW, prevD := 3.0, 3.0
	prevAxis := g.ledger.Top().Axis

	for k := 1; k <= drops; k++ {
		top, below, _ := g.ledger.Active()
		axis := top.Axis
		original := top.Extent(axis)

		// Offsets stay well inside the overlap so every drop lands.
		offset := (rng.Float64() - 0.5) * 0.3 * original
		moveTop(g, below.Position().Component(axis)+offset)
		overhangsBefore := len(g.ledger.Overhangs())

		g.Drop()

		if g.Phase() != StateRunning {
			t.Fatalf("drop %d unexpectedly missed", k)
		}
		if g.State().Score != k {
			t.Errorf("after %d drops Score = %d", k, g.State().Score)
		}

		retained := top.Extent(axis)
		cut := 0.0
		if len(g.ledger.Overhangs()) > overhangsBefore {
			cut = g.ledger.Overhangs()[overhangsBefore].Extent(axis)
		}
		if math.Abs(retained+cut-original) > eps {
			t.Errorf("drop %d: retained %f + overhang %f != original %f", k, retained, cut, original)
		}

		if top.Width > prevW+eps || top.Depth > prevD+eps {
			t.Errorf("drop %d: extents grew to %fx%f from %fx%f", k, top.Width, top.Depth, prevW, prevD)
		}
		prevW, prevD = top.Width, top.Depth

		next := g.ledger.Top()
		if next.Axis == prevAxis {
			t.Errorf("drop %d: axis did not alternate (%v)", k, next.Axis)
		}
		prevAxis = next.Axis
	}
}

func TestScoreFrozenAfterMiss(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 0.5)
	g.Drop()
	moveTop(g, 0.2)
	g.Drop()
	if g.State().Score != 2 {
		t.Fatalf("Score = %d, expected 2", g.State().Score)
	}

	moveTop(g, 8)
	g.Drop()
	for i := 0; i < 120; i++ {
		in := core.NewInputFrame()
		in.Set(core.ActionDrop)
		g.Step(in)
	}
	if g.State().Score != 2 || !g.State().GameOver {
		t.Errorf("score should stay 2 after a miss, got %+v", g.State())
	}
}

// snapshot captures what a fresh run must look like.
type snapshot struct {
	layers    int
	overhangs int
	bodies    int
	meshes    int
	score     int
	state     State
	camera    render.Camera
	top       core.Vec3
	ticks     int
	clock     float64
	precision float64
}

func takeSnapshot(g *Game) snapshot {
	return snapshot{
		layers:    g.ledger.Len(),
		overhangs: len(g.ledger.Overhangs()),
		bodies:    len(g.space.World.Bodies()),
		meshes:    g.space.Scene.Len(),
		score:     g.State().Score,
		state:     g.Phase(),
		camera:    g.Camera(),
		top:       g.ledger.Top().Position(),
		ticks:     g.ticks,
		clock:     g.clock,
		precision: g.pilot.Precision,
	}
}

func TestRestartIdempotence(t *testing.T) {
	fresh := takeSnapshot(newRunning(t))

	tests := []struct {
		name  string
		setup func(g *Game)
	}{
		{"mid demo", func(g *Game) {
			g.Reset(testRuntime(42))
			for i := 0; i < 400; i++ {
				g.Step(core.NewInputFrame())
			}
		}},
		{"running", func(g *Game) {
			moveTop(g, 0.7)
			g.Drop()
			for i := 0; i < 30; i++ {
				g.Step(core.NewInputFrame())
			}
		}},
		{"ended", func(g *Game) {
			moveTop(g, 0.7)
			g.Drop()
			moveTop(g, -9)
			g.Drop()
		}},
		{"restarted twice", func(g *Game) {
			g.Start()
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newRunning(t)
			tc.setup(g)

			in := core.NewInputFrame()
			in.Set(core.ActionRestart)
			g.Step(in)

			if got := takeSnapshot(g); got != fresh {
				t.Errorf("restart state differs:\n got %+v\nwant %+v", got, fresh)
			}
			if g.State().Demo {
				t.Error("restart should turn the autopilot off")
			}
		})
	}
}

func TestFirstFrameSynchronizes(t *testing.T) {
	g := newRunning(t)
	start := g.ledger.Top().Position().X

	g.Frame(5000)
	if x := g.ledger.Top().Position().X; x != start {
		t.Errorf("first frame moved the layer from %f to %f", start, x)
	}

	g.Frame(5100)
	if x := g.ledger.Top().Position().X; !near(x, start+0.8) {
		t.Errorf("after 100ms X = %f, expected %f", x, start+0.8)
	}

	// A restart needs a new baseline.
	g.Start()
	g.Frame(9000)
	if x := g.ledger.Top().Position().X; x != start {
		t.Errorf("first frame after restart moved the layer to %f", x)
	}
}

func TestRunawaySlideMisses(t *testing.T) {
	g := newRunning(t)

	now := 0.0
	for i := 0; i < 1000 && g.Phase() == StateRunning; i++ {
		g.Frame(now)
		now += 100
	}

	if g.Phase() != StateEnded {
		t.Fatalf("runaway slide should end the run, Phase() = %v", g.Phase())
	}
	if len(g.ledger.Overhangs()) != 1 || g.ledger.Len() != 1 {
		t.Errorf("runaway layer should fall whole: %d overhangs, %d layers", len(g.ledger.Overhangs()), g.ledger.Len())
	}
	if x := g.ledger.Overhangs()[0].Body.Position.X; x <= 10 {
		t.Errorf("runaway happened at X = %f, expected past 10", x)
	}
}

func TestOverhangsFollowPhysics(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 1.2)
	g.Drop()
	o := g.ledger.Overhangs()[0]
	y0 := o.Position().Y

	for i := 0; i < 60; i++ {
		g.Step(core.NewInputFrame())
	}

	if o.Position().Y >= y0 {
		t.Errorf("overhang should fall, Y went from %f to %f", y0, o.Position().Y)
	}
	if o.Mesh.Position != o.Body.Position {
		t.Errorf("overhang mesh %+v not synced to body %+v", o.Mesh.Position, o.Body.Position)
	}
}

func TestCameraRisesWithTower(t *testing.T) {
	g := newRunning(t)
	for i := 0; i < 4; i++ {
		moveTop(g, 0)
		g.Drop()
	}
	for i := 0; i < 600; i++ {
		g.Step(core.NewInputFrame())
		if g.Phase() != StateRunning {
			break
		}
	}

	// 6 layers: target height 1*(6-2) + 4.
	if y := g.Camera().Position.Y; !near(y, 8) {
		t.Errorf("camera Y = %f, expected 8", y)
	}
}

func TestDemoDropStartsRun(t *testing.T) {
	g := New().WithConfig(config.DefaultStackConfig())
	if g.Phase() != StateIdle {
		t.Fatalf("new game should be idle, got %v", g.Phase())
	}
	g.Reset(testRuntime(1))

	if g.Phase() != StateDemo || !g.State().Demo {
		t.Fatalf("Reset should start the demo, got %v", g.Phase())
	}

	in := core.NewInputFrame()
	in.Set(core.ActionDrop)
	g.Step(in)

	if g.Phase() != StateRunning || g.State().Demo {
		t.Errorf("drop during demo should start a run, got %v", g.Phase())
	}
	if g.State().Score != 0 || g.ledger.Len() != 2 {
		t.Errorf("new run should be fresh, score %d, %d layers", g.State().Score, g.ledger.Len())
	}
}

func TestAutopilotPlaysDemo(t *testing.T) {
	g := New().WithConfig(config.DefaultStackConfig())
	g.Reset(testRuntime(3))

	for i := 0; i < 400; i++ {
		g.Step(core.NewInputFrame())
	}

	if g.ledger.Len() <= 2 {
		t.Errorf("autopilot should have placed layers, tower has %d", g.ledger.Len())
	}
	if g.Phase() == StateRunning {
		t.Error("autopilot must not switch to a player run")
	}
}

func TestAutopilotDeterminism(t *testing.T) {
	run := func() (int, []core.Vec3) {
		g := New().WithConfig(config.DefaultStackConfig())
		g.Reset(testRuntime(12345))
		for i := 0; i < 1500; i++ {
			g.Step(core.NewInputFrame())
		}
		var pos []core.Vec3
		for _, l := range g.ledger.Layers() {
			pos = append(pos, l.Position())
		}
		return g.ledger.Len(), pos
	}

	n1, p1 := run()
	n2, p2 := run()
	if n1 != n2 {
		t.Fatalf("Determinism failed: tower heights differ. Run1=%d, Run2=%d", n1, n2)
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Errorf("Determinism failed: layer %d at %+v vs %+v", i, p1[i], p2[i])
		}
	}
}

func TestAutopilotReached(t *testing.T) {
	space := NewSpace(config.DefaultStackConfig())
	below := &Layer{Pair: space.NewPair(core.V3(0.5, 0, 0), 3, 3, false, core.ColorWhite), Axis: core.AxisZ}
	top := &Layer{Pair: space.NewPair(core.V3(0, 1, 0), 3, 3, false, core.ColorGray), Axis: core.AxisX}

	a := NewAutopilot(1, 1)
	a.Precision = 0.25
	if a.Reached(top, below) {
		t.Error("0 should be short of 0.5 + 0.25")
	}
	top.ShiftAlongAxis(core.AxisX, 0.75)
	if !a.Reached(top, below) {
		t.Error("0.75 should reach 0.5 + 0.25")
	}

	for i := 0; i < 1000; i++ {
		a.Reroll()
		if a.Precision < -0.5 || a.Precision >= 0.5 {
			t.Fatalf("precision %f outside [-0.5, 0.5)", a.Precision)
		}
	}
}

func TestPauseFreezesSlide(t *testing.T) {
	g := newRunning(t)
	g.Step(core.NewInputFrame())

	in := core.NewInputFrame()
	in.Set(core.ActionPause)
	g.Step(in)
	x := g.ledger.Top().Position().X
	for i := 0; i < 30; i++ {
		g.Step(core.NewInputFrame())
	}
	if g.ledger.Top().Position().X != x || !g.State().Paused {
		t.Error("paused game should not move")
	}
}

func TestRushSpeedsUp(t *testing.T) {
	g := NewRush().WithConfig(config.DefaultStackConfig())
	g.Reset(testRuntime(1))
	g.Start()

	base := g.speed()
	g.score = 20
	if g.speed() <= base {
		t.Errorf("rush speed should grow with score: %f <= %f", g.speed(), base)
	}

	classic := newRunning(t)
	classic.score = 20
	if classic.speed() != config.DefaultStackConfig().Motion.Speed {
		t.Error("classic speed should stay constant")
	}
}

func TestRestartResetsRushSpeed(t *testing.T) {
	cfg := config.DefaultStackConfig()
	cfg.Difficulty = config.DifficultyConfig{
		Enabled:     true,
		Progression: config.ProgressionConfig{Type: "time", MaxAt: 600},
		Scaling:     config.ScalingConfig{SpeedMultiplier: 1},
	}
	g := NewRush().WithConfig(cfg)
	g.Reset(testRuntime(1))

	// Demo frames do not count towards the first run.
	for i := 0; i < 300; i++ {
		g.Step(core.NewInputFrame())
	}
	g.Start()
	fresh := g.speed()
	if !near(fresh, cfg.Motion.Speed) {
		t.Errorf("speed of a new run = %f, expected %f", fresh, cfg.Motion.Speed)
	}

	for i := 0; i < 300; i++ {
		g.Step(core.NewInputFrame())
	}
	if g.speed() <= fresh {
		t.Fatalf("time progression should speed up the run: %f <= %f", g.speed(), fresh)
	}

	g.Start()
	if got := g.speed(); !near(got, fresh) {
		t.Errorf("speed after restart = %f, expected %f", got, fresh)
	}
}

func TestRestartRerollsAutopilot(t *testing.T) {
	g := New().WithConfig(config.DefaultStackConfig())
	g.Reset(testRuntime(7))
	first := g.pilot.Precision

	for i := 0; i < 2000; i++ {
		g.Step(core.NewInputFrame())
	}
	g.Start()
	if g.pilot.Precision != first {
		t.Errorf("precision after restart = %f, expected the seeded %f", g.pilot.Precision, first)
	}
}

func TestLayersSnapshotSurvivesRestart(t *testing.T) {
	g := newRunning(t)
	before := g.ledger.Layers()
	seed := before[1]

	g.Start()
	if before[1] != seed {
		t.Error("restart overwrote a previously returned layer slice")
	}
	if g.ledger.Layers()[1] == seed {
		t.Error("restart should seed a new moving layer")
	}
}

func TestNewPairRejectsDegenerateExtents(t *testing.T) {
	space := NewSpace(config.DefaultStackConfig())
	for _, ext := range [][2]float64{{0, 3}, {3, 0}, {-1, 3}, {math.NaN(), 3}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewPair(%v) should panic", ext)
				}
			}()
			space.NewPair(core.Vec3{}, ext[0], ext[1], true, core.ColorWhite)
		}()
	}
}

func TestRenderShowsScore(t *testing.T) {
	g := newRunning(t)
	moveTop(g, 0.3)
	g.Drop()

	dst := core.NewScreen(80, 24)
	g.Render(dst)

	if row := dst.Row(0); !strings.Contains(row, "Score: 1") {
		t.Errorf("HUD row = %q, expected score", row)
	}
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{IDClassic, IDRush} {
		if !registry.Exists(id) {
			t.Errorf("game %q should be registered", id)
		}
	}
}
