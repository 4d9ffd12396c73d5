// Package stack implements HyperStack, a tower stacking game.
// A block slides over the tower and the player drops it; the part that
// overlaps the block below stays, the rest falls off. Missing entirely
// ends the run.
package stack

import (
	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/registry"
	"github.com/vovakirdan/hyperstack/internal/render"
)

// Game IDs.
const (
	IDClassic = "stack"
	IDRush    = "stack_rush"
)

// State is the run lifecycle.
type State int

const (
	StateIdle    State = iota // nothing built yet
	StateDemo                 // autopilot is playing
	StateRunning              // player is playing
	StateEnded                // missed, waiting for a restart
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDemo:
		return "Demo"
	case StateRunning:
		return "Running"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// configPath stores the custom config path set via CLI
var configPath string
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	switch preset {
	case "easy":
		difficultyPreset = config.DifficultyEasy
	case "normal":
		difficultyPreset = config.DifficultyNormal
	case "hard":
		difficultyPreset = config.DifficultyHard
	case "fixed":
		difficultyPreset = config.DifficultyFixed
	default:
		difficultyPreset = "" // Use config default
	}
}

// Game is one HyperStack session. It owns the tower, the falling blocks,
// the camera and the clock; nothing here is shared between sessions.
type Game struct {
	id    string
	title string
	rush  bool

	cfg        config.StackConfig
	fixedCfg   bool
	runtime    core.RuntimeConfig
	difficulty *config.DifficultyManager

	space     *Space
	ledger    Ledger
	camera    render.Camera
	projector *render.Projector
	pilot     *Autopilot

	state      State
	autopilot  bool
	paused     bool
	score      int
	placements int
	perfects   int

	synced   bool    // first frame after a (re)start only records the time
	lastTime float64 // ms
	clock    float64 // virtual ms advanced by Step
	ticks    int
}

// New creates the classic game, configured on Reset.
func New() *Game {
	return &Game{id: IDClassic, title: "HyperStack"}
}

// NewRush creates the variant whose slide speed grows with the score.
func NewRush() *Game {
	return &Game{id: IDRush, title: "HyperStack Rush", rush: true}
}

// WithConfig pins the configuration instead of loading it on Reset.
func (g *Game) WithConfig(cfg config.StackConfig) *Game {
	g.cfg = cfg
	g.fixedCfg = true
	return g
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return g.title
}

// Reset configures the game and starts the autopilot demo.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	if !g.fixedCfg {
		cfg, err := config.LoadStack(configPath)
		if err != nil {
			cfg = config.DefaultStackConfig()
		}
		if difficultyPreset != "" {
			config.ApplyStackPreset(&cfg, difficultyPreset)
		}
		g.cfg = cfg
	}

	g.runtime = runtime
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)
	g.space = NewSpace(g.cfg)
	g.ledger = Ledger{}
	g.camera = render.NewCamera()
	g.projector = render.NewProjector()

	g.begin(true)
}

// Start begins a player run from scratch. It is the restart command and is
// valid from any state.
func (g *Game) Start() {
	if g.space == nil {
		g.Reset(g.runtime)
	}
	g.begin(false)
}

// begin discards the current tower and seeds a new one.
func (g *Game) begin(demo bool) {
	g.ledger.Reset()
	g.space.Clear()
	g.camera.Reset()

	g.autopilot = demo
	g.paused = false
	g.score = 0
	g.placements = 0
	g.perfects = 0
	g.synced = false
	g.lastTime = 0
	g.clock = 0
	g.ticks = 0
	// Every run replays the same autopilot offsets for a given seed.
	g.pilot = NewAutopilot(g.runtime.Seed, g.cfg.Autopilot.PrecisionRange)
	if demo {
		g.state = StateDemo
	} else {
		g.state = StateRunning
	}

	size := g.cfg.Block.Size
	h := g.cfg.Block.Height
	g.addLayer(Slab{Position: core.Vec3{}, Width: size, Depth: size, Axis: core.AxisZ})
	g.addLayer(Slab{Position: core.V3(g.cfg.Motion.Spawn, h, 0), Width: size, Depth: size, Axis: core.AxisX})
}

// Drop is the player's drop command. During the demo it starts a run
// instead; after a player miss it does nothing.
func (g *Game) Drop() {
	switch g.state {
	case StateIdle, StateDemo:
		g.Start()
	case StateRunning:
		if !g.paused {
			g.split()
		}
	case StateEnded:
		if g.autopilot {
			g.Start()
		}
	}
}

// split measures the moving layer against the one below and either places
// it or ends the run.
func (g *Game) split() {
	if g.state != StateRunning && g.state != StateDemo {
		return
	}
	top, below, ok := g.ledger.Active()
	if !ok {
		return
	}

	cut := Measure(top, below)
	if cut.Miss() {
		g.miss()
		return
	}

	if rest, ok := cut.Apply(top, g.cfg.Block.Height); ok {
		o := g.space.NewPair(rest.Position, rest.Width, rest.Depth, true, core.LayerColor(g.ledger.Len()))
		g.ledger.AddOverhang(o)
	} else {
		g.perfects++
	}

	g.score = g.ledger.Len() - 1
	g.placements++
	g.addLayer(Next(top, g.cfg.Motion.Spawn, g.cfg.Block.Height*float64(g.ledger.Len())))
}

// miss drops the whole moving layer and ends the run.
func (g *Game) miss() {
	top := g.ledger.Pop()
	if top == nil {
		return
	}
	top.MakeDynamic()
	g.ledger.AddOverhang(top.Pair)
	g.state = StateEnded
}

func (g *Game) addLayer(s Slab) {
	color := core.LayerColor(g.ledger.Len())
	p := g.space.NewPair(s.Position, s.Width, s.Depth, false, color)
	g.ledger.Push(&Layer{Pair: p, Axis: s.Axis})
}

// Step advances the game by one tick of the virtual clock.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.space == nil {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRestart) {
		g.Start()
	}
	if in.Has(core.ActionPause) && g.state == StateRunning {
		g.paused = !g.paused
	}
	if in.Has(core.ActionDrop) {
		g.Drop()
	}

	if !g.paused {
		g.ticks++
		g.clock += g.runtime.FrameMillis()
		g.Frame(g.clock)
	}
	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.state == StateEnded,
		Paused:   g.paused,
		Demo:     g.autopilot,
	}
}

// Phase returns the lifecycle state.
func (g *Game) Phase() State {
	return g.state
}

// Ledger exposes the tower for inspection.
func (g *Game) Ledger() *Ledger {
	return &g.ledger
}

// Perfects returns the number of drops with no offset in this run.
func (g *Game) Perfects() int {
	return g.perfects
}

// Placements returns the number of successful drops in this run.
func (g *Game) Placements() int {
	return g.placements
}

// Camera returns the current view.
func (g *Game) Camera() render.Camera {
	return g.camera
}

// Register the game variants with the registry
func init() {
	registry.Register(IDClassic, "HyperStack", func() registry.Game {
		return New()
	})
	registry.Register(IDRush, "HyperStack Rush", func() registry.Game {
		return NewRush()
	})
}
