package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/registry"
)

// scoreSavedMsg reports the background submission of a finished run.
type scoreSavedMsg leaderboard.Result

// Options wires a game view to the leaderboard.
type Options struct {
	Board    leaderboard.Board     // nil plays offline
	Notifier *leaderboard.Notifier // submits finished runs; nil disables
}

// Model is the Bubble Tea model for one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	tickGen    uint64
	overlay    *ScoreboardModel
	status     string
	quitting   bool
	backToMenu bool
	scoreSaved bool // Whether the score was handed to the notifier for this run
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, opts Options, cfg core.RuntimeConfig) Model {
	cfg = cfg.WithDefaults(time.Now())
	if opts.Notifier != nil {
		opts.Notifier.Arm()
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		tickGen:    nextTickGen(),
	}
}

// Init resets the game, which starts the autopilot demo, and starts ticking.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate, m.tickGen)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		return m.handleResize(wsm)
	}
	if saved, ok := msg.(scoreSavedMsg); ok {
		return m.handleScoreSaved(saved)
	}
	if tick, ok := msg.(TickMsg); ok {
		return m.handleTick(tick)
	}

	if m.overlay != nil {
		return m.updateOverlay(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if action := m.keyMapper.MapMouse(msg); action != core.ActionNone {
			m.inputFrame.Set(action)
		}
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.status = m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		return m, nil
	case action == core.ActionLeaderboard:
		return m.openOverlay()
	case action == core.ActionBack:
		m.backToMenu = true
		return m, nil
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}
	return m, nil
}

func (m Model) openOverlay() (tea.Model, tea.Cmd) {
	sb := NewScoreboardModel(m.opts.Board, m.game.ID(), m.config.Player, m.config.ScreenW, m.config.ScreenH)
	cmd := sb.load()
	m.overlay = &sb
	return m, cmd
}

func (m Model) updateOverlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.overlay.Update(msg)
	sb := next.(ScoreboardModel)
	switch {
	case sb.IsQuitting():
		m.quitting = true
		m.overlay = nil
		return m, nil
	case sb.IsGoingBack():
		m.overlay = nil
		return m, nil
	}
	m.overlay = &sb
	return m, cmd
}

// handleResize follows the terminal size. The simulation does not depend
// on the screen, so the run continues.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if m.overlay != nil {
		next, _ := m.overlay.Update(msg)
		sb := next.(ScoreboardModel)
		m.overlay = &sb
	}
	return m, nil
}

// handleTick advances the simulation one frame and submits finished runs.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.tickGen || m.quitting || m.backToMenu {
		return m, nil
	}
	next := tickCmd(m.config.TickRate, m.tickGen)

	// The game stands still while the leaderboard is open.
	if m.overlay != nil {
		return m, next
	}

	result := m.game.Step(m.inputFrame)
	m.inputFrame.Clear()

	prev := m.gameState
	m.gameState = result.State

	// A new run re-arms the notifier.
	if prev.GameOver && !m.gameState.GameOver {
		m.scoreSaved = false
		m.status = ""
		if m.opts.Notifier != nil {
			m.opts.Notifier.Arm()
		}
	}

	if cmd := m.maybeSubmit(); cmd != nil {
		return m, tea.Batch(next, cmd)
	}
	return m, next
}

// maybeSubmit hands a finished player run with a positive score to the
// notifier, once per run.
func (m *Model) maybeSubmit() tea.Cmd {
	st := m.gameState
	if !st.GameOver || st.Demo || m.scoreSaved || st.Score <= 0 {
		return nil
	}
	m.scoreSaved = true
	if m.opts.Notifier == nil || m.config.Player == "" {
		return nil
	}

	ch := m.opts.Notifier.Notify(m.config.Player, m.game.ID(), st.Score)
	m.status = "Saving score..."
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return scoreSavedMsg(res)
	}
}

func (m Model) handleScoreSaved(msg scoreSavedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err == nil:
		m.status = fmt.Sprintf("Score %d saved", msg.Entry.Score)
	case errors.Is(msg.Err, leaderboard.ErrInvalid):
		m.status = "Score rejected"
	default:
		m.status = "Offline: score not saved"
	}
	return m, nil
}

// saveScreenshot writes the current screen to ~/.hyperstack/screenshots and
// returns a status line.
func (m *Model) saveScreenshot() string {
	m.game.Render(m.screen)

	dir := filepath.Join(config.AppDir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "Screenshot failed"
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%s.txt", m.game.ID(), timestamp, uuid.NewString()[:8])
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "Screenshot failed"
	}
	return "Saved " + filename
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.overlay != nil {
		return m.overlay.View()
	}

	m.game.Render(m.screen)
	if m.status != "" && m.screen.Height() > 1 {
		m.screen.DrawTextColored(1, m.screen.Height()-1, m.status, core.ColorGray)
	}
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// GameState returns the state seen at the last tick.
func (m Model) GameState() core.GameState {
	return m.gameState
}

// Status returns the transient status line.
func (m Model) Status() string {
	return m.status
}

// standaloneModel quits the program when the game view closes.
type standaloneModel struct {
	Model
}

func (s standaloneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.Model.Update(msg)
	s.Model = next.(Model)
	if s.IsQuitting() || s.BackToMenu() {
		return s, tea.Quit
	}
	return s, cmd
}

// Run plays one game full screen until the player quits.
func Run(game registry.Game, opts Options, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		standaloneModel{NewModel(game, opts, cfg)},
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
