package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/registry"
)

type stage int

const (
	stageLogin stage = iota
	stageMenu
	stageScoreboard
	stageGame
)

// SessionOptions configures a full session.
type SessionOptions struct {
	Options
	ProfilePath string // remembers the player; empty disables
	Username    string // prefilled login name
	SkipLogin   bool   // start at the menu as Username
}

// SessionModel manages the full session flow: login -> menu -> game -> menu.
// This is the top-level model used for local play and SSH sessions.
type SessionModel struct {
	opts       SessionOptions
	config     core.RuntimeConfig
	stage      stage
	login      LoginModel
	menu       MenuModel
	scoreboard ScoreboardModel
	gameModel  Model
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions, cfg core.RuntimeConfig) SessionModel {
	m := SessionModel{
		opts:   opts,
		config: cfg,
	}
	if opts.SkipLogin {
		m.config.Player = opts.Username
		m.stage = stageMenu
		m.menu = NewMenuModel(m.config)
	} else {
		m.stage = stageLogin
		m.login = NewLoginModel(opts.Board, opts.ProfilePath, opts.Username, cfg.ScreenW, cfg.ScreenH)
	}
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.stage == stageLogin {
		return m.login.Init()
	}
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.stage {
	case stageLogin:
		return m.updateLogin(msg)
	case stageScoreboard:
		return m.updateScoreboard(msg)
	case stageGame:
		return m.updateGame(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.login.Update(msg)
	m.login = next.(LoginModel)

	switch {
	case m.login.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.login.Done():
		m.config.Player = m.login.Player()
		m.stage = stageMenu
		m.menu = NewMenuModel(m.config)
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.IsGoingBack():
		m.stage = stageLogin
		m.login = NewLoginModel(m.opts.Board, m.opts.ProfilePath, m.config.Player, m.config.ScreenW, m.config.ScreenH)
		return m, m.login.Init()

	case m.menu.WantsScoreboard():
		m.stage = stageScoreboard
		m.scoreboard = NewScoreboardModel(m.opts.Board, m.menu.Cursor(), m.config.Player, m.config.ScreenW, m.config.ScreenH)
		return m, m.scoreboard.load()

	case m.menu.Selected() != nil:
		game, err := registry.Create(m.menu.Selected().GameID)
		if err != nil {
			// Shouldn't happen since menu only shows registered games
			m.menu = NewMenuModel(m.config)
			return m, nil
		}
		m.config.Seed = time.Now().UnixNano()
		m.gameModel = NewModel(game, m.opts.Options, m.config)
		m.stage = stageGame
		return m, m.gameModel.Init()
	}

	return m, cmd
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	m.scoreboard = next.(ScoreboardModel)

	switch {
	case m.scoreboard.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scoreboard.IsGoingBack():
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.gameModel.Update(msg)
	m.gameModel = next.(Model)

	switch {
	case m.gameModel.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.gameModel.BackToMenu():
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.stage = stageMenu
	m.menu = NewMenuModel(m.config)
	return m, nil
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.stage {
	case stageLogin:
		return m.login.View()
	case stageScoreboard:
		return m.scoreboard.View()
	case stageGame:
		return m.gameModel.View()
	}
	return m.menu.View()
}

// Player returns the logged-in username, empty for guests.
func (m SessionModel) Player() string {
	return m.config.Player
}

// RunSession runs the full flow locally.
func RunSession(opts SessionOptions, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(opts, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// NewSessionOptions wires board to a fresh notifier. Sessions must not share
// notifiers.
func NewSessionOptions(board leaderboard.Board, logger *log.Logger) Options {
	if board == nil {
		return Options{}
	}
	return Options{
		Board:    board,
		Notifier: leaderboard.NewNotifier(board, leaderboard.DefaultTimeout, logger),
	}
}
