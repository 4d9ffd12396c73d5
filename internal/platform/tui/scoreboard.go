package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/hyperstack/internal/leaderboard"
	"github.com/vovakirdan/hyperstack/internal/registry"
)

// Scoreboard layout constants
const (
	maxScores    = 100 // Max rows fetched
	fetchTimeout = 5 * time.Second
)

// ScoreboardKeyMap defines the key bindings for the leaderboard view.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextGame key.Binding
	PrevGame key.Binding
	Refresh  key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextGame, k.Refresh, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextGame, k.PrevGame},
		{k.Refresh, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextGame: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "next mode"),
		),
		PrevGame: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("S-tab", "prev mode"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("f5", "ctrl+r"),
			key.WithHelp("f5", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "l"),
			key.WithHelp("esc/l", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// leaderboardMsg carries a finished fetch.
type leaderboardMsg struct {
	gameID  string
	entries []leaderboard.Entry
	err     error
}

// fetchLeaderboardCmd loads the global leaderboard of one game.
func fetchLeaderboardCmd(board leaderboard.Board, gameID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		entries, err := board.Global(ctx, gameID, maxScores)
		return leaderboardMsg{gameID: gameID, entries: entries, err: err}
	}
}

// ScoreboardModel shows each player's best score per game mode.
// It is used as an overlay by the game view and standalone by the CLI.
type ScoreboardModel struct {
	games      []registry.GameInfo
	gameCursor int
	board      leaderboard.Board
	player     string
	entries    []leaderboard.Entry
	loading    bool
	err        error
	table      table.Model
	help       help.Model
	keys       ScoreboardKeyMap
	width      int
	height     int
	quitting   bool
	goingBack  bool
}

// NewScoreboardModel creates a leaderboard view starting on gameID.
// player, when set, is highlighted in the table.
func NewScoreboardModel(board leaderboard.Board, gameID, player string, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false
	h.Width = width

	m := ScoreboardModel{
		games:  registry.List(),
		board:  board,
		player: player,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	for i, g := range m.games {
		if g.ID == gameID {
			m.gameCursor = i
		}
	}
	m.table = m.createTable()
	return m
}

// createTable creates a new table sized to the view.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 20},
		{Title: "Score", Width: 8},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-9)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) currentGame() string {
	if len(m.games) == 0 {
		return ""
	}
	return m.games[m.gameCursor].ID
}

// load starts a fetch for the selected game.
func (m *ScoreboardModel) load() tea.Cmd {
	if m.board == nil {
		m.entries = nil
		m.err = fmt.Errorf("leaderboard unavailable offline")
		m.updateTableRows()
		return nil
	}
	m.loading = true
	m.err = nil
	return fetchLeaderboardCmd(m.board, m.currentGame())
}

// updateTableRows updates the table with current entries.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.entries))
	cursor := 0
	for i, e := range m.entries {
		name := e.Username
		if e.Username == m.player {
			name = "> " + name
			cursor = i
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			name,
			fmt.Sprintf("%d", e.Score),
			e.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(cursor)
}

// Init starts the first fetch.
func (m ScoreboardModel) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the leaderboard view.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case leaderboardMsg:
		if msg.gameID != m.currentGame() {
			return m, nil // stale
		}
		m.loading = false
		m.err = msg.err
		m.entries = msg.entries
		if msg.err != nil {
			m.entries = nil
		}
		m.updateTableRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor + 1) % len(m.games)
				return m, m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor - 1 + len(m.games)) % len(m.games)
				return m, m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the leaderboard.
func (m ScoreboardModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "LEADERBOARD"
	if len(m.games) > 0 {
		title = fmt.Sprintf("LEADERBOARD - %s", m.games[m.gameCursor].Title)
	}
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table, a loading line or the error.
func (m ScoreboardModel) renderTableContent() string {
	muted := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loading && len(m.entries) == 0:
		return muted.Render("Loading...")
	case m.err != nil:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Padding(2, 4).
			Render("Could not load leaderboard:\n" + m.err.Error())
	case len(m.entries) == 0:
		return muted.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}
	return m.table.View()
}

// IsGoingBack returns true if the user closed the view.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if the user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// Entries returns the rows currently shown.
func (m ScoreboardModel) Entries() []leaderboard.Entry {
	return m.entries
}

// Err returns the last fetch error.
func (m ScoreboardModel) Err() error {
	return m.err
}

// standaloneScoreboard quits the program when the view closes.
type standaloneScoreboard struct {
	ScoreboardModel
}

func (s standaloneScoreboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.ScoreboardModel.Update(msg)
	s.ScoreboardModel = next.(ScoreboardModel)
	if s.IsGoingBack() || s.IsQuitting() {
		return s, tea.Quit
	}
	return s, cmd
}

// RunScoreboard shows the leaderboard full screen until closed.
func RunScoreboard(board leaderboard.Board, gameID, player string, width, height int) error {
	model := standaloneScoreboard{NewScoreboardModel(board, gameID, player, width, height)}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
