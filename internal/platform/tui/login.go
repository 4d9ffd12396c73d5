package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/hyperstack/internal/config"
	"github.com/vovakirdan/hyperstack/internal/leaderboard"
)

// loginMsg carries the answer of the account service.
type loginMsg struct {
	player leaderboard.Player
	err    error
}

func loginCmd(board leaderboard.Board, username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := board.Login(ctx, username)
		return loginMsg{player: p, err: err}
	}
}

// LoginModel asks for a username and registers it with the leaderboard.
// Without a board the name is only checked locally. Esc plays as a guest,
// whose scores are never submitted.
type LoginModel struct {
	input       textinput.Model
	board       leaderboard.Board
	profilePath string
	width       int
	height      int
	errs        []string
	pending     bool
	done        bool
	player      string
	quitting    bool
}

// NewLoginModel creates the login screen, prefilled with username.
// A non-empty profilePath remembers the accepted name there.
func NewLoginModel(board leaderboard.Board, profilePath, username string, width, height int) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "username"
	ti.CharLimit = leaderboard.MaxUsernameLen
	ti.Width = leaderboard.MaxUsernameLen + 1
	ti.Prompt = "> "
	ti.SetValue(username)
	ti.Focus()

	return LoginModel{
		input:       ti,
		board:       board,
		profilePath: profilePath,
		width:       width,
		height:      height,
	}
}

// Init starts the cursor blink.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login screen.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginMsg:
		m.pending = false
		if msg.err != nil {
			m.errs = []string{loginError(msg.err)}
			return m, nil
		}
		m.accept(msg.player.Username)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, nil
		case "esc":
			m.done = true
			m.player = ""
			return m, nil
		case "enter":
			if m.pending {
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	name, errs := leaderboard.ValidateUsername(m.input.Value())
	if len(errs) > 0 {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	if m.board == nil {
		m.accept(name)
		return m, nil
	}
	m.pending = true
	return m, loginCmd(m.board, name)
}

func (m *LoginModel) accept(name string) {
	m.player = name
	m.done = true
	if m.profilePath != "" {
		//nolint:errcheck // Best-effort, the player can type the name again
		config.SaveProfile(m.profilePath, config.Profile{Username: name})
	}
}

func loginError(err error) string {
	if errors.Is(err, leaderboard.ErrInvalid) {
		return strings.TrimPrefix(err.Error(), leaderboard.ErrInvalid.Error()+": ")
	}
	return "could not reach the leaderboard: " + err.Error()
}

// View renders the login screen.
func (m LoginModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	top := max(1, m.height/4)
	b.WriteString(strings.Repeat("\n", top))
	b.WriteString(centerText(titleStyle.Render("H Y P E R S T A C K"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter a username (3-20 letters, digits or _)", m.width))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(m.input.View())
	b.WriteString(centerText(box, m.width))
	b.WriteString("\n\n")

	switch {
	case m.pending:
		b.WriteString(centerText(mutedStyle.Render("Logging in..."), m.width))
		b.WriteString("\n")
	case len(m.errs) > 0:
		for _, e := range m.errs {
			b.WriteString(centerText(errStyle.Render(e), m.width))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(centerText(mutedStyle.Render("Enter: Play  |  Esc: Play as guest  |  Ctrl+C: Quit"), m.width))
	return b.String()
}

// Done reports whether the screen finished, with Player set or as a guest.
func (m LoginModel) Done() bool {
	return m.done
}

// Player returns the accepted username, empty for guests.
func (m LoginModel) Player() string {
	return m.player
}

// IsQuitting returns true if the user wants to quit.
func (m LoginModel) IsQuitting() bool {
	return m.quitting
}

// Errors returns the messages currently shown.
func (m LoginModel) Errors() []string {
	return m.errs
}
