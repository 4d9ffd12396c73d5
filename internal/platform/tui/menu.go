package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/hyperstack/internal/core"
	"github.com/vovakirdan/hyperstack/internal/registry"
)

// MenuItem is one game mode of the picker.
type MenuItem struct {
	GameID string
	Title  string
	Blurb  string
}

// modeBlurbs describes the registered modes in the picker.
var modeBlurbs = map[string]string{
	"stack":      "Classic: the block always slides at the same speed",
	"stack_rush": "Rush: every layer makes the block a little faster",
}

// MenuModel picks the game mode to play.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	player         string
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	back           bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel creates a menu of every registered game.
func NewMenuModel(cfg core.RuntimeConfig) MenuModel {
	var items []MenuItem
	for _, g := range registry.List() {
		items = append(items, MenuItem{GameID: g.ID, Title: g.Title, Blurb: modeBlurbs[g.ID]})
	}

	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		player:    cfg.Player,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true

	case MenuActionBack:
		m.back = true

	case MenuActionUp:
		if n := len(m.items); n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}

	case MenuActionDown:
		if n := len(m.items); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}

	case MenuActionLeaderboard:
		m.openScoreboard = true
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", max(1, m.height/6)))
	b.WriteString(centerText(titleStyle.Render("H Y P E R S T A C K"), m.width))
	b.WriteString("\n\n")

	subtitle := "Playing as guest, scores are not recorded"
	if m.player != "" {
		subtitle = fmt.Sprintf("Playing as %s", m.player)
	}
	b.WriteString(centerText(mutedStyle.Render(subtitle), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Title + "  "
		if i == m.cursor {
			line = activeStyle.Render("> " + item.Title + " <")
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if len(m.items) > 0 {
		if blurb := m.items[m.cursor].Blurb; blurb != "" {
			b.WriteString("\n")
			b.WriteString(centerText(mutedStyle.Render(blurb), m.width))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  L: Leaderboard  |  Esc: Log out  |  Q: Quit"
	b.WriteString(centerText(mutedStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// IsGoingBack returns true if user asked to go back to login.
func (m MenuModel) IsGoingBack() bool {
	return m.back
}

// WantsScoreboard returns true if user requested the leaderboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// Cursor returns the highlighted item's game ID.
func (m MenuModel) Cursor() string {
	if len(m.items) == 0 {
		return ""
	}
	return m.items[m.cursor].GameID
}

// centerText centers a possibly styled, possibly multi-line block within width.
func centerText(text string, width int) string {
	if lipgloss.Width(text) >= width {
		return text
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
