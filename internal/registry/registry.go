// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// Game is the interface the platform drives. Implementations contain pure
// logic with no Bubble Tea dependency; the platform handles input mapping,
// timing and display.
type Game interface {
	// ID returns a unique identifier (e.g. "stack"). Used for CLI commands
	// and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset configures the game for a session. Called once when the session
	// starts; restarts go through Step with core.ActionRestart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState
}

// GameInfo describes a registered game variant.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

type entry struct {
	title string
	make  Factory
}

var (
	mu      sync.RWMutex
	entries = map[string]entry{}
)

// Register adds a game variant. Games call it from init(); registering an
// ID twice panics.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, dup := entries[id]; dup {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}
	entries[id] = entry{title: title, make: f}
}

// List returns every registered game, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	ids := slices.Sorted(maps.Keys(entries))
	result := make([]GameInfo, len(ids))
	for i, id := range ids {
		result[i] = GameInfo{ID: id, Title: entries[id].title}
	}
	return result
}

// Title returns the display name of a registered game, or the ID itself.
func Title(id string) string {
	mu.RLock()
	defer mu.RUnlock()

	if e, ok := entries[id]; ok {
		return e.title
	}
	return id
}

// Create returns a fresh instance of the game registered as id.
func Create(id string) (Game, error) {
	mu.RLock()
	e, ok := entries[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return e.make(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
