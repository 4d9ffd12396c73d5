// Package config provides YAML-based game configuration loading,
// difficulty management and the small files the CLI keeps between runs.
package config

// StackConfig contains all configuration for the stacking game.
type StackConfig struct {
	Block       StackBlock        `yaml:"block"`
	Motion      StackMotion       `yaml:"motion"`
	Physics     StackPhysics      `yaml:"physics"`
	Autopilot   StackAutopilot    `yaml:"autopilot"`
	Difficulty  DifficultyConfig  `yaml:"difficulty"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// StackBlock defines block geometry.
type StackBlock struct {
	Height   float64 `yaml:"height"`    // Layer height in world units
	Size     float64 `yaml:"size"`      // Width and depth of the seed layers
	BaseMass float64 `yaml:"base_mass"` // Mass of a full-size falling block
}

// StackMotion defines how the moving layer slides.
type StackMotion struct {
	Speed       float64 `yaml:"speed"`        // World units per millisecond
	TravelBound float64 `yaml:"travel_bound"` // Past this the slide is a miss
	Spawn       float64 `yaml:"spawn"`        // Slide-axis start coordinate
}

// StackPhysics defines physics world parameters.
type StackPhysics struct {
	Gravity    float64 `yaml:"gravity"`
	Iterations int     `yaml:"iterations"`
	KillPlane  float64 `yaml:"kill_plane"`
}

// StackAutopilot defines the demo player.
type StackAutopilot struct {
	PrecisionRange float64 `yaml:"precision_range"` // Full width of the random offset range
}

// LeaderboardConfig points the game at a leaderboard service.
type LeaderboardConfig struct {
	URL       string `yaml:"url"`        // Empty means the local database is used
	TimeoutMS int    `yaml:"timeout_ms"` // Per-request timeout
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Multiplier added to speed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
