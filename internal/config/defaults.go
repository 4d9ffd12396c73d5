package config

import (
	_ "embed"
)

//go:embed defaults/stack.yaml
var defaultStackYAML []byte

// DefaultStackConfig returns the default stacking game configuration.
func DefaultStackConfig() StackConfig {
	return StackConfig{
		Block: StackBlock{
			Height:   1,
			Size:     3,
			BaseMass: 5,
		},
		Motion: StackMotion{
			Speed:       0.008,
			TravelBound: 10,
			Spawn:       -10,
		},
		Physics: StackPhysics{
			Gravity:    -10,
			Iterations: 40,
			KillPlane:  -40,
		},
		Autopilot: StackAutopilot{
			PrecisionRange: 1,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 40,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 1.5,
			},
		},
		Leaderboard: LeaderboardConfig{
			TimeoutMS: 5000,
		},
	}
}
