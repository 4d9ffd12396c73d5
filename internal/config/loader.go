package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppDirName is the per-user directory under $HOME.
const AppDirName = ".hyperstack"

// LoadStack loads the stacking game configuration.
// Search order: customPath -> ~/.hyperstack/configs/stack.yaml -> ./configs/stack.yaml -> embedded default
func LoadStack(customPath string) (StackConfig, error) {
	cfg := DefaultStackConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("stack.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "stack.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultStackYAML, &cfg); err != nil {
		return DefaultStackConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ApplyStackPreset modifies the config based on a difficulty preset.
func ApplyStackPreset(cfg *StackConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Precision of the demo player follows the preset too
	switch preset {
	case DifficultyEasy:
		cfg.Autopilot.PrecisionRange = 0.6
	case DifficultyHard:
		cfg.Autopilot.PrecisionRange = 1.4
	}
}

// AppDir returns ~/.hyperstack, or empty if home is unavailable.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, AppDirName)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := AppDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}
