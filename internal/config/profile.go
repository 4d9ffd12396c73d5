package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is what the CLI remembers about the local player.
type Profile struct {
	Username string `yaml:"username"`
}

// ProfilePath returns ~/.hyperstack/profile.yaml, or empty if home is unavailable.
func ProfilePath() string {
	dir := AppDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "profile.yaml")
}

// LoadProfile reads the profile at path. A missing file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// SaveProfile writes the profile to path, creating the directory.
func SaveProfile(path string, p Profile) error {
	if path == "" {
		return errors.New("no profile path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", path, err)
	}
	return nil
}

// ClearProfile forgets the remembered player.
func ClearProfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove profile %s: %w", path, err)
	}
	return nil
}
