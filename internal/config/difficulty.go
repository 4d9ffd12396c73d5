package config

// DifficultyManager ramps the slide speed of a run as the tower grows.
type DifficultyManager struct {
	cfg   DifficultyConfig
	start float64 // level of a fresh run
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:   cfg,
		start: clamp01(cfg.InitialLevel),
	}
}

// SetEnabled turns progression on or off. A disabled manager stays at the
// initial level.
func (d *DifficultyManager) SetEnabled(enabled bool) {
	d.cfg.Enabled = enabled
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// progress is the share of the way to max difficulty, in [0, 1].
func (d *DifficultyManager) progress(layers, frames int) float64 {
	span := float64(max(d.cfg.Progression.MaxAt, 1))
	switch d.cfg.Progression.Type {
	case "score":
		return clamp01(float64(layers) / span)
	case "time":
		return clamp01(float64(frames) / span)
	}
	return 0
}

// Level moves from the initial level to 1 as the run progresses.
func (d *DifficultyManager) Level(layers, frames int) float64 {
	if !d.IsEnabled() {
		return d.start
	}
	return d.start + d.progress(layers, frames)*(1-d.start)
}

// Speed scales base so that a block moves (1 + speed_multiplier) times
// faster at level 1.
func (d *DifficultyManager) Speed(base float64, layers, frames int) float64 {
	return base * (1 + d.Level(layers, frames)*d.cfg.Scaling.SpeedMultiplier)
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
