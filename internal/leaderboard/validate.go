package leaderboard

import (
	"math"
	"regexp"
	"strings"
)

// Username limits.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername trims name and checks it against the username rules.
// It returns the trimmed name and the list of violated rules.
func ValidateUsername(name string) (string, []string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, []string{"username is required"}
	}

	var errs []string
	if n := len(name); n < MinUsernameLen || n > MaxUsernameLen {
		errs = append(errs, "username must be between 3 and 20 characters")
	}
	if !usernamePattern.MatchString(name) {
		errs = append(errs, "username can only contain letters, numbers, and underscores")
	}
	return name, errs
}

// ValidateScore checks that a submitted score is a non-negative integer.
// A nil score means the field was missing.
func ValidateScore(score *float64) (int, []string) {
	if score == nil {
		return 0, []string{"score is required"}
	}
	v := *score
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 {
		return 0, []string{"score must be a non-negative integer"}
	}
	if v > math.MaxInt32 {
		return 0, []string{"score is out of range"}
	}
	return int(v), nil
}
