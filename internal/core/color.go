package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorCyan
	ColorWhite
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGray
)

// LayerColor alternates white and gray as the tower grows.
func LayerColor(index int) Color {
	if index%2 == 0 {
		return ColorBrightWhite
	}
	return ColorGray
}
