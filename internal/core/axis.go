package core

// Axis names a world axis. Layers slide along AxisX or AxisZ; AxisY is up.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns "x", "y" or "z".
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Other returns the horizontal axis perpendicular to a.
// Slide axes alternate x -> z -> x on every successful placement.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisZ
	}
	return AxisX
}
