package stack

import "github.com/vovakirdan/hyperstack/internal/core"

// Layer is a solid block in the tower. Axis is the axis it slides along
// while it is the moving top layer.
type Layer struct {
	*Pair
	Axis core.Axis
}

// Ledger owns the tower layers, bottom first, and the falling overhangs.
type Ledger struct {
	layers    []*Layer
	overhangs []*Pair
}

// Push places a layer on top.
func (l *Ledger) Push(layer *Layer) {
	l.layers = append(l.layers, layer)
}

// Pop removes and returns the top layer, or nil when empty.
func (l *Ledger) Pop() *Layer {
	if len(l.layers) == 0 {
		return nil
	}
	top := l.layers[len(l.layers)-1]
	l.layers = l.layers[:len(l.layers)-1]
	return top
}

// Len returns the number of layers.
func (l *Ledger) Len() int {
	return len(l.layers)
}

// Top returns the top layer, or nil when empty.
func (l *Ledger) Top() *Layer {
	if len(l.layers) == 0 {
		return nil
	}
	return l.layers[len(l.layers)-1]
}

// Active returns the moving layer and the layer it is measured against.
// ok is false when fewer than two layers exist.
func (l *Ledger) Active() (top, below *Layer, ok bool) {
	n := len(l.layers)
	if n < 2 {
		return nil, nil, false
	}
	return l.layers[n-1], l.layers[n-2], true
}

// Layers returns the layers bottom first.
func (l *Ledger) Layers() []*Layer {
	return l.layers
}

// AddOverhang records a falling block.
func (l *Ledger) AddOverhang(p *Pair) {
	l.overhangs = append(l.overhangs, p)
}

// Overhangs returns the falling blocks.
func (l *Ledger) Overhangs() []*Pair {
	return l.overhangs
}

// Reset destroys every layer and overhang.
func (l *Ledger) Reset() {
	for _, layer := range l.layers {
		layer.Destroy()
	}
	for _, o := range l.overhangs {
		o.Destroy()
	}
	l.layers, l.overhangs = nil, nil
}
