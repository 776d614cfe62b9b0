// Package chain is the core execution engine (spec §4.F): per-pass sizing,
// texture-graph allocation, per-frame uniform staging and draw dispatch, and
// the end-of-frame feedback swap / history shift.
package chain

import (
	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/preset"
)

// Size is a render-target dimension pair.
type Size struct {
	Width, Height int
}

// computeSizes derives each pass's render-target size from its scale rule
// (spec §4.F Sizing). The final pass's size is forced to drawable, since it
// draws directly into the caller-supplied render target with no offscreen
// allocation.
func computeSizes(passes []preset.Pass, src, drawable Size) []Size {
	sizes := make([]Size, len(passes))
	prev := src
	for i, p := range passes {
		w := axisSize(p.ScaleModeX, p.ScaleX, prev.Width, drawable.Width)
		h := axisSize(p.ScaleModeY, p.ScaleY, prev.Height, drawable.Height)
		sizes[i] = Size{Width: w, Height: h}
		prev = sizes[i]
	}
	if n := len(sizes); n > 0 {
		sizes[n-1] = drawable
	}
	return sizes
}

func axisSize(mode preset.ScaleMode, scale float64, prevAxis, drawableAxis int) int {
	var v int
	switch mode {
	case preset.ScaleAbsolute:
		v = core.RoundScale(scale)
	case preset.ScaleViewport:
		v = core.RoundScale(float64(drawableAxis) * scale)
	default: // ScaleSource
		v = core.RoundScale(float64(prevAxis) * scale)
	}
	// A render target can never be narrower than one texel; a tiny or
	// negative scale factor shouldn't produce an unallocatable texture.
	return core.Max(v, 1)
}
