package chain

import (
	"testing"

	"github.com/retrofx/slangchain/preset"
)

// TestComputeSizesScaleChain exercises spec §8 scenario S5: a mix of
// Source-relative, Absolute and Viewport-relative passes, with the final
// pass forced to the drawable size regardless of its own scale rule.
func TestComputeSizesScaleChain(t *testing.T) {
	passes := []preset.Pass{
		{ScaleModeX: preset.ScaleSource, ScaleX: 2, ScaleModeY: preset.ScaleSource, ScaleY: 2},
		{ScaleModeX: preset.ScaleAbsolute, ScaleX: 640, ScaleModeY: preset.ScaleAbsolute, ScaleY: 480},
		{ScaleModeX: preset.ScaleViewport, ScaleX: 1, ScaleModeY: preset.ScaleViewport, ScaleY: 1},
	}
	src := Size{Width: 320, Height: 240}
	drawable := Size{Width: 1920, Height: 1080}

	sizes := computeSizes(passes, src, drawable)
	if len(sizes) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(sizes))
	}
	if sizes[0] != (Size{Width: 640, Height: 480}) {
		t.Errorf("pass0 size = %+v, want {640 480}", sizes[0])
	}
	if sizes[1] != (Size{Width: 640, Height: 480}) {
		t.Errorf("pass1 size = %+v, want {640 480}", sizes[1])
	}
	if sizes[2] != drawable {
		t.Errorf("final pass size = %+v, want drawable %+v", sizes[2], drawable)
	}
}

func TestComputeSizesSinglePassForcedToDrawable(t *testing.T) {
	passes := []preset.Pass{
		{ScaleModeX: preset.ScaleSource, ScaleX: 3, ScaleModeY: preset.ScaleSource, ScaleY: 3},
	}
	sizes := computeSizes(passes, Size{Width: 100, Height: 50}, Size{Width: 800, Height: 600})
	if sizes[0] != (Size{Width: 800, Height: 600}) {
		t.Errorf("single-pass size = %+v, want drawable", sizes[0])
	}
}
