package chain

import (
	"github.com/retrofx/slangchain/gpu"
	"github.com/retrofx/slangchain/shader"
	"github.com/retrofx/slangchain/texture"
)

// textureGraph is the per-shader allocation of offscreen textures (spec
// §4.F Texture graph): the original-history ring, one output texture per
// non-final pass, and one feedback texture per pass marked is_feedback.
type textureGraph struct {
	arena *texture.Arena

	history    *historyRing
	passOutput []texture.Handle       // len == len(passes)-1; empty for a single-pass chain
	feedback   map[int]texture.Handle // pass index -> handle, only passes with IsFeedback
}

// buildTextureGraph allocates every offscreen texture (spec §4.F) sized per
// computeSizes and formatted per each pass's resolved PixelFormat.
//
// The original-history ring holds no device storage of its own: Device has
// no texture-to-texture copy primitive, so the chain can't retain a GPU-side
// snapshot of a past frame's externally-owned source texture. Instead the
// ring simply rotates through whichever Handle SetSourceTexture supplied
// each frame (spec §4.F: "slot 0 is the current frame's Original, the
// source texture itself when formats match"); a caller whose source format
// doesn't match is expected to run it through the CPU converter first and
// bind the converted handle, same as today.
func buildTextureGraph(dev gpu.Device, arena *texture.Arena, sh *shader.SlangShader, sizes []Size) (*textureGraph, error) {
	g := &textureGraph{arena: arena, feedback: map[int]texture.Handle{}}
	g.history = newHistoryRing(make([]texture.Handle, sh.HistoryCount+1))
	for i := range g.history.handles {
		g.history.handles[i] = texture.Invalid
	}

	n := len(sh.Passes)
	if n > 1 {
		g.passOutput = make([]texture.Handle, n-1)
		for i := 0; i < n-1; i++ {
			p := sh.Passes[i]
			h := arena.Alloc(texture.Descriptor{
				Name:   texture.AnonymousName(),
				Width:  sizes[i].Width,
				Height: sizes[i].Height,
				Format: p.Format,
				Wrap:   p.Preset.Wrap,
				Filter: p.Preset.Filter,
				Mipmap: p.Preset.MipmapInput,
			})
			if err := dev.CreateTexture(*arena.Get(h)); err != nil {
				return nil, err
			}
			g.passOutput[i] = h
		}
	}

	for i, p := range sh.Passes {
		if !p.Preset.IsFeedback {
			continue
		}
		h := arena.Alloc(texture.Descriptor{
			Name:   texture.AnonymousName(),
			Width:  sizes[i].Width,
			Height: sizes[i].Height,
			Format: p.Format,
			Wrap:   p.Preset.Wrap,
			Filter: p.Preset.Filter,
		})
		if err := dev.CreateTexture(*arena.Get(h)); err != nil {
			return nil, err
		}
		dev.ClearTexture(h)
		g.feedback[i] = h
	}

	return g, nil
}

// resize reallocates any texture whose logical size changed (spec §4.F "A
// resize event ... re-runs sizing and reallocates changed textures").
// Feedback textures are kept at the same size as their pass's output, so
// they're resized alongside it.
func (g *textureGraph) resize(dev gpu.Device, sizes []Size) error {
	for i, h := range g.passOutput {
		if err := g.resizeIfChanged(dev, h, sizes[i]); err != nil {
			return err
		}
	}
	for i, h := range g.feedback {
		if err := g.resizeIfChanged(dev, h, sizes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (g *textureGraph) resizeIfChanged(dev gpu.Device, h texture.Handle, size Size) error {
	d := g.arena.Get(h)
	if d == nil {
		return nil
	}
	if d.Width == size.Width && d.Height == size.Height {
		return nil
	}
	if err := dev.ResizeTexture(h, size.Width, size.Height); err != nil {
		return err
	}
	g.arena.Resize(h, size.Width, size.Height)
	return nil
}

// sourceHandle resolves pass i's Source binding (spec §4.F step 2b): pass 0
// reads the current Original, later passes read the previous pass's output.
func (g *textureGraph) sourceHandle(i int) texture.Handle {
	if i == 0 {
		return g.history.current()
	}
	return g.passOutput[i-1]
}

// outputHandle resolves where pass i should render: an offscreen texture
// for every pass but the last, which has none (it targets the caller's
// render-pass descriptor instead, spec §4.F step 2c).
func (g *textureGraph) outputHandle(i int) (texture.Handle, bool) {
	if i < 0 || i >= len(g.passOutput) {
		return texture.Invalid, false
	}
	return g.passOutput[i], true
}

// endFrame performs spec §4.F step 3's atomic end-of-frame transition: swap
// each feedback pass's output into its feedback slot, then advance the
// history ring, returning the handle next frame's source upload should
// target.
func (g *textureGraph) endFrame() texture.Handle {
	for i, fb := range g.feedback {
		if i >= len(g.passOutput) {
			continue // a feedback final pass has no offscreen output to swap; spec names self-feedback only for non-final passes in practice
		}
		out := g.passOutput[i]
		g.arena.Swap(out, fb)
		g.passOutput[i], g.feedback[i] = fb, out
	}

	return g.history.advance()
}
