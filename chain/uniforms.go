package chain

import (
	"encoding/binary"
	"math"

	"github.com/retrofx/slangchain/crosscompile"
	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/shader"
)

// passUniformInputs is everything per-frame, per-pass the gather step needs
// that isn't already fixed by the pass's reflection/bindings (spec §4.F
// step 2a).
type passUniformInputs struct {
	mvp               [16]float32
	outputSize        Size
	finalViewportSize Size
	frameCount        uint32
	frameDirection    int32
	parameterValue    func(index int) float64
	textureSize       func(sem semantics.TextureSemantic, idx int) Size
}

// gatherPassUniforms copies one pass's UBO and push-constant values into its
// slice of the staging buffer, starting at passBase (already 256-byte
// aligned by the caller). Buffers are laid out back to back in the order
// crosscompile.BuildPassBindings emits them (UBO, then push).
func gatherPassUniforms(slice []byte, passBase uint64, pass *shader.Pass, in passUniformInputs) {
	bufBase := passBase
	for _, b := range pass.Bindings.Buffers {
		for _, u := range b.Uniforms {
			writeUniformValue(slice, bufBase+u.Offset, u, pass, in)
		}
		bufBase += b.Size
	}
}

func writeUniformValue(slice []byte, off uint64, u crosscompile.UniformBinding, pass *shader.Pass, in passUniformInputs) {
	if alias, ok := pass.Reflection.UniformNames[u.Name]; ok {
		switch alias.Semantic {
		case semantics.BufferMVP:
			writeFloats(slice[off:], in.mvp[:])
		case semantics.BufferOutputSize:
			writeVec4Size(slice[off:], in.outputSize)
		case semantics.BufferFinalViewportSize:
			writeVec4Size(slice[off:], in.finalViewportSize)
		case semantics.BufferFrameCount:
			fc := in.frameCount
			if mod := pass.Preset.FrameCountMod; mod > 0 {
				fc = fc % uint32(mod)
			}
			binary.LittleEndian.PutUint32(slice[off:], fc)
		case semantics.BufferFrameDirection:
			binary.LittleEndian.PutUint32(slice[off:], uint32(in.frameDirection))
		case semantics.BufferFloatParameter:
			v := float32(0)
			if in.parameterValue != nil {
				v = float32(in.parameterValue(alias.Index))
			}
			binary.LittleEndian.PutUint32(slice[off:], math.Float32bits(v))
		}
		return
	}
	if alias, ok := pass.Reflection.TextureSizeNames[u.Name]; ok {
		var size Size
		if in.textureSize != nil {
			size = in.textureSize(alias.Semantic, alias.Index)
		}
		writeVec4Size(slice[off:], size)
	}
}

// writeVec4Size packs (w, h, 1/w, 1/h), the layout spec §4.F prescribes for
// OutputSize/FinalViewportSize/texture-size uniforms.
func writeVec4Size(dst []byte, s Size) {
	w, h := float32(s.Width), float32(s.Height)
	invW, invH := float32(0), float32(0)
	if w != 0 {
		invW = 1 / w
	}
	if h != 0 {
		invH = 1 / h
	}
	writeFloats(dst, []float32{w, h, invW, invH})
}

func writeFloats(dst []byte, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
