// Package crosscompile is the Pass Builder / Cross-Compiler (spec §4.E): it
// asks an opaque SPIR-V→target-language backend to emit per-stage source,
// then builds the PassBindings table the filter chain uses at draw time.
package crosscompile

import (
	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/spirv"
	"github.com/retrofx/slangchain/texture"
)

var errUnavailable = core.NewError(core.ErrLink, "", "no cross-compiler configured")

// TargetLanguage identifies the shading language a CrossCompiler emits.
type TargetLanguage int

const (
	TargetGLSL TargetLanguage = iota
	TargetMSL
	TargetHLSL
)

// Options configures one cross-compile request (spec §4.E).
type Options struct {
	Language TargetLanguage
	Version  int

	// CombinedSamplers requests a single combined-image-sampler binding per
	// texture instead of separate texture/sampler slots, for targets (GLSL,
	// MSL's argument-buffer-less path) that prefer it.
	CombinedSamplers bool
}

// CompiledStage is one stage's cross-compiled output plus the binding
// indices the backend actually assigned (which may differ from the
// SPIR-V-declared ones after renumbering).
type CompiledStage struct {
	Source         string
	Bindings       map[uint32]uint32 // declared binding -> final binding
	DescriptorSets map[uint32]uint32 // declared set -> final set
}

// CrossCompiler is the opaque SPIR-V→target-language backend boundary (spec
// §4.E). A real implementation wraps SPIRV-Cross or an equivalent; none
// ships in this repository (spec §1's opaque cross-compiler boundary).
type CrossCompiler interface {
	Compile(words spirv.Words, stage spirv.Stage, opts Options) (CompiledStage, error)
}

// UnavailableCompiler always fails; it lets the rest of the pipeline be
// exercised and tested without a real SPIRV-Cross binding present.
type UnavailableCompiler struct{}

func (UnavailableCompiler) Compile(words spirv.Words, stage spirv.Stage, opts Options) (CompiledStage, error) {
	return CompiledStage{}, errUnavailable
}

// UniformBinding is one scalar/vector value's location inside a staged
// buffer slice (spec §3 PassBindings.BufferBinding.UniformBinding).
type UniformBinding struct {
	Name   string
	Offset uint64
	Size   uint64
}

// BufferBinding is one UBO or push-constant buffer attached to a pass (spec
// §3); PassBindings carries at most one of each.
type BufferBinding struct {
	StageUsage  semantics.StageUsage
	BindingVert uint32
	BindingFrag uint32
	Size        uint64
	Uniforms    []UniformBinding
}

// TextureBinding is one sampled-image slot a pass reads from (spec §3).
type TextureBinding struct {
	Name       string
	Semantic   semantics.TextureSemantic
	Index      int
	Binding    uint32
	StageUsage semantics.StageUsage
	Wrap       texture.WrapMode
	Filter     texture.FilterMode
}

// PassBindings is the final, draw-time resource table for one pass (spec
// §3): what slot each semantic occupies, independent of how the runtime
// resolves the semantic to actual data each frame (that's the filter
// chain's job, spec §4.F).
type PassBindings struct {
	Format   texture.PixelFormat
	Buffers  []BufferBinding
	Textures []TextureBinding
}
