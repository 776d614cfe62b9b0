// Package spirv models the external GLSL→SPIR-V front end boundary (spec
// §4.C) and provides the minimal binary-word reader the reflection engine
// (package semantics) walks to discover resource bindings (spec §4.D step
// 1). No GLSL compiler ships in this repository; StageCompiler is the seam
// a real glslang/shaderc binding would implement.
package spirv

import "github.com/retrofx/slangchain/core"

// Stage identifies which pipeline stage a compile targets.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

// Words is a compiled SPIR-V binary, as a stream of 32-bit words.
type Words []uint32

// StageCompiler is the opaque GLSL→SPIR-V compiler boundary (spec §4.C).
// Compile errors are reported as ErrPreprocess (syntax), ErrParse, or
// ErrLink ChainErrors by implementations, per spec §4.C/§6.
type StageCompiler interface {
	Compile(source string, stage Stage) (Words, error)
}

// UnavailableCompiler is a StageCompiler that always fails; it lets the
// rest of the module (preset parsing, preprocessing, chain wiring) be
// exercised and tested without a real glslang/shaderc binding present.
type UnavailableCompiler struct{}

func (UnavailableCompiler) Compile(source string, stage Stage) (Words, error) {
	return nil, core.NewError(core.ErrPreprocess, "", "no SPIR-V compiler configured")
}
