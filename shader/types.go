// Package shader is the Shader Model façade (Component G, spec §2/§4): it
// parses a .slangp preset, preprocesses and reflects every pass, and
// exposes the assembled SlangShader the filter chain drives each frame.
package shader

import (
	"github.com/retrofx/slangchain/crosscompile"
	"github.com/retrofx/slangchain/preset"
	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/texture"
)

// Parameter is one #pragma parameter declaration, merged across all passes
// that declare it and overridden by the preset's `parameters = ...` line
// (spec §3 Parameter, §4.A).
type Parameter struct {
	Name        string
	Description string
	Index       int
	Pass        int // the pass that first declared it

	Minimum float64
	Initial float64
	Maximum float64
	Step    float64
	Value   float64
}

// ParameterGroup is the SPEC_FULL.md parameter-group supplement: a named
// bucket of parameter indices, for front ends that want to present
// parameters in collapsible sections instead of one flat list.
type ParameterGroup struct {
	Name       string
	Parameters []int
}

// LUT is a resolved textures = NAME entry (spec §3 ShaderLUT).
type LUT struct {
	Name   string
	Path   string
	Wrap   texture.WrapMode
	Filter texture.FilterMode
	Mipmap bool
}

// Pass is one fully built pass: preset settings plus the output of B
// (preprocess), C (compile), D (reflect) and E (cross-compile/bindings).
type Pass struct {
	Index  int
	Preset preset.Pass

	VertexSource   string
	FragmentSource string

	Format     texture.PixelFormat
	Reflection *semantics.PassReflection
	Bindings   *crosscompile.PassBindings
}

// SlangShader is the façade described in spec §2 Component G: immutable
// after construction except for parameter values (spec §3 Lifecycle).
type SlangShader struct {
	BasePath string

	Passes     []Pass
	Parameters []Parameter
	Groups     []ParameterGroup
	LUTs       []LUT

	// HistoryCount is the maximum K referenced by any OriginalHistoryK /
	// OriginalSizeK uniform across all passes (spec §3, §8 invariant 1).
	HistoryCount int
}

// ParameterByName returns the index of the named parameter, or -1.
func (s *SlangShader) ParameterByName(name string) int {
	for i, p := range s.Parameters {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// SetParameter updates a parameter's value by name (spec §6
// set_parameter(name|index, value); spec §8 round-trip property).
func (s *SlangShader) SetParameter(name string, value float64) bool {
	i := s.ParameterByName(name)
	if i < 0 {
		return false
	}
	s.Parameters[i].Value = value
	return true
}

// SetParameterByIndex updates a parameter's value by index.
func (s *SlangShader) SetParameterByIndex(index int, value float64) bool {
	if index < 0 || index >= len(s.Parameters) {
		return false
	}
	s.Parameters[index].Value = value
	return true
}
