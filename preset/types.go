// Package preset parses the .slangp key=value preset file (spec §4.A):
// pass list, per-pass scale/filter/wrap/format/mipmap/feedback settings,
// LUTs, and parameter overrides, all with paths resolved relative to the
// preset file.
package preset

import "github.com/retrofx/slangchain/texture"

// ScaleMode selects how a pass's render-target dimension on one axis is
// derived (spec §3/§4.F).
type ScaleMode int

const (
	ScaleSource ScaleMode = iota
	ScaleAbsolute
	ScaleViewport
)

// ScaleModeFromToken parses a scale_type(_x|_y)N preset value.
func ScaleModeFromToken(token string) (ScaleMode, bool) {
	switch token {
	case "source":
		return ScaleSource, true
	case "absolute":
		return ScaleAbsolute, true
	case "viewport":
		return ScaleViewport, true
	default:
		return ScaleSource, false
	}
}

// Pass is one shaderN entry and its associated per-pass keys.
type Pass struct {
	Source string // resolved, absolute path to the .slang source

	Alias string

	FrameCountMod uint

	ScaleModeX, ScaleModeY ScaleMode
	ScaleX, ScaleY         float64

	Filter texture.FilterMode
	Wrap   texture.WrapMode

	MipmapInput      bool
	FloatFramebuffer bool
	SRGBFramebuffer  bool
	IsFeedback       bool

	// Format is a per-pass format override. Parse maps no preset key onto
	// it, so a parsed preset leaves it FormatUnknown, which means "use
	// whatever the pass's #pragma format or the chain default says"
	// (spec §3).
	Format texture.PixelFormat
}

// LUT is a textures = NAME entry and its NAME_* keys.
type LUT struct {
	Name   string
	Source string // resolved, absolute path

	Wrap   texture.WrapMode
	Filter texture.FilterMode
	Mipmap bool
}

// Preset is the fully parsed, path-resolved .slangp file.
type Preset struct {
	BasePath string // directory the preset lives in; all relative paths resolve against this

	Passes []Pass
	LUTs   []LUT

	// ParameterOverrides holds the preset's `parameters = NAMES` /
	// per-name float overrides (spec §4.A); applied on top of each
	// pass's #pragma parameter defaults by the shader façade.
	ParameterOverrides map[string]float64

	// ParameterGroupOverrides holds group-membership hints parsed from the
	// `parameter_groups = NAMES` list plus each parameter's `NAME_group =
	// INDEX` key (SPEC_FULL.md §4 supplement, an opt-in extension absent
	// from most presets). Maps parameter name to resolved group name.
	ParameterGroupOverrides map[string]string
}
