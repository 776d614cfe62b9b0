// Package texture owns the pixel-format/wrap/filter vocabulary shared by
// presets, reflection and the filter chain, plus the texture arena that
// replaces the original's pointer-to-pointer texture slots (spec §9 Design
// Notes).
package texture

import vk "github.com/goki/vulkan"

// PixelFormat is the 32-valued format enumeration from spec §3: R8/R16/R32
// and multi-component variants in unorm/uint/sint/float forms, plus sRGB.
// Unknown means "use the preset/chain default".
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota

	FormatR8Unorm
	FormatR8Uint
	FormatR8Sint
	FormatR8g8Unorm
	FormatR8g8Uint
	FormatR8g8Sint
	FormatR8g8b8a8Unorm
	FormatR8g8b8a8Uint
	FormatR8g8b8a8Sint
	FormatR8g8b8a8Srgb

	FormatR16Uint
	FormatR16Sint
	FormatR16Sfloat
	FormatR16g16Uint
	FormatR16g16Sint
	FormatR16g16Sfloat
	FormatR16g16b16a16Uint
	FormatR16g16b16a16Sint
	FormatR16g16b16a16Sfloat

	FormatR32Uint
	FormatR32Sint
	FormatR32Sfloat
	FormatR32g32Uint
	FormatR32g32Sint
	FormatR32g32Sfloat
	FormatR32g32b32a32Uint
	FormatR32g32b32a32Sint
	FormatR32g32b32a32Sfloat

	FormatA2b10g10r10Unorm
	FormatB8g8r8a8Unorm
	FormatB8g8r8a8Srgb
)

type formatInfo struct {
	name     string
	bpp      int
	isSRGB   bool
	isFloat  bool
	vkFormat vk.Format
}

// formatTable is the static, compile-time mapping from PixelFormat to its
// GLSL preset-token name, bytes-per-pixel and the vk.Format value a Vulkan
// backend would bind it to. This is the "global/static format conversion
// table" called for by spec §9 Design Notes, generalized from the
// teacher's per-component string-to-enum functions
// (engine/renderer/metadata/shader.go).
var formatTable = map[PixelFormat]formatInfo{
	FormatUnknown:          {"UNKNOWN", 0, false, false, vk.FormatUndefined},
	FormatR8Unorm:          {"R8_UNORM", 1, false, false, vk.FormatR8Unorm},
	FormatR8Uint:           {"R8_UINT", 1, false, false, vk.FormatR8Uint},
	FormatR8Sint:           {"R8_SINT", 1, false, false, vk.FormatR8Sint},
	FormatR8g8Unorm:        {"R8G8_UNORM", 2, false, false, vk.FormatR8g8Unorm},
	FormatR8g8Uint:         {"R8G8_UINT", 2, false, false, vk.FormatR8g8Uint},
	FormatR8g8Sint:         {"R8G8_SINT", 2, false, false, vk.FormatR8g8Sint},
	FormatR8g8b8a8Unorm:    {"R8G8B8A8_UNORM", 4, false, false, vk.FormatR8g8b8a8Unorm},
	FormatR8g8b8a8Uint:     {"R8G8B8A8_UINT", 4, false, false, vk.FormatR8g8b8a8Uint},
	FormatR8g8b8a8Sint:     {"R8G8B8A8_SINT", 4, false, false, vk.FormatR8g8b8a8Sint},
	FormatR8g8b8a8Srgb:     {"R8G8B8A8_SRGB", 4, true, false, vk.FormatR8g8b8a8Srgb},
	FormatR16Uint:          {"R16_UINT", 2, false, false, vk.FormatR16Uint},
	FormatR16Sint:          {"R16_SINT", 2, false, false, vk.FormatR16Sint},
	FormatR16Sfloat:        {"R16_SFLOAT", 2, false, true, vk.FormatR16Sfloat},
	FormatR16g16Uint:       {"R16G16_UINT", 4, false, false, vk.FormatR16g16Uint},
	FormatR16g16Sint:       {"R16G16_SINT", 4, false, false, vk.FormatR16g16Sint},
	FormatR16g16Sfloat:     {"R16G16_SFLOAT", 4, false, true, vk.FormatR16g16Sfloat},
	FormatR16g16b16a16Uint: {"R16G16B16A16_UINT", 8, false, false, vk.FormatR16g16b16a16Uint},
	FormatR16g16b16a16Sint: {"R16G16B16A16_SINT", 8, false, false, vk.FormatR16g16b16a16Sint},
	FormatR16g16b16a16Sfloat: {
		"R16G16B16A16_SFLOAT", 8, false, true, vk.FormatR16g16b16a16Sfloat,
	},
	FormatR32Uint:          {"R32_UINT", 4, false, false, vk.FormatR32Uint},
	FormatR32Sint:          {"R32_SINT", 4, false, false, vk.FormatR32Sint},
	FormatR32Sfloat:        {"R32_SFLOAT", 4, false, true, vk.FormatR32Sfloat},
	FormatR32g32Uint:       {"R32G32_UINT", 8, false, false, vk.FormatR32g32Uint},
	FormatR32g32Sint:       {"R32G32_SINT", 8, false, false, vk.FormatR32g32Sint},
	FormatR32g32Sfloat:     {"R32G32_SFLOAT", 8, false, true, vk.FormatR32g32Sfloat},
	FormatR32g32b32a32Uint: {"R32G32B32A32_UINT", 16, false, false, vk.FormatR32g32b32a32Uint},
	FormatR32g32b32a32Sint: {"R32G32B32A32_SINT", 16, false, false, vk.FormatR32g32b32a32Sint},
	FormatR32g32b32a32Sfloat: {
		"R32G32B32A32_SFLOAT", 16, false, true, vk.FormatR32g32b32a32Sfloat,
	},
	FormatA2b10g10r10Unorm: {"A2B10G10R10_UNORM_PACK32", 4, false, false, vk.FormatA2b10g10r10UnormPack32},
	FormatB8g8r8a8Unorm:    {"B8G8R8A8_UNORM", 4, false, false, vk.FormatB8g8r8a8Unorm},
	FormatB8g8r8a8Srgb:     {"B8G8R8A8_SRGB", 4, true, false, vk.FormatB8g8r8a8Srgb},
}

var formatByToken map[string]PixelFormat

func init() {
	formatByToken = make(map[string]PixelFormat, len(formatTable))
	for pf, info := range formatTable {
		formatByToken[info.name] = pf
	}
}

// FormatFromToken parses a #pragma format token (spec §4.B) into a
// PixelFormat.
func FormatFromToken(token string) (PixelFormat, bool) {
	pf, ok := formatByToken[token]
	return pf, ok
}

// BytesPerPixel returns the byte stride of one texel in this format.
func (f PixelFormat) BytesPerPixel() int {
	return formatTable[f].bpp
}

// IsSRGB reports whether the format samples/writes through an sRGB curve.
func (f PixelFormat) IsSRGB() bool {
	return formatTable[f].isSRGB
}

// IsFloat reports whether the format stores floating-point texel data.
func (f PixelFormat) IsFloat() bool {
	return formatTable[f].isFloat
}

// VkFormat returns the vk.Format a Vulkan backend would bind this pixel
// format to. Used only as a values interop table — this package never
// issues Vulkan calls itself (spec §1 keeps the concrete GPU API external).
func (f PixelFormat) VkFormat() vk.Format {
	return formatTable[f].vkFormat
}

func (f PixelFormat) String() string {
	if info, ok := formatTable[f]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// WrapMode is the pass/LUT sampler wrap mode (spec §3).
type WrapMode int

const (
	WrapBorder WrapMode = iota
	WrapEdge
	WrapRepeat
	WrapMirroredRepeat
)

// WrapModeFromToken parses a wrap_modeN preset value (spec §4.A).
func WrapModeFromToken(token string) (WrapMode, bool) {
	switch token {
	case "clamp_to_border":
		return WrapBorder, true
	case "clamp_to_edge":
		return WrapEdge, true
	case "repeat":
		return WrapRepeat, true
	case "mirrored_repeat":
		return WrapMirroredRepeat, true
	default:
		return WrapBorder, false
	}
}

// FilterMode is the pass/LUT sampler filter (spec §3). Unspecified means
// the preset declared no filter; no package substitutes a default for it.
type FilterMode int

const (
	FilterUnspecified FilterMode = iota
	FilterLinear
	FilterNearest
)
