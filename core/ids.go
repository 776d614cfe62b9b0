package core

// InvalidIndex marks an absent index into a fixed-size array (texture
// arena slot, parameter index, …), matching the teacher's InvalidID /
// InvalidIDUint16 sentinel convention in engine/renderer/metadata/shader.go.
const InvalidIndex = -1

// Compile-time maxima referenced throughout the chain/texture/semantics
// packages (spec §9 Design Notes).
const (
	MaxShaderPasses = 26
	MaxFrameHistory = 128
)
