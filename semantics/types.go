// Package semantics is the Reflection Engine (spec §4.D): it walks the
// SPIR-V of a pass's two stages, resolves every resource to a well-known
// semantic by name pattern, unifies its layout across stages, and produces
// a PassReflection.
package semantics

// TextureSemantic enumerates the texture-shaped resources a pass can bind
// (spec §3/§4.D(2)).
type TextureSemantic int

const (
	TextureOriginal TextureSemantic = iota
	TextureSource
	TextureOriginalHistory
	TexturePassOutput
	TexturePassFeedback
	TextureUser
)

func (s TextureSemantic) String() string {
	switch s {
	case TextureOriginal:
		return "Original"
	case TextureSource:
		return "Source"
	case TextureOriginalHistory:
		return "OriginalHistory"
	case TexturePassOutput:
		return "PassOutput"
	case TexturePassFeedback:
		return "PassFeedback"
	case TextureUser:
		return "User"
	default:
		return "Unknown"
	}
}

// BufferSemantic enumerates the non-texture uniform resources a pass can
// bind (spec §3/§4.D(2)).
type BufferSemantic int

const (
	BufferMVP BufferSemantic = iota
	BufferOutputSize
	BufferFinalViewportSize
	BufferFrameCount
	BufferFrameDirection
	BufferFloatParameter
)

func (s BufferSemantic) String() string {
	switch s {
	case BufferMVP:
		return "MVP"
	case BufferOutputSize:
		return "OutputSize"
	case BufferFinalViewportSize:
		return "FinalViewportSize"
	case BufferFrameCount:
		return "FrameCount"
	case BufferFrameDirection:
		return "FrameDirection"
	case BufferFloatParameter:
		return "FloatParameter"
	default:
		return "Unknown"
	}
}

// StageUsage is a bitset of which stages reference a given semantic.
type StageUsage int

const (
	StageUsageVertex StageUsage = 1 << iota
	StageUsageFragment
)

// TextureSemanticMeta mirrors OpenEmu's ShaderPassTextureSemanticMeta (spec
// §3): everything the chain needs to know about one resolved texture-shaped
// binding slot.
type TextureSemanticMeta struct {
	Binding       uint32
	UBOOffset     uint32
	PushOffset    uint32
	StageUsage    StageUsage
	TextureActive bool
	UBOActive     bool
	PushActive    bool
}

// SemanticMeta mirrors OpenEmu's ShaderPassBufferSemanticMeta: a non-texture
// uniform's layout, active-state flags, and component count.
type SemanticMeta struct {
	UBOOffset     uint32
	PushOffset    uint32
	NumComponents int
	UBOActive     bool
	PushActive    bool
}

// TextureAlias binds a resolved (semantic, index) pair back to the exact
// name that was declared in source, for error messages and for the
// cross-compiler's binding table construction.
type TextureAlias struct {
	Semantic TextureSemantic
	Index    int
}

// BufferAlias is TextureAlias's non-texture counterpart.
type BufferAlias struct {
	Semantic BufferSemantic
	Index    int // parameter index, for FloatParameter; 0 otherwise
}

// PassReflection is the fully resolved, per-pass output of the reflection
// engine (spec §3 PassReflection).
type PassReflection struct {
	UBOSize  uint32
	PushSize uint32

	UBOBinding  uint32
	PushBinding uint32

	UBOStageUsage  StageUsage
	PushStageUsage StageUsage

	Textures map[TextureSemantic]map[int]TextureSemanticMeta
	Buffers  map[BufferSemantic]map[int]SemanticMeta

	TextureNames     map[string]TextureAlias
	TextureSizeNames map[string]TextureAlias
	UniformNames     map[string]BufferAlias
}

func newPassReflection() *PassReflection {
	return &PassReflection{
		Textures:         map[TextureSemantic]map[int]TextureSemanticMeta{},
		Buffers:          map[BufferSemantic]map[int]SemanticMeta{},
		TextureNames:     map[string]TextureAlias{},
		TextureSizeNames: map[string]TextureAlias{},
		UniformNames:     map[string]BufferAlias{},
	}
}

func (r *PassReflection) textureMeta(sem TextureSemantic, idx int) TextureSemanticMeta {
	if r.Textures[sem] == nil {
		return TextureSemanticMeta{}
	}
	return r.Textures[sem][idx]
}

func (r *PassReflection) setTextureMeta(sem TextureSemantic, idx int, m TextureSemanticMeta) {
	if r.Textures[sem] == nil {
		r.Textures[sem] = map[int]TextureSemanticMeta{}
	}
	r.Textures[sem][idx] = m
}

func (r *PassReflection) bufferMeta(sem BufferSemantic, idx int) SemanticMeta {
	if r.Buffers[sem] == nil {
		return SemanticMeta{}
	}
	return r.Buffers[sem][idx]
}

func (r *PassReflection) setBufferMeta(sem BufferSemantic, idx int, m SemanticMeta) {
	if r.Buffers[sem] == nil {
		r.Buffers[sem] = map[int]SemanticMeta{}
	}
	r.Buffers[sem][idx] = m
}
