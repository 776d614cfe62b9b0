package semantics

import (
	"regexp"
	"strconv"

	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/spirv"
)

var (
	historyRe      = regexp.MustCompile(`^OriginalHistory(\d+)$`)
	historySizeRe  = regexp.MustCompile(`^OriginalSize(\d+)$`)
	passOutputRe   = regexp.MustCompile(`^PassOutput(\d+)$`)
	passOutputSzRe = regexp.MustCompile(`^PassOutputSize(\d+)$`)
	feedbackRe     = regexp.MustCompile(`^PassFeedback(\d+)$`)
	feedbackSzRe   = regexp.MustCompile(`^PassFeedbackSize(\d+)$`)
)

// ParameterDecl is one #pragma parameter declaration as seen by the
// reflection engine, in declaration order (its Index).
type ParameterDecl struct {
	Name  string
	Index int
}

// PassContext is everything about the surrounding preset/shader that the
// resolver needs to disambiguate a bare resource name (spec §4.D(2)).
type PassContext struct {
	PassIndex      int
	PassAliases    map[string]int // alias name -> pass index that declared it
	Parameters     []ParameterDecl
	LUTIndex       map[string]int // LUT name -> index
	FeedbackPasses map[int]bool   // pass index -> is_feedback
}

func (c PassContext) parameterIndex(name string) (int, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p.Index, true
		}
	}
	return 0, false
}

// matchTextureName resolves a declared texture or texture-size uniform name
// to (semantic, index, isSizeVariant) per spec §4.D(2)'s table.
func matchTextureName(name string, ctx PassContext) (TextureSemantic, int, bool, bool) {
	switch name {
	case "Original":
		return TextureOriginal, 0, false, true
	case "OriginalSize":
		return TextureOriginal, 0, true, true
	case "Source":
		return TextureSource, 0, false, true
	case "SourceSize":
		return TextureSource, 0, true, true
	}
	if m := historyRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TextureOriginalHistory, k, false, true
	}
	if m := historySizeRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TextureOriginalHistory, k, true, true
	}
	if m := passOutputRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TexturePassOutput, k, false, true
	}
	if m := passOutputSzRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TexturePassOutput, k, true, true
	}
	if m := feedbackRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TexturePassFeedback, k, false, true
	}
	if m := feedbackSzRe.FindStringSubmatch(name); m != nil {
		k, _ := strconv.Atoi(m[1])
		return TexturePassFeedback, k, true, true
	}
	if idx, ok := ctx.LUTIndex[name]; ok {
		return TextureUser, idx, false, true
	}
	if idx, ok := ctx.PassAliases[name]; ok {
		return TexturePassOutput, idx, false, true
	}
	if len(name) > 4 && name[len(name)-4:] == "Size" {
		base := name[:len(name)-4]
		if idx, ok := ctx.PassAliases[base]; ok {
			return TexturePassOutput, idx, true, true
		}
	}
	return 0, 0, false, false
}

// matchBufferName resolves a declared non-texture uniform name to
// (semantic, index) per spec §4.D(2)'s table. Index is the parameter index
// for FloatParameter, 0 otherwise.
func matchBufferName(name string, ctx PassContext) (BufferSemantic, int, bool) {
	switch name {
	case "MVP":
		return BufferMVP, 0, true
	case "OutputSize":
		return BufferOutputSize, 0, true
	case "FinalViewportSize":
		return BufferFinalViewportSize, 0, true
	case "FrameCount":
		return BufferFrameCount, 0, true
	case "FrameDirection":
		return BufferFrameDirection, 0, true
	}
	if idx, ok := ctx.parameterIndex(name); ok {
		return BufferFloatParameter, idx, true
	}
	return 0, 0, false
}

// ResolvePass walks a pass's vertex and fragment SPIR-V modules and produces
// its PassReflection (spec §4.D).
func ResolvePass(ctx PassContext, vert, frag *spirv.Module, path string) (*PassReflection, error) {
	r := newPassReflection()

	if err := processStage(r, vert, StageUsageVertex, ctx, path); err != nil {
		return nil, err
	}
	if err := processStage(r, frag, StageUsageFragment, ctx, path); err != nil {
		return nil, err
	}
	if err := validateReferences(r, ctx, path); err != nil {
		return nil, err
	}
	return r, nil
}

func processStage(r *PassReflection, m *spirv.Module, usage StageUsage, ctx PassContext, path string) error {
	for _, v := range m.Variables {
		name := m.Names[v.ID]

		switch v.Storage {
		case spirv.StorageClassUniformConstant:
			sem, idx, _, ok := matchTextureName(name, ctx)
			if !ok {
				continue // samplers/combined-image-samplers with no name match are not reflectable; tolerated
			}
			binding := m.Decorations[v.ID][spirv.DecorationBinding]
			meta := r.textureMeta(sem, idx)
			meta.Binding = binding
			meta.TextureActive = true
			meta.StageUsage |= usage
			r.setTextureMeta(sem, idx, meta)
			r.TextureNames[name] = TextureAlias{Semantic: sem, Index: idx}

		case spirv.StorageClassUniform, spirv.StorageClassPushConstant:
			isPush := v.Storage == spirv.StorageClassPushConstant
			ptrType, ok := m.Types[v.TypeID]
			if !ok {
				continue
			}
			structType, ok := m.Types[ptrType.Component]
			if !ok || structType.Kind != spirv.TypeKindStruct {
				continue
			}
			binding := m.Decorations[v.ID][spirv.DecorationBinding]

			var structSize uint32
			for i, memberTypeID := range structType.Members {
				memberName := m.MemberNames[structType.ID][uint32(i)]
				offset := m.MemberDecorations[structType.ID][uint32(i)][spirv.DecorationOffset]
				size := sizeOfType(m, memberTypeID)
				if end := offset + size; end > structSize {
					structSize = end
				}
				if memberName == "" {
					continue
				}

				if sem, idx, isSize, ok := matchTextureName(memberName, ctx); ok && isSize {
					meta := r.textureMeta(sem, idx)
					if err := unifyOffset(&meta, isPush, offset, path); err != nil {
						return err
					}
					meta.StageUsage |= usage
					r.setTextureMeta(sem, idx, meta)
					r.TextureSizeNames[memberName] = TextureAlias{Semantic: sem, Index: idx}
					continue
				}

				sem, idx, ok := matchBufferName(memberName, ctx)
				if !ok {
					return core.NewPassError(core.ErrLink, ctx.PassIndex, path, "unresolved uniform %q", memberName)
				}
				meta := r.bufferMeta(sem, idx)
				if err := unifyBufferOffset(&meta, isPush, offset, path); err != nil {
					return err
				}
				meta.NumComponents = componentCountOf(m, memberTypeID)
				r.setBufferMeta(sem, idx, meta)
				r.UniformNames[memberName] = BufferAlias{Semantic: sem, Index: idx}
			}

			if isPush {
				if structSize > r.PushSize {
					r.PushSize = structSize
				}
				r.PushBinding = binding
				r.PushStageUsage |= usage
			} else {
				if structSize > r.UBOSize {
					r.UBOSize = structSize
				}
				r.UBOBinding = binding
				r.UBOStageUsage |= usage
			}
		}
	}
	return nil
}

func unifyOffset(meta *TextureSemanticMeta, isPush bool, offset uint32, path string) error {
	if isPush {
		if meta.PushActive && meta.PushOffset != offset {
			return core.NewError(core.ErrLink, path, "texture-size uniform offset mismatch across stages")
		}
		meta.PushOffset = offset
		meta.PushActive = true
		return nil
	}
	if meta.UBOActive && meta.UBOOffset != offset {
		return core.NewError(core.ErrLink, path, "texture-size uniform offset mismatch across stages")
	}
	meta.UBOOffset = offset
	meta.UBOActive = true
	return nil
}

func unifyBufferOffset(meta *SemanticMeta, isPush bool, offset uint32, path string) error {
	if isPush {
		if meta.PushActive && meta.PushOffset != offset {
			return core.NewError(core.ErrLink, path, "uniform offset mismatch across stages")
		}
		meta.PushOffset = offset
		meta.PushActive = true
		return nil
	}
	if meta.UBOActive && meta.UBOOffset != offset {
		return core.NewError(core.ErrLink, path, "uniform offset mismatch across stages")
	}
	meta.UBOOffset = offset
	meta.UBOActive = true
	return nil
}

// sizeOfType returns the byte size of a scalar/vector/matrix type, assuming
// std140-style 16-byte vec4 column width for matrices. Struct/array member
// sizes beyond that shape aren't needed by any semantic this engine
// resolves (spec §4.D only reflects scalars, vectors and mat4).
func sizeOfType(m *spirv.Module, typeID uint32) uint32 {
	t, ok := m.Types[typeID]
	if !ok {
		return 0
	}
	switch t.Kind {
	case spirv.TypeKindInt, spirv.TypeKindFloat:
		return uint32(t.Width / 8)
	case spirv.TypeKindVector:
		return t.Count * sizeOfType(m, t.Component)
	case spirv.TypeKindMatrix:
		return t.Count * 16 // column count * vec4 column stride
	default:
		return 0
	}
}

func componentCountOf(m *spirv.Module, typeID uint32) int {
	t, ok := m.Types[typeID]
	if !ok {
		return 0
	}
	switch t.Kind {
	case spirv.TypeKindVector:
		return int(t.Count)
	case spirv.TypeKindMatrix:
		return int(t.Count) * componentCountOf(m, t.Component)
	case spirv.TypeKindInt, spirv.TypeKindFloat:
		return 1
	default:
		return 0
	}
}

// validateReferences enforces spec §4.D(4): PassOutputK/PassFeedbackK
// require K < current pass index, except a feedback pass may reference its
// own PassFeedbackK where K == current pass index.
func validateReferences(r *PassReflection, ctx PassContext, path string) error {
	for idx := range r.Textures[TexturePassOutput] {
		if idx >= ctx.PassIndex {
			return core.NewPassError(core.ErrLink, ctx.PassIndex, path, "PassOutput%d references a pass that has not executed yet", idx)
		}
	}
	for idx := range r.Textures[TexturePassFeedback] {
		if idx == ctx.PassIndex {
			if !ctx.FeedbackPasses[ctx.PassIndex] {
				return core.NewPassError(core.ErrLink, ctx.PassIndex, path, "PassFeedback%d self-reference requires is_feedback", idx)
			}
			continue
		}
		if idx > ctx.PassIndex {
			return core.NewPassError(core.ErrLink, ctx.PassIndex, path, "PassFeedback%d references a pass that has not executed yet", idx)
		}
	}
	return nil
}
