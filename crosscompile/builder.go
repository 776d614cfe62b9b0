package crosscompile

import (
	"sort"

	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/texture"
)

// LUTSampler is a LUT's own wrap/filter settings (spec §4.A `NAME_wrap_mode`
// / `NAME_linear`), used in place of the declaring pass's defaults for User
// texture bindings (spec §4.E).
type LUTSampler struct {
	Wrap   texture.WrapMode
	Filter texture.FilterMode
}

const texSizeUniformBytes = 16 // vec4, per spec §4.F "packed vec4"

// BuildPassBindings turns a resolved PassReflection into the draw-time
// PassBindings table (spec §4.E): zero-or-one UBO buffer binding (omitted
// when no UBO uniform is active), zero-or-one push buffer binding, and one
// TextureBinding per active texture semantic. Binding indices are taken from
// the reflection; a CompiledStage's Bindings/DescriptorSets maps are not
// consulted.
func BuildPassBindings(
	refl *semantics.PassReflection,
	format texture.PixelFormat,
	passWrap texture.WrapMode,
	passFilter texture.FilterMode,
	lutSamplers map[int]LUTSampler,
) *PassBindings {
	pb := &PassBindings{Format: format}

	if ubo := buildBufferBinding(refl, false); ubo != nil {
		pb.Buffers = append(pb.Buffers, *ubo)
	}
	if push := buildBufferBinding(refl, true); push != nil {
		pb.Buffers = append(pb.Buffers, *push)
	}

	pb.Textures = buildTextureBindings(refl, passWrap, passFilter, lutSamplers)

	return pb
}

type namedUniform struct {
	name   string
	offset uint64
	size   uint64
}

func buildBufferBinding(refl *semantics.PassReflection, isPush bool) *BufferBinding {
	var entries []namedUniform

	for name, alias := range refl.UniformNames {
		meta := refl.Buffers[alias.Semantic][alias.Index]
		active := meta.UBOActive
		offset := uint64(meta.UBOOffset)
		if isPush {
			active = meta.PushActive
			offset = uint64(meta.PushOffset)
		}
		if !active {
			continue
		}
		entries = append(entries, namedUniform{
			name:   name,
			offset: offset,
			size:   uint64(meta.NumComponents) * 4,
		})
	}

	for name, alias := range refl.TextureSizeNames {
		meta := refl.Textures[alias.Semantic][alias.Index]
		active := meta.UBOActive
		offset := uint64(meta.UBOOffset)
		if isPush {
			active = meta.PushActive
			offset = uint64(meta.PushOffset)
		}
		if !active {
			continue
		}
		entries = append(entries, namedUniform{name: name, offset: offset, size: texSizeUniformBytes})
	}

	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })

	size := uint64(refl.UBOSize)
	stageUsage := refl.UBOStageUsage
	bindingVert, bindingFrag := refl.UBOBinding, refl.UBOBinding
	if isPush {
		size = uint64(refl.PushSize)
		stageUsage = refl.PushStageUsage
		bindingVert, bindingFrag = refl.PushBinding, refl.PushBinding
	}

	bb := &BufferBinding{
		StageUsage:  stageUsage,
		BindingVert: bindingVert,
		BindingFrag: bindingFrag,
		Size:        size,
	}
	for _, e := range entries {
		bb.Uniforms = append(bb.Uniforms, UniformBinding{Name: e.name, Offset: e.offset, Size: e.size})
	}
	return bb
}

func buildTextureBindings(
	refl *semantics.PassReflection,
	passWrap texture.WrapMode,
	passFilter texture.FilterMode,
	lutSamplers map[int]LUTSampler,
) []TextureBinding {
	nameFor := map[semantics.TextureAlias]string{}
	for name, alias := range refl.TextureNames {
		nameFor[alias] = name
	}

	var out []TextureBinding
	for sem, byIndex := range refl.Textures {
		for idx, meta := range byIndex {
			if !meta.TextureActive {
				continue
			}
			wrap, filter := passWrap, passFilter
			if sem == semantics.TextureUser {
				if s, ok := lutSamplers[idx]; ok {
					wrap, filter = s.Wrap, s.Filter
				}
			}
			out = append(out, TextureBinding{
				Name:       nameFor[semantics.TextureAlias{Semantic: sem, Index: idx}],
				Semantic:   sem,
				Index:      idx,
				Binding:    meta.Binding,
				StageUsage: meta.StageUsage,
				Wrap:       wrap,
				Filter:     filter,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Binding < out[j].Binding })
	return out
}
