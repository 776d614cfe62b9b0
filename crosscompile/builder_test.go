package crosscompile

import (
	"testing"

	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/texture"
)

func TestBuildPassBindingsUBOAndTextures(t *testing.T) {
	refl := &semantics.PassReflection{
		UBOSize:          80,
		UBOBinding:       0,
		UBOStageUsage:    semantics.StageUsageVertex | semantics.StageUsageFragment,
		Textures:         map[semantics.TextureSemantic]map[int]semantics.TextureSemanticMeta{},
		Buffers:          map[semantics.BufferSemantic]map[int]semantics.SemanticMeta{},
		UniformNames:     map[string]semantics.BufferAlias{},
		TextureNames:     map[string]semantics.TextureAlias{},
		TextureSizeNames: map[string]semantics.TextureAlias{},
	}

	refl.Buffers[semantics.BufferMVP] = map[int]semantics.SemanticMeta{
		0: {UBOOffset: 0, NumComponents: 16, UBOActive: true},
	}
	refl.UniformNames["MVP"] = semantics.BufferAlias{Semantic: semantics.BufferMVP, Index: 0}

	refl.Buffers[semantics.BufferFloatParameter] = map[int]semantics.SemanticMeta{
		0: {UBOOffset: 64, NumComponents: 1, UBOActive: true},
	}
	refl.UniformNames["SHARPNESS"] = semantics.BufferAlias{Semantic: semantics.BufferFloatParameter, Index: 0}

	refl.Textures[semantics.TextureSource] = map[int]semantics.TextureSemanticMeta{
		0: {Binding: 1, TextureActive: true, StageUsage: semantics.StageUsageFragment},
	}
	refl.TextureNames["Source"] = semantics.TextureAlias{Semantic: semantics.TextureSource, Index: 0}

	refl.Textures[semantics.TextureUser] = map[int]semantics.TextureSemanticMeta{
		0: {Binding: 2, TextureActive: true, StageUsage: semantics.StageUsageFragment},
	}
	refl.TextureNames["Palette"] = semantics.TextureAlias{Semantic: semantics.TextureUser, Index: 0}

	luts := map[int]LUTSampler{0: {Wrap: texture.WrapRepeat, Filter: texture.FilterLinear}}

	pb := BuildPassBindings(refl, texture.FormatR8g8b8a8Unorm, texture.WrapBorder, texture.FilterNearest, luts)

	if len(pb.Buffers) != 1 {
		t.Fatalf("expected 1 buffer binding (UBO only), got %d", len(pb.Buffers))
	}
	ubo := pb.Buffers[0]
	if ubo.Size != 80 {
		t.Errorf("UBO size = %d, want 80", ubo.Size)
	}
	if len(ubo.Uniforms) != 2 {
		t.Fatalf("expected 2 uniforms, got %d", len(ubo.Uniforms))
	}
	if ubo.Uniforms[0].Name != "MVP" || ubo.Uniforms[0].Offset != 0 {
		t.Errorf("uniform[0] = %+v", ubo.Uniforms[0])
	}
	if ubo.Uniforms[1].Name != "SHARPNESS" || ubo.Uniforms[1].Offset != 64 {
		t.Errorf("uniform[1] = %+v", ubo.Uniforms[1])
	}

	if len(pb.Textures) != 2 {
		t.Fatalf("expected 2 texture bindings, got %d", len(pb.Textures))
	}
	var source, palette *TextureBinding
	for i := range pb.Textures {
		switch pb.Textures[i].Name {
		case "Source":
			source = &pb.Textures[i]
		case "Palette":
			palette = &pb.Textures[i]
		}
	}
	if source == nil || source.Wrap != texture.WrapBorder || source.Filter != texture.FilterNearest {
		t.Errorf("Source binding = %+v, want pass defaults", source)
	}
	if palette == nil || palette.Wrap != texture.WrapRepeat || palette.Filter != texture.FilterLinear {
		t.Errorf("Palette binding = %+v, want LUT's own sampler", palette)
	}
}

func TestBuildPassBindingsNoPushConstant(t *testing.T) {
	refl := &semantics.PassReflection{
		Textures:         map[semantics.TextureSemantic]map[int]semantics.TextureSemanticMeta{},
		Buffers:          map[semantics.BufferSemantic]map[int]semantics.SemanticMeta{},
		UniformNames:     map[string]semantics.BufferAlias{},
		TextureNames:     map[string]semantics.TextureAlias{},
		TextureSizeNames: map[string]semantics.TextureAlias{},
	}
	pb := BuildPassBindings(refl, texture.FormatR8g8b8a8Unorm, texture.WrapBorder, texture.FilterLinear, nil)
	if len(pb.Buffers) != 0 {
		t.Fatalf("expected no buffer bindings for empty reflection, got %d", len(pb.Buffers))
	}
	if len(pb.Textures) != 0 {
		t.Fatalf("expected no texture bindings, got %d", len(pb.Textures))
	}
}
