package semantics

import (
	"testing"

	"github.com/retrofx/slangchain/spirv"
)

// buildUBOModule constructs a minimal SPIR-V module declaring one UBO
// struct with the given member names, each a vec4 at a 16-byte stride, plus
// one combined-image-sampler variable per texture name.
func buildUBOModule(t *testing.T, members []string, textures []string) *spirv.Module {
	t.Helper()

	words := spirv.Words{0x07230203, 0x00010300, 0, 1000, 0}
	nextID := uint32(1)
	emit := func(opcode uint32, operands ...uint32) {
		words = append(words, (uint32(len(operands)+1)<<16)|opcode)
		words = append(words, operands...)
	}
	emitStr := func(opcode uint32, idOperands []uint32, s string) {
		b := append([]byte(s), 0)
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
		strWords := make([]uint32, len(b)/4)
		for i := range strWords {
			strWords[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		}
		ops := append(append([]uint32{}, idOperands...), strWords...)
		emit(opcode, ops...)
	}

	const (
		opName             = 5
		opMemberName       = 6
		opTypeFloat        = 22
		opTypeVector       = 23
		opTypeImage        = 25
		opTypeSampledImage = 27
		opTypeStruct       = 30
		opTypePointer      = 32
		opVariable         = 59
		opDecorate         = 71
		opMemberDecorate   = 72
	)

	f32 := nextID
	nextID++
	emit(opTypeFloat, f32, 32)

	vec4 := nextID
	nextID++
	emit(opTypeVector, vec4, f32, 4)

	memberTypes := make([]uint32, len(members))
	for i := range members {
		memberTypes[i] = vec4
	}

	structID := nextID
	nextID++
	emit(opTypeStruct, append([]uint32{structID}, memberTypes...)...)

	for i, name := range members {
		emitStr(opMemberName, []uint32{structID, uint32(i)}, name)
		emit(opMemberDecorate, structID, uint32(i), uint32(spirv.DecorationOffset), uint32(i*16))
	}

	ptrType := nextID
	nextID++
	emit(opTypePointer, ptrType, uint32(spirv.StorageClassUniform), structID)

	uboVar := nextID
	nextID++
	emit(opVariable, ptrType, uboVar, uint32(spirv.StorageClassUniform))
	emit(opDecorate, uboVar, uint32(spirv.DecorationBinding), 0)

	imgType := nextID
	nextID++
	emit(opTypeImage, imgType, f32)
	sampledImgType := nextID
	nextID++
	emit(opTypeSampledImage, sampledImgType, imgType)
	texPtrType := nextID
	nextID++
	emit(opTypePointer, texPtrType, uint32(spirv.StorageClassUniformConstant), sampledImgType)

	for i, name := range textures {
		texVar := nextID
		nextID++
		emit(opVariable, texPtrType, texVar, uint32(spirv.StorageClassUniformConstant))
		emitStr(opName, []uint32{texVar}, name)
		emit(opDecorate, texVar, uint32(spirv.DecorationBinding), uint32(i+1))
	}

	m, err := spirv.Decode(words)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return m
}

func TestResolvePassBasicSemantics(t *testing.T) {
	members := []string{"MVP", "OutputSize", "FrameCount", "FrameDirection", "SHARPNESS"}
	textures := []string{"Source"}

	ctx := PassContext{
		PassIndex:  0,
		Parameters: []ParameterDecl{{Name: "SHARPNESS", Index: 0}},
	}

	m := buildUBOModule(t, members, textures)

	r, err := ResolvePass(ctx, m, m, "pass0.slang")
	if err != nil {
		t.Fatalf("ResolvePass: %v", err)
	}

	if _, ok := r.UniformNames["MVP"]; !ok {
		t.Fatal("MVP not resolved")
	}
	if r.UniformNames["MVP"].Semantic != BufferMVP {
		t.Errorf("MVP semantic = %v", r.UniformNames["MVP"].Semantic)
	}
	if r.UniformNames["SHARPNESS"].Semantic != BufferFloatParameter {
		t.Errorf("SHARPNESS semantic = %v", r.UniformNames["SHARPNESS"].Semantic)
	}
	if _, ok := r.TextureNames["Source"]; !ok {
		t.Fatal("Source texture not resolved")
	}
	meta := r.textureMeta(TextureSource, 0)
	if !meta.TextureActive {
		t.Error("Source texture not marked active")
	}
	if r.UBOStageUsage&StageUsageVertex == 0 || r.UBOStageUsage&StageUsageFragment == 0 {
		t.Errorf("UBOStageUsage = %v, want both stages", r.UBOStageUsage)
	}
}

func TestResolvePassUnresolvedUniformFails(t *testing.T) {
	m := buildUBOModule(t, []string{"Mystery"}, nil)
	ctx := PassContext{PassIndex: 0}

	if _, err := ResolvePass(ctx, m, m, "pass0.slang"); err == nil {
		t.Fatal("expected error for unresolved uniform name")
	}
}

func TestResolvePassHistoryAndPassOutput(t *testing.T) {
	members := []string{"OriginalSize1", "PassOutputSize0"}
	m := buildUBOModule(t, members, []string{"OriginalHistory1", "PassOutput0"})

	ctx := PassContext{PassIndex: 2}
	r, err := ResolvePass(ctx, m, m, "pass2.slang")
	if err != nil {
		t.Fatalf("ResolvePass: %v", err)
	}

	meta := r.textureMeta(TextureOriginalHistory, 1)
	if !meta.TextureActive || !meta.UBOActive {
		t.Errorf("OriginalHistory1 meta = %+v", meta)
	}
	meta = r.textureMeta(TexturePassOutput, 0)
	if !meta.TextureActive || !meta.UBOActive {
		t.Errorf("PassOutput0 meta = %+v", meta)
	}
}

func TestResolvePassRejectsForwardReference(t *testing.T) {
	members := []string{"PassOutputSize2"}
	m := buildUBOModule(t, members, []string{"PassOutput2"})

	ctx := PassContext{PassIndex: 1}
	if _, err := ResolvePass(ctx, m, m, "pass1.slang"); err == nil {
		t.Fatal("expected error for forward PassOutput reference")
	}
}

func TestResolvePassAllowsSelfFeedback(t *testing.T) {
	members := []string{"PassFeedbackSize0"}
	m := buildUBOModule(t, members, []string{"PassFeedback0"})

	ctx := PassContext{PassIndex: 0, FeedbackPasses: map[int]bool{0: true}}
	if _, err := ResolvePass(ctx, m, m, "pass0.slang"); err != nil {
		t.Fatalf("expected self-feedback reference to be allowed: %v", err)
	}
}
