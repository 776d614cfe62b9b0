package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retrofx/slangchain/crosscompile"
	"github.com/retrofx/slangchain/spirv"
)

// writeFile, encodeModule, fakeCompiler and fakeCrossCompiler mirror
// shader/load_test.go's fixture helpers; they can't be imported across
// package boundaries since shader's are unexported, so chain keeps its own
// copy to drive shader.Load end to end in its own tests.

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func encodeModule(members []string, textures []string) spirv.Words {
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

	return words
}

type fakeCompiler struct {
	words spirv.Words
}

func (f fakeCompiler) Compile(source string, stage spirv.Stage) (spirv.Words, error) {
	return f.words, nil
}

type fakeCrossCompiler struct{}

func (fakeCrossCompiler) Compile(words spirv.Words, stage spirv.Stage, opts crosscompile.Options) (crosscompile.CompiledStage, error) {
	tag := "vertex"
	if stage == spirv.StageFragment {
		tag = "fragment"
	}
	return crosscompile.CompiledStage{Source: "// compiled " + tag}, nil
}
