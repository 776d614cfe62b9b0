package spirv

import (
	"bytes"
	"encoding/binary"

	"github.com/retrofx/slangchain/core"
)

const magicNumber = 0x07230203

// Opcode numbers below are the subset of the SPIR-V instruction set the
// reflection engine needs to walk: names, decorations, type declarations
// and variables. Numbering cross-checked against gogpu/naga's internal
// disassembly table used by its own backend snapshot tests.
const (
	opName             = 5
	opMemberName       = 6
	opEntryPoint       = 15
	opTypeVoid         = 19
	opTypeBool         = 20
	opTypeInt          = 21
	opTypeFloat        = 22
	opTypeVector       = 23
	opTypeMatrix       = 24
	opTypeImage        = 25
	opTypeSampler      = 26
	opTypeSampledImage = 27
	opTypeArray        = 28
	opTypeRuntimeArray = 29
	opTypeStruct       = 30
	opTypePointer      = 32
	opVariable         = 59
	opDecorate         = 71
	opMemberDecorate   = 72
)

// Decoration is a SPIR-V decoration kind, numbered per the SPIR-V spec.
type Decoration uint32

const (
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

// StorageClass is a SPIR-V storage class, numbered per the SPIR-V spec.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassPushConstant    StorageClass = 9
)

// TypeKind classifies a SPIR-V OpType* declaration relevant to reflection.
type TypeKind int

const (
	TypeKindOther TypeKind = iota
	TypeKindVoid
	TypeKindBool
	TypeKindInt
	TypeKindFloat
	TypeKindVector
	TypeKindMatrix
	TypeKindImage
	TypeKindSampledImage
	TypeKindArray
	TypeKindRuntimeArray
	TypeKindStruct
	TypeKindPointer
)

// TypeInfo describes one declared SPIR-V type by result id.
type TypeInfo struct {
	ID        uint32
	Kind      TypeKind
	Width     int    // bit width, for Int/Float
	Signed    bool   // for Int
	Component uint32 // element/component type id, for Vector/Matrix/Array/Pointer
	Count     uint32 // component/column count, for Vector/Matrix
	Members   []uint32 // member type ids in declaration order, for Struct

	Storage StorageClass // for Pointer
}

// Variable describes one OpVariable (module-scope resource binding
// candidate).
type Variable struct {
	ID      uint32
	TypeID  uint32 // pointer type id
	Storage StorageClass
}

// EntryPoint describes one OpEntryPoint.
type EntryPoint struct {
	ExecutionModel uint32
	ID             uint32
	Name           string
}

// Module is the decoded structure a compiled SPIR-V binary yields: enough
// to resolve binding/offset/name triples without a full SPIR-V toolchain.
type Module struct {
	Names             map[uint32]string
	MemberNames       map[uint32]map[uint32]string
	Decorations       map[uint32]map[Decoration]uint32
	MemberDecorations map[uint32]map[uint32]map[Decoration]uint32
	Types             map[uint32]TypeInfo
	Variables         map[uint32]Variable
	EntryPoints       []EntryPoint
}

// Decode walks a SPIR-V word stream and extracts the Module structure the
// reflection engine needs. It does not validate the module beyond the
// header magic number and well-formed instruction lengths.
func Decode(words Words) (*Module, error) {
	if len(words) < 5 || words[0] != magicNumber {
		return nil, core.NewError(core.ErrParse, "", "not a SPIR-V module (bad magic number)")
	}

	m := &Module{
		Names:             map[uint32]string{},
		MemberNames:       map[uint32]map[uint32]string{},
		Decorations:       map[uint32]map[Decoration]uint32{},
		MemberDecorations: map[uint32]map[uint32]map[Decoration]uint32{},
		Types:             map[uint32]TypeInfo{},
		Variables:         map[uint32]Variable{},
	}

	i := 5 // skip magic, version, generator, bound, schema
	for i < len(words) {
		head := words[i]
		wordCount := int(head >> 16)
		opcode := head & 0xffff
		if wordCount == 0 || i+wordCount > len(words) {
			return nil, core.NewError(core.ErrParse, "", "malformed instruction at word %d", i)
		}
		ops := words[i+1 : i+wordCount]

		switch opcode {
		case opName:
			m.Names[ops[0]] = decodeString(ops[1:])
		case opMemberName:
			target, member := ops[0], ops[1]
			if m.MemberNames[target] == nil {
				m.MemberNames[target] = map[uint32]string{}
			}
			m.MemberNames[target][member] = decodeString(ops[2:])
		case opEntryPoint:
			m.EntryPoints = append(m.EntryPoints, EntryPoint{
				ExecutionModel: ops[0],
				ID:             ops[1],
				Name:           decodeString(ops[2:]),
			})
		case opDecorate:
			target := ops[0]
			dec := Decoration(ops[1])
			var value uint32
			if len(ops) > 2 {
				value = ops[2]
			}
			if m.Decorations[target] == nil {
				m.Decorations[target] = map[Decoration]uint32{}
			}
			m.Decorations[target][dec] = value
		case opMemberDecorate:
			target, member := ops[0], ops[1]
			dec := Decoration(ops[2])
			var value uint32
			if len(ops) > 3 {
				value = ops[3]
			}
			if m.MemberDecorations[target] == nil {
				m.MemberDecorations[target] = map[uint32]map[Decoration]uint32{}
			}
			if m.MemberDecorations[target][member] == nil {
				m.MemberDecorations[target][member] = map[Decoration]uint32{}
			}
			m.MemberDecorations[target][member][dec] = value
		case opTypeVoid:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindVoid}
		case opTypeBool:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindBool}
		case opTypeInt:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindInt, Width: int(ops[1]), Signed: ops[2] != 0}
		case opTypeFloat:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindFloat, Width: int(ops[1])}
		case opTypeVector:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindVector, Component: ops[1], Count: ops[2]}
		case opTypeMatrix:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindMatrix, Component: ops[1], Count: ops[2]}
		case opTypeImage:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindImage, Component: ops[1]}
		case opTypeSampler:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindOther}
		case opTypeSampledImage:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindSampledImage, Component: ops[1]}
		case opTypeArray:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindArray, Component: ops[1], Count: ops[2]}
		case opTypeRuntimeArray:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindRuntimeArray, Component: ops[1]}
		case opTypeStruct:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindStruct, Members: append([]uint32{}, ops[1:]...)}
		case opTypePointer:
			m.Types[ops[0]] = TypeInfo{ID: ops[0], Kind: TypeKindPointer, Storage: StorageClass(ops[1]), Component: ops[2]}
		case opVariable:
			// Result type is ops[0] (index -2 from instruction start), but the
			// operand layout for OpVariable is: result-type, result-id,
			// storage-class, [initializer]. ops here excludes the opcode word
			// but still includes result-type as ops[0].
			m.Variables[ops[1]] = Variable{ID: ops[1], TypeID: ops[0], Storage: StorageClass(ops[2])}
		}

		i += wordCount
	}

	return m, nil
}

// decodeString reads a NUL-terminated UTF-8 string packed little-endian
// across SPIR-V literal-string operand words.
func decodeString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], w)
		buf = append(buf, b[:]...)
	}
	if n := bytes.IndexByte(buf, 0); n >= 0 {
		buf = buf[:n]
	}
	return string(buf)
}
