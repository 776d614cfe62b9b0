package spirv

import "testing"

func encodeString(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return out
}

func inst(opcode uint32, operands ...uint32) []uint32 {
	wordCount := uint32(len(operands) + 1)
	return append([]uint32{(wordCount << 16) | opcode}, operands...)
}

func buildModule(instructions ...[]uint32) Words {
	words := Words{magicNumber, 0x00010300, 0, 100, 0}
	for _, in := range instructions {
		words = append(words, in...)
	}
	return words
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode(Words{0, 0, 0, 0, 0}); err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestDecodeNamesAndDecorations(t *testing.T) {
	nameOp := append([]uint32{10}, encodeString("Source")...)
	words := buildModule(
		inst(opName, nameOp...),
		inst(opDecorate, 10, uint32(DecorationBinding), 3),
		inst(opDecorate, 10, uint32(DecorationDescriptorSet), 0),
	)

	m, err := Decode(words)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Names[10] != "Source" {
		t.Errorf("Names[10] = %q, want Source", m.Names[10])
	}
	if m.Decorations[10][DecorationBinding] != 3 {
		t.Errorf("Binding = %d, want 3", m.Decorations[10][DecorationBinding])
	}
	if m.Decorations[10][DecorationDescriptorSet] != 0 {
		t.Errorf("DescriptorSet = %d, want 0", m.Decorations[10][DecorationDescriptorSet])
	}
}

func TestDecodeStructAndMemberDecorate(t *testing.T) {
	words := buildModule(
		inst(opTypeFloat, 1, 32),
		inst(opTypeVector, 2, 1, 4),
		inst(opTypeStruct, 3, 2, 2),
		inst(opMemberDecorate, 3, 0, uint32(DecorationOffset), 0),
		inst(opMemberDecorate, 3, 1, uint32(DecorationOffset), 16),
		inst(opTypePointer, 4, uint32(StorageClassUniform), 3),
		inst(opVariable, 4, 5, uint32(StorageClassUniform)),
	)

	m, err := Decode(words)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	st, ok := m.Types[3]
	if !ok || st.Kind != TypeKindStruct {
		t.Fatalf("expected struct type at id 3, got %+v", st)
	}
	if len(st.Members) != 2 || st.Members[0] != 2 || st.Members[1] != 2 {
		t.Errorf("struct members = %v", st.Members)
	}
	if m.MemberDecorations[3][1][DecorationOffset] != 16 {
		t.Errorf("member 1 offset = %d, want 16", m.MemberDecorations[3][1][DecorationOffset])
	}

	v, ok := m.Variables[5]
	if !ok {
		t.Fatal("expected variable id 5")
	}
	if v.Storage != StorageClassUniform || v.TypeID != 4 {
		t.Errorf("variable = %+v", v)
	}
}

func TestDecodeEntryPoint(t *testing.T) {
	epWords := buildModule(
		inst(opEntryPoint, append([]uint32{0, 7}, encodeString("main")...)...),
	)
	m, err := Decode(epWords)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.EntryPoints) != 1 || m.EntryPoints[0].Name != "main" || m.EntryPoints[0].ID != 7 {
		t.Errorf("entry points = %+v", m.EntryPoints)
	}
}
