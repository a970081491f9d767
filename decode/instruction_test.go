package decode

import "testing"

func TestDecodeRet(t *testing.T) {
	ins, err := Decode([]byte{0xC3}, 0x1000, 32)
	if err != nil {
		t.Fatalf("Decode(RET): %v", err)
	}
	if ins.Flags&FlagRet == 0 {
		t.Fatalf("RET missing FlagRet: %+v", ins)
	}
	if ins.Flags&FlagCflow == 0 {
		t.Fatalf("RET missing FlagCflow: %+v", ins)
	}
	if ins.Size != 1 {
		t.Fatalf("RET size = %d, want 1", ins.Size)
	}
}

func TestDecodeNop(t *testing.T) {
	ins, err := Decode([]byte{0x90}, 0x1000, 32)
	if err != nil {
		t.Fatalf("Decode(NOP): %v", err)
	}
	if ins.Flags&FlagNop == 0 {
		t.Fatalf("NOP missing FlagNop: %+v", ins)
	}
}

func TestDecodeInt3IsTrap(t *testing.T) {
	ins, err := Decode([]byte{0xCC}, 0x1000, 32)
	if err != nil {
		t.Fatalf("Decode(INT3): %v", err)
	}
	if !ins.Trap {
		t.Fatalf("INT3 not marked Trap: %+v", ins)
	}
}

func TestDecodeRelativeJmpResolvesTarget(t *testing.T) {
	// EB 00: JMP rel8 +0, a two byte instruction that jumps to its own
	// successor (the classic "jmp $+2" idiom).
	ins, err := Decode([]byte{0xEB, 0x00}, 0x1000, 32)
	if err != nil {
		t.Fatalf("Decode(JMP rel8): %v", err)
	}
	if ins.Flags&FlagJmp == 0 {
		t.Fatalf("JMP rel8 missing FlagJmp: %+v", ins)
	}
	if !ins.HasTarget {
		t.Fatalf("JMP rel8 did not resolve a target: %+v", ins)
	}
	want := uint64(0x1000 + 2)
	if ins.Target != want {
		t.Fatalf("JMP rel8 target = %#x, want %#x", ins.Target, want)
	}
}

func TestDecodeTruncatedReturnsInvalidOpcode(t *testing.T) {
	_, err := Decode(nil, 0x1000, 32)
	if err == nil {
		t.Fatalf("Decode(nil) did not error")
	}
}

func TestDecodeMnemonicAndOperandsSplit(t *testing.T) {
	// B8 2A 00 00 00: MOV EAX, 0x2A.
	ins, err := Decode([]byte{0xB8, 0x2A, 0x00, 0x00, 0x00}, 0x1000, 32)
	if err != nil {
		t.Fatalf("Decode(MOV EAX, imm32): %v", err)
	}
	if ins.Mnemonic == "" {
		t.Fatalf("MOV decoded with empty mnemonic: %+v", ins)
	}
	if ins.OpStr == "" {
		t.Fatalf("MOV decoded with empty operand string: %+v", ins)
	}
	if len(ins.Operands) != 2 {
		t.Fatalf("MOV decoded with %d operands, want 2", len(ins.Operands))
	}
	if ins.Operands[0].Kind != OperandReg {
		t.Fatalf("MOV first operand kind = %v, want OperandReg", ins.Operands[0].Kind)
	}
	if ins.Operands[1].Kind != OperandImm || ins.Operands[1].Imm != 0x2A {
		t.Fatalf("MOV second operand = %+v, want imm 0x2A", ins.Operands[1])
	}
}
