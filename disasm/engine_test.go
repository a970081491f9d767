package disasm_test

import (
	"testing"

	"x86disasm/decode"
	"x86disasm/disasm"
	"x86disasm/loader"
	"x86disasm/strategy"
)

func binaryWith(bits int, typ loader.FileType, vma uint64, bytes []byte) *loader.Binary {
	return &loader.Binary{
		Arch: loader.ArchX86,
		Bits: bits,
		Type: typ,
		Sections: []*loader.Section{
			{Name: ".text", Type: loader.SectionCode, VMA: vma, Size: uint64(len(bytes)), Bytes: bytes},
		},
	}
}

func TestEngineRejectsNonX86(t *testing.T) {
	bin := &loader.Binary{Arch: loader.ArchUnknown, Bits: 64, Type: loader.FileTypeELF}
	if _, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{}); err != disasm.ErrUnsupportedArch {
		t.Fatalf("Disasm() error = %v, want ErrUnsupportedArch", err)
	}
}

func TestEngineRejectsBadBitWidth(t *testing.T) {
	bin := &loader.Binary{Arch: loader.ArchX86, Bits: 8, Type: loader.FileTypeELF}
	if _, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{}); err != disasm.ErrUnsupportedArch {
		t.Fatalf("Disasm() error = %v, want ErrUnsupportedArch", err)
	}
}

func TestEngineSingleRet(t *testing.T) {
	bin := binaryWith(64, loader.FileTypeELF, 0x1000, []byte{0xC3})
	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	bbs := sections[0].BBs
	if len(bbs) != 1 {
		t.Fatalf("got %d committed blocks, want 1", len(bbs))
	}
	if bbs[0].Start != 0x1000 || bbs[0].End != 0x1001 {
		t.Fatalf("bb = [%#x,%#x), want [0x1000,0x1001)", bbs[0].Start, bbs[0].End)
	}
}

func TestEngineCallThenRetDiscoversBothBlocks(t *testing.T) {
	bin := binaryWith(64, loader.FileTypeELF, 0x1000, []byte{0xE8, 0x00, 0x00, 0x00, 0x00, 0xC3})
	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	starts := map[uint64]bool{}
	for _, bb := range sections[0].BBs {
		starts[bb.Start] = true
	}
	if !starts[0x1000] {
		t.Fatalf("call block not discovered: %v", starts)
	}
	if !starts[0x1005] {
		t.Fatalf("fall-through ret block not discovered: %v", starts)
	}
}

func TestEngineOnlyCodeSectionsSkipsData(t *testing.T) {
	bin := &loader.Binary{
		Arch: loader.ArchX86, Bits: 64, Type: loader.FileTypeELF,
		Sections: []*loader.Section{
			{Name: ".text", Type: loader.SectionCode, VMA: 0x1000, Size: 1, Bytes: []byte{0xC3}},
			{Name: ".data", Type: loader.SectionData, VMA: 0x2000, Size: 1, Bytes: []byte{0x00}},
		},
	}
	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{OnlyCodeSections: true})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1 (data section should be skipped)", len(sections))
	}
	if sections[0].Sec.Name != ".text" {
		t.Fatalf("kept section = %q, want .text", sections[0].Sec.Name)
	}
}

func TestEngineInvariantsHoldAcrossCommittedBlocks(t *testing.T) {
	bin := binaryWith(64, loader.FileTypeELF, 0x1000, []byte{0x90, 0x90, 0x90, 0xE8, 0x00, 0x00, 0x00, 0x00, 0xC3})
	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	sec := sections[0]
	for _, bb := range sec.BBs {
		if bb.Start < sec.Sec.VMA || bb.End > sec.Sec.VMA+sec.Sec.Size {
			t.Fatalf("bb [%#x,%#x) escapes section bounds", bb.Start, bb.End)
		}
		if !bb.Invalid {
			var sum uint64
			for _, ins := range bb.Insns {
				sum += uint64(ins.Size)
			}
			if sum != bb.End-bb.Start {
				t.Fatalf("bb [%#x,%#x): instruction sizes sum to %d, want %d", bb.Start, bb.End, sum, bb.End-bb.Start)
			}
		}
		if bb.End <= bb.Start {
			t.Fatalf("bb [%#x,%#x) did not make forward progress", bb.Start, bb.End)
		}

		hasNop, hasNonNop := false, false
		for _, ins := range bb.Insns {
			if ins.Flags&decode.FlagNop != 0 {
				hasNop = true
			} else {
				hasNonNop = true
			}
		}
		if hasNop && hasNonNop {
			t.Fatalf("bb [%#x,%#x) mixes nop and non-nop instructions", bb.Start, bb.End)
		}
	}
}

// TestEngineRoundTripsCommittedInstructions re-decodes every committed
// instruction's own byte slice and checks the result renders the same
// mnemonic and operand string as the first decode, per spec.md §8's
// round-trip property.
func TestEngineRoundTripsCommittedInstructions(t *testing.T) {
	bin := binaryWith(64, loader.FileTypeELF, 0x1000, []byte{0x90, 0x90, 0x90, 0xE8, 0x00, 0x00, 0x00, 0x00, 0xC3})
	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, disasm.Options{})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}

	checked := 0
	for _, sec := range sections {
		for _, bb := range sec.BBs {
			for _, ins := range bb.Insns {
				off := ins.Start - sec.Sec.VMA
				again, err := decode.Decode(sec.Sec.Bytes[off:off+uint64(ins.Size)], ins.Start, 64)
				if err != nil {
					t.Fatalf("re-decode of %#x failed: %v", ins.Start, err)
				}
				if again.Mnemonic != ins.Mnemonic || again.OpStr != ins.OpStr {
					t.Fatalf("re-decode of %#x = %q %q, want %q %q", ins.Start, again.Mnemonic, again.OpStr, ins.Mnemonic, ins.OpStr)
				}
				checked++
			}
		}
	}
	if checked == 0 {
		t.Fatalf("no committed instructions to round-trip")
	}
}
