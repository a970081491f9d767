package disasm

import (
	"x86disasm/decode"
	"x86disasm/loader"
)

// disasmBB linearly disassembles one basic block starting at bb.Start,
// stopping at a control-flow terminator, an invalid instruction, or a
// nop/non-nop polarity boundary. It mutates bb in place.
func disasmBB(ds *DisasmSection, bb *BB) error {
	sec := ds.Sec
	if bb.Start < sec.VMA || bb.Start-sec.VMA >= sec.Size {
		return ErrBBOutOfSection
	}
	offset := bb.Start - sec.VMA

	bb.End = bb.Start
	ndisassembled := 0
	onlyNop := false

	for {
		if offset >= sec.Size {
			break
		}
		ins, err := decode.Decode(sec.Bytes[offset:], sec.VMA+offset, ds.bits)
		if err != nil {
			bb.Invalid = true
			bb.End++
			break
		}
		if ins.Size == 0 {
			break
		}

		effNop := isEffectiveNop(ins, ds.binType)

		if ndisassembled == 0 {
			onlyNop = effNop
		} else if effNop != onlyNop {
			// Polarity boundary: stop before appending this instruction.
			break
		}

		bb.Insns = append(bb.Insns, ins)
		bb.End += uint64(ins.Size)
		offset += uint64(ins.Size)
		ndisassembled++

		if effNop {
			bb.Padding = true
		}
		if ins.Privileged {
			bb.Privileged = true
		}
		if ins.Trap {
			bb.Trap = true
		}

		if ins.Flags&decode.FlagCflow != 0 {
			break
		}
	}

	if ndisassembled == 0 && !bb.Invalid {
		bb.Invalid = true
		bb.End = bb.Start + 1
	}
	return nil
}

// isEffectiveNop applies the binary-type-sensitive nop policy: a syntactic
// nop always counts; a semantic nop counts except on PE binaries, where
// MSVC rarely emits them; a trap (int3/ud2) counts only on PE, where it is
// used as inter-function padding.
func isEffectiveNop(ins decode.Instruction, binType loader.FileType) bool {
	raw := ins.Raw
	if decode.IsNop(raw) {
		return true
	}
	if decode.IsSemanticNop(raw) && binType != loader.FileTypePE {
		return true
	}
	if decode.IsTrap(raw) && binType == loader.FileTypePE {
		return true
	}
	return false
}
