package decode

import "golang.org/x/arch/x86/x86asm"

// The x86asm package exposes no Capstone-style instruction groups, so each
// predicate below is an explicit Op membership table — the same
// keyed-lookup-table idiom the 6502 teacher used for its opcode metadata,
// just keyed on x86asm.Op instead of a raw opcode byte.

var jumpOps = map[x86asm.Op]bool{
	x86asm.JMP: true,
}

var condJumpOps = map[x86asm.Op]bool{
	x86asm.JA: true, x86asm.JAE: true, x86asm.JB: true, x86asm.JBE: true,
	x86asm.JE: true, x86asm.JG: true, x86asm.JGE: true, x86asm.JL: true,
	x86asm.JLE: true, x86asm.JNE: true, x86asm.JNO: true, x86asm.JNP: true,
	x86asm.JNS: true, x86asm.JO: true, x86asm.JP: true, x86asm.JS: true,
	x86asm.JCXZ: true, x86asm.JECXZ: true, x86asm.JRCXZ: true,
}

var callOps = map[x86asm.Op]bool{
	x86asm.CALL: true, x86asm.LCALL: true,
}

var retOps = map[x86asm.Op]bool{
	x86asm.RET: true, x86asm.LRET: true,
}

var iretOps = map[x86asm.Op]bool{
	x86asm.IRET: true, x86asm.IRETD: true, x86asm.IRETQ: true,
}

var nopOps = map[x86asm.Op]bool{
	x86asm.NOP: true, x86asm.FNOP: true,
}

var trapOps = map[x86asm.Op]bool{
	x86asm.INT3: true, x86asm.UD2: true,
}

var privilegedOps = map[x86asm.Op]bool{
	x86asm.HLT: true, x86asm.IN: true, x86asm.OUT: true,
	x86asm.INSB: true, x86asm.INSW: true, x86asm.INSD: true,
	x86asm.OUTSB: true, x86asm.OUTSW: true, x86asm.OUTSD: true,
	x86asm.RDMSR: true, x86asm.WRMSR: true, x86asm.RDPMC: true, x86asm.RDTSC: true,
	x86asm.LGDT: true, x86asm.LLDT: true, x86asm.LTR: true, x86asm.LMSW: true,
	x86asm.CLTS: true, x86asm.INVD: true, x86asm.INVLPG: true, x86asm.WBINVD: true,
}

// IsNop reports whether inst is a syntactic NOP or FNOP.
func IsNop(inst x86asm.Inst) bool {
	return nopOps[inst.Op]
}

// IsSemanticNop recognizes three idioms that have no observable effect:
// MOV reg,reg with identical registers; XCHG reg,reg with identical
// registers; and LEA r,[r] or LEA r,[r + 0*index + 0] with an invalid
// segment and zero displacement.
func IsSemanticNop(inst x86asm.Inst) bool {
	switch inst.Op {
	case x86asm.MOV, x86asm.XCHG:
		dst, ok1 := inst.Args[0].(x86asm.Reg)
		src, ok2 := inst.Args[1].(x86asm.Reg)
		return ok1 && ok2 && dst == src
	case x86asm.LEA:
		dst, ok := inst.Args[0].(x86asm.Reg)
		if !ok {
			return false
		}
		mem, ok := inst.Args[1].(x86asm.Mem)
		if !ok {
			return false
		}
		if mem.Segment != 0 || mem.Disp != 0 {
			return false
		}
		// [r] alone, or [r + (no-index)*scale + 0]: the zero Reg value
		// means "no register" for Index, which is how x86asm represents
		// what other disassemblers spell out as the eiz/riz zero index.
		return mem.Base == dst && mem.Index == 0
	default:
		return false
	}
}

// IsTrap reports whether inst is INT3 or UD2.
func IsTrap(inst x86asm.Inst) bool {
	return trapOps[inst.Op]
}

// IsCflow reports whether inst belongs to the JUMP, CALL, RET, or IRET
// groups.
func IsCflow(inst x86asm.Inst) bool {
	return jumpOps[inst.Op] || condJumpOps[inst.Op] || callOps[inst.Op] ||
		retOps[inst.Op] || iretOps[inst.Op]
}

// IsCall reports whether inst is CALL or LCALL.
func IsCall(inst x86asm.Inst) bool {
	return callOps[inst.Op]
}

// IsRet reports whether inst is RET or LRET.
func IsRet(inst x86asm.Inst) bool {
	return retOps[inst.Op]
}

// IsUncondJmp reports whether inst is an unconditional JMP.
func IsUncondJmp(inst x86asm.Inst) bool {
	return jumpOps[inst.Op]
}

// IsCondCflow reports whether inst is a conditional jump (Jcc,
// JCXZ/JECXZ/JRCXZ). Explicitly excludes unconditional JMP.
func IsCondCflow(inst x86asm.Inst) bool {
	return condJumpOps[inst.Op]
}

// IsPrivileged reports whether inst requires a privileged execution mode.
func IsPrivileged(inst x86asm.Inst) bool {
	return privilegedOps[inst.Op]
}

// IsIndirect reports whether inst is control flow whose target is a
// register or memory operand rather than an immediate/relative offset.
func IsIndirect(inst x86asm.Inst) bool {
	if !IsCflow(inst) {
		return false
	}
	switch inst.Args[0].(type) {
	case x86asm.Reg, x86asm.Mem:
		return true
	default:
		return false
	}
}

// BranchTarget returns the absolute branch target VMA for a control-flow
// instruction whose first argument is a PC-relative offset (resolved against
// pc plus the instruction length) or an immediate (taken as-is), and whether
// one was found. Indirect (register/memory) targets are not resolved here — the
// core does not resolve indirect targets.
func BranchTarget(inst x86asm.Inst, pc uint64) (uint64, bool) {
	if !IsCflow(inst) {
		return 0, false
	}
	switch arg := inst.Args[0].(type) {
	case x86asm.Rel:
		return uint64(int64(pc) + int64(inst.Len) + int64(arg)), true
	case x86asm.Imm:
		return uint64(arg), true
	default:
		return 0, false
	}
}
