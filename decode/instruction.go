// Package decode wraps golang.org/x/arch/x86/x86asm into the Instruction
// and Operand model the disassembly engine consumes, and exposes the
// per-instruction classifier predicates (nop, trap, call, ret, conditional
// and unconditional jump, privileged, indirect) as pure functions over a
// decoded instruction.
package decode

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"
)

// Flag is a bit set of control-flow and structural properties of an
// instruction.
type Flag uint16

const (
	FlagNop Flag = 1 << iota
	FlagRet
	FlagJmp
	FlagCond
	FlagCflow
	FlagCall
	FlagIndirect
)

// OperandKind distinguishes the five operand variants the engine's data
// model recognizes.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandReg
	OperandImm
	OperandMem
	OperandFP
)

// Operand is a tagged union over REG/IMM/MEM/FP/NONE, plus its byte size.
type Operand struct {
	Kind OperandKind
	Size int

	Reg x86asm.Reg // valid when Kind == OperandReg
	Imm int64       // valid when Kind == OperandImm

	// Mem fields, valid when Kind == OperandMem. Segment/Base/Index mirror
	// x86asm.Mem; Index == 0 represents "no index register" (what other
	// disassemblers spell eiz/riz).
	Segment x86asm.Reg
	Base    x86asm.Reg
	Index   x86asm.Reg
	Scale   uint8
	Disp    int64

	FP float64 // valid when Kind == OperandFP
}

// Instruction is one decoded x86 instruction, positioned at a VMA within a
// section.
type Instruction struct {
	Start      uint64
	Size       int
	AddrSize   int
	Mnemonic   string
	OpStr      string
	Flags      Flag
	Privileged bool
	Trap       bool
	Target     uint64
	HasTarget  bool
	Operands   []Operand

	Raw x86asm.Inst // the underlying decode, retained for round-trip checks
}

// ErrInvalidOpcode is reported when the decoder cannot recognize the bytes
// at the current position as any instruction.
var ErrInvalidOpcode = errors.New("decode: invalid opcode")

// Decode decodes exactly one instruction from src, which must begin at vma.
// mode is the processor's bit width (16, 32, or 64). A decode failure is
// reported as ErrInvalidOpcode; this is an expected outcome during linear
// sweep, not a fatal error.
func Decode(src []byte, vma uint64, mode int) (Instruction, error) {
	raw, err := x86asm.Decode(src, mode)
	if err != nil {
		return Instruction{}, errors.Wrap(ErrInvalidOpcode, err.Error())
	}
	if raw.Len == 0 {
		return Instruction{}, nil
	}

	mnemonic, opStr := intelMnemonicAndOperands(raw, vma)
	ins := Instruction{
		Start:      vma,
		Size:       raw.Len,
		AddrSize:   raw.AddrSize,
		Mnemonic:   mnemonic,
		OpStr:      opStr,
		Privileged: IsPrivileged(raw),
		Trap:       IsTrap(raw),
		Raw:        raw,
	}

	if IsNop(raw) {
		ins.Flags |= FlagNop
	}
	if IsRet(raw) {
		ins.Flags |= FlagRet
	}
	if IsUncondJmp(raw) {
		ins.Flags |= FlagJmp
	}
	if IsCondCflow(raw) {
		ins.Flags |= FlagCond
	}
	if IsCflow(raw) {
		ins.Flags |= FlagCflow
	}
	if IsCall(raw) {
		ins.Flags |= FlagCall
	}
	if IsIndirect(raw) {
		ins.Flags |= FlagIndirect
	}

	if ins.Flags&FlagCflow != 0 {
		if tgt, ok := BranchTarget(raw, vma); ok {
			ins.Target = tgt
			ins.HasTarget = true
		}
	}

	for _, arg := range raw.Args {
		if arg == nil {
			break
		}
		ins.Operands = append(ins.Operands, toOperand(arg))
	}

	return ins, nil
}

// intelMnemonicAndOperands renders inst in Intel syntax and splits the
// result into mnemonic and operand portions. IntelSyntax occasionally
// rewrites the mnemonic itself (case, AT&T-ism removal, the LCALL/LJMP
// argument swap), so the split is done on the rendered string's first space
// rather than by stripping inst.Op.String() as a prefix — that string is
// upper-case and the two would otherwise never match.
func intelMnemonicAndOperands(inst x86asm.Inst, pc uint64) (mnemonic, operands string) {
	full := x86asm.IntelSyntax(inst, pc, nil)
	i := strings.IndexByte(full, ' ')
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i+1:])
}

func toOperand(arg x86asm.Arg) Operand {
	switch a := arg.(type) {
	case x86asm.Reg:
		return Operand{Kind: OperandReg, Reg: a}
	case x86asm.Imm:
		return Operand{Kind: OperandImm, Imm: int64(a)}
	case x86asm.Mem:
		return Operand{
			Kind:    OperandMem,
			Segment: a.Segment,
			Base:    a.Base,
			Index:   a.Index,
			Scale:   a.Scale,
			Disp:    a.Disp,
		}
	case x86asm.Rel:
		return Operand{Kind: OperandImm, Imm: int64(a)}
	default:
		return Operand{Kind: OperandNone}
	}
}
