package disasm

import "x86disasm/decode"

// BB is a basic block: a maximal straight-line run of instructions ending at
// a control-flow terminator, a nop/non-nop boundary, or an invalid byte.
//
// Invariants: Start < End; the sum of Insns[i].Size equals End-Start unless
// Invalid, in which case End is Start+1 at minimum to guarantee the
// exploration loop makes forward progress.
type BB struct {
	Start uint64
	End   uint64 // exclusive

	Insns []decode.Instruction

	Section *DisasmSection

	Invalid    bool
	Padding    bool
	Trap       bool
	Privileged bool
	Alive      bool // set by Strategy.Select; true once committed

	Score float64

	// Scratch is strategy-private storage carried on a mutant between
	// Mutate, Score, and Select; the core never reads or writes it.
	Scratch interface{}
}

// NewMutant allocates an uncommitted BB seeded at start, owned by sec, for a
// Strategy's Mutate to return.
func NewMutant(sec *DisasmSection, start uint64) *BB {
	return &BB{Start: start, End: start, Section: sec}
}
