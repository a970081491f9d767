package disasm

import "github.com/pkg/errors"

// ErrUnsupportedArch is returned when the engine is asked to disassemble a
// binary whose architecture or bit width it has no sweep implementation for.
var ErrUnsupportedArch = errors.New("disasm: unsupported architecture")

// ErrBBOutOfSection is returned when a mutant's start address falls outside
// the bounds of the section it was seeded against — a strategy bug or
// corrupted input, per the section explorer's contract.
var ErrBBOutOfSection = errors.New("disasm: basic block starts outside section")

// ErrStrategyFailed wraps a negative return from a Strategy's Score or
// Select, which the engine treats as a fatal, whole-section error.
var ErrStrategyFailed = errors.New("disasm: strategy reported failure")

// ErrDecoderInit names a failure to open a decoder over a section's bytes.
// No code path in this package returns it: decode failures are recorded as
// invalid blocks, and unsupported bit widths are rejected up front by Disasm
// with ErrUnsupportedArch.
var ErrDecoderInit = errors.New("disasm: decoder initialization failed")

// errWithSection annotates a section failure with the section's name
// without changing the sentinel errors.Is/As chain.
func errWithSection(err error, name string) error {
	return errors.Wrapf(err, "section %q", name)
}
