package disasm

// Strategy is the pluggable heuristic the section explorer drives. The core
// is agnostic to its internal logic; it requires only the contracts below.
type Strategy interface {
	// Mutate proposes candidate BBs seeded at addresses to explore, given
	// the section under exploration and the parent BB that was just
	// committed (nil for the initial seed of a section). Mutants carry
	// only Start; the explorer performs the linear sweep. Mutate must
	// eventually return no mutants once a section is fully explored, or
	// the worklist empties on its own as parents stop producing children.
	Mutate(sec *DisasmSection, parent *BB) ([]*BB, error)

	// Score assigns a confidence score to a mutant after the linear sweep
	// has filled it in. A returned error aborts the section.
	Score(sec *DisasmSection, mutant *BB) (float64, error)

	// Select inspects (and may reorder) mutants, setting Alive true on
	// those to commit, and returns k: the prefix of mutants the explorer
	// scans for committal. A returned error aborts the section.
	Select(sec *DisasmSection, mutants []*BB) (int, error)
}

// Options is process-wide configuration for a disassembly run.
type Options struct {
	// OnlyCodeSections, when true, skips DATA sections entirely. When
	// false, DATA sections are explored too.
	OnlyCodeSections bool

	// Verbosity controls progress notices (0 = silent). It has no
	// semantic effect on the disassembly result.
	Verbosity int
}
