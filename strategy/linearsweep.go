// Package strategy provides the default heuristic the engine uses to
// explore a section when the caller supplies no other Strategy: seed from
// the section base and the unmapped-address bag, then follow fall-through
// and resolved branch targets, scoring each candidate by how clean its
// sweep looks and skipping addresses the address map already marks as block
// starts.
package strategy

import (
	log "github.com/sirupsen/logrus"

	"x86disasm/addrmap"
	"x86disasm/decode"
	"x86disasm/disasm"
)

// seedSampleStride controls how densely LinearSweep samples the unmapped
// bag on the initial mutate call: every seedSampleStride-th unmapped
// address is offered as a candidate entry point, so that large DATA-free
// gaps between discovered functions still eventually get explored.
const seedSampleStride = 16

// LinearSweep is the engine's default Strategy: straight-line sweep with
// conservative branch following and a confidence score penalizing red flags
// (invalid bytes, privileged instructions, long nop runs standing alone).
type LinearSweep struct {
	// MaxInitialSeeds bounds how many unmapped-bag samples the initial
	// Mutate call proposes, to keep a single call bounded on huge
	// sections. Zero means unbounded.
	MaxInitialSeeds int
}

// Mutate proposes, for the initial call (parent == nil), the section's base
// address plus a sparse sample of the unmapped bag; for a parent, the
// fall-through address and any resolved branch target, skipping addresses
// the address map already marks as a block start.
func (s *LinearSweep) Mutate(sec *disasm.DisasmSection, parent *disasm.BB) ([]*disasm.BB, error) {
	if parent == nil {
		return s.initialSeeds(sec), nil
	}

	var mutants []*disasm.BB
	last := lastInsn(parent)

	// A block falls through unless it ended on an unconditional jump or a
	// return — those never reach the next address in the normal case.
	fallsThrough := !parent.Invalid && last.Flags&decode.FlagJmp == 0 && last.Flags&decode.FlagRet == 0
	if fallsThrough {
		if fallThrough := parent.End; fallThrough < sec.Sec.VMA+sec.Sec.Size {
			if seedable(sec, fallThrough) {
				mutants = append(mutants, newSeed(sec, fallThrough))
			}
		}
	}

	if last.HasTarget && last.Flags&decode.FlagIndirect == 0 {
		if last.Target >= sec.Sec.VMA && last.Target < sec.Sec.VMA+sec.Sec.Size && seedable(sec, last.Target) {
			mutants = append(mutants, newSeed(sec, last.Target))
		}
	}

	return mutants, nil
}

// Score penalizes a mutant for red flags, rewards length, and adds a small
// bonus for blocks containing a trap. Never returns a negative value: core invariant
// violations are reported as decoder/engine errors, not strategy failure.
func (s *LinearSweep) Score(sec *disasm.DisasmSection, mutant *disasm.BB) (float64, error) {
	if mutant.Invalid {
		return 0, nil
	}

	score := 1.0
	if mutant.Privileged {
		score -= 0.5
	}
	if mutant.Padding && len(mutant.Insns) > 64 {
		// An implausibly long isolated nop run is more likely to be data
		// misread as code than real padding.
		score -= 0.25
	}
	if mutant.Trap {
		score += 0.1
	}
	score += 0.01 * float64(len(mutant.Insns))
	if score < 0 {
		score = 0
	}
	return score, nil
}

// Select commits every mutant — invalid ones included, per spec.md §7/§8
// scenario 6, which requires invalid blocks to surface in the committed
// output — whose start is not already a committed block start, conservative
// about duplicate commits reached from two different parents even though
// the core itself tolerates overlapping blocks.
func (s *LinearSweep) Select(sec *disasm.DisasmSection, mutants []*disasm.BB) (int, error) {
	batchSeen := make(map[uint64]bool, len(mutants))
	for _, m := range mutants {
		if alreadyBlockStart(sec, m.Start) || batchSeen[m.Start] {
			continue
		}
		m.Alive = true
		batchSeen[m.Start] = true
	}
	return len(mutants), nil
}

func (s *LinearSweep) initialSeeds(sec *disasm.DisasmSection) []*disasm.BB {
	var seeds []*disasm.BB
	base := sec.Sec.VMA
	if seedable(sec, base) {
		seeds = append(seeds, newSeed(sec, base))
	}

	count := 0
	for i := 0; i < sec.Addr.UnmappedCount(); i += seedSampleStride {
		a, err := sec.Addr.GetUnmapped(i)
		if err != nil {
			break
		}
		if !seedable(sec, a) {
			continue
		}
		seeds = append(seeds, newSeed(sec, a))
		count++
		if s.MaxInitialSeeds > 0 && count >= s.MaxInitialSeeds {
			break
		}
	}
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("section %q: proposing %d initial seed(s)", sec.Sec.Name, len(seeds))
	}
	return seeds
}

func lastInsn(bb *disasm.BB) decode.Instruction {
	if len(bb.Insns) == 0 {
		return decode.Instruction{}
	}
	return bb.Insns[len(bb.Insns)-1]
}

func seedable(sec *disasm.DisasmSection, a uint64) bool {
	return !alreadyBlockStart(sec, a)
}

func alreadyBlockStart(sec *disasm.DisasmSection, a uint64) bool {
	if !sec.Addr.Contains(a) {
		return false
	}
	flags, err := sec.Addr.AddrType(a)
	if err != nil {
		return false
	}
	return flags&addrmap.BBStart != 0
}

func newSeed(sec *disasm.DisasmSection, addr uint64) *disasm.BB {
	return disasm.NewMutant(sec, addr)
}
