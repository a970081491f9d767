package disasm

import (
	"github.com/pkg/errors"

	"x86disasm/addrmap"
	"x86disasm/loader"
)

// DisasmSection owns one section's exploration state: the section itself
// (borrowed, read-only), its address map, and the list of committed blocks.
// A DisasmSection is created once per in-scope section at engine init and
// lives for the duration of a run; mutant BBs that are never committed are
// discarded at the end of each worklist iteration and never appear here.
type DisasmSection struct {
	Sec     *loader.Section
	Addr    *addrmap.AddressMap
	BBs     []*BB
	binType loader.FileType
	bits    int
}

func newDisasmSection(sec *loader.Section, binType loader.FileType, bits int) *DisasmSection {
	ds := &DisasmSection{
		Sec:     sec,
		Addr:    addrmap.New(),
		binType: binType,
		bits:    bits,
	}
	for a := sec.VMA; a < sec.VMA+sec.Size; a++ {
		ds.Addr.Insert(a)
	}
	return ds
}

// disasmSection drives the per-section worklist: mutate, sweep, score,
// select, commit, enqueue successors — repeating until the strategy's
// worklist queue is empty.
func disasmSection(ds *DisasmSection, strat Strategy) error {
	queue := []*BB{nil} // initial seed: nil parent

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		mutants, err := strat.Mutate(ds, parent)
		if err != nil {
			return err
		}
		if len(mutants) == 0 {
			continue
		}

		for _, m := range mutants {
			if err := disasmBB(ds, m); err != nil {
				return err
			}
			score, err := strat.Score(ds, m)
			if err != nil {
				return errors.Wrap(ErrStrategyFailed, err.Error())
			}
			if score < 0 {
				return ErrStrategyFailed
			}
			m.Score = score
		}

		k, err := strat.Select(ds, mutants)
		if err != nil {
			return errors.Wrap(ErrStrategyFailed, err.Error())
		}
		if k < 0 {
			return ErrStrategyFailed
		}
		if k > len(mutants) {
			k = len(mutants)
		}

		for i := 0; i < k; i++ {
			m := mutants[i]
			if !m.Alive {
				continue
			}
			commit(ds, m)
			queue = append(queue, m)
		}
		// The remainder of the mutant buffer — anything past k, and
		// anything not marked Alive — is discarded here.
	}
	return nil
}

// commit marks the address map for a newly-committed block and moves it
// into the section's permanent BB list.
func commit(ds *DisasmSection, m *BB) {
	ds.Addr.AddAddrFlag(m.Start, addrmap.BBStart)
	for _, ins := range m.Insns {
		ds.Addr.AddAddrFlag(ins.Start, addrmap.InsStart)
	}
	for a := m.Start; a < m.End; a++ {
		ds.Addr.AddAddrFlag(a, addrmap.Code)
	}
	ds.BBs = append(ds.BBs, m)
}
