// Package disasm implements the recursive basic-block reconstruction engine:
// given a loaded Binary and a Strategy, it explores each in-scope section's
// code, committing basic blocks and recording block starts, instruction
// starts and code bytes in an address map, without resolving indirect
// targets or reconstructing
// function boundaries.
package disasm

import (
	log "github.com/sirupsen/logrus"

	"x86disasm/loader"
)

// Disasm runs the engine over every in-scope section of bin using strat,
// returning one DisasmSection per explored section in binary order. The run
// fails as a whole if any section fails; there are no partial results on
// failure.
func Disasm(bin *loader.Binary, strat Strategy, opts Options) ([]*DisasmSection, error) {
	if bin.Arch != loader.ArchX86 {
		return nil, ErrUnsupportedArch
	}
	switch bin.Bits {
	case 16, 32, 64:
	default:
		return nil, ErrUnsupportedArch
	}

	sections := initSections(bin, opts)
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("engine init: %d section(s) in scope", len(sections))
	}

	for _, ds := range sections {
		if opts.Verbosity > 0 {
			log.Infof("disassembling section %q (%d bytes at %#x)", ds.Sec.Name, ds.Sec.Size, ds.Sec.VMA)
		}
		if err := disasmSection(ds, strat); err != nil {
			return nil, errWithSection(err, ds.Sec.Name)
		}
	}

	log.Debugf("engine fini: %d section(s) disassembled", len(sections))
	return sections, nil
}

// initSections creates one DisasmSection per in-scope section — CODE
// always, DATA only when opts.OnlyCodeSections is false — and seeds each
// one's address map as entirely unmapped.
func initSections(bin *loader.Binary, opts Options) []*DisasmSection {
	var out []*DisasmSection
	for _, sec := range bin.Sections {
		if sec.Type == loader.SectionData && opts.OnlyCodeSections {
			if opts.Verbosity > 0 {
				log.Warnf("skipping data section %q (only-code-sections)", sec.Name)
			}
			continue
		}
		out = append(out, newDisasmSection(sec, bin.Type, bin.Bits))
	}
	return out
}
