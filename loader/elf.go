package loader

import (
	"debug/elf"

	"github.com/pkg/errors"
)

// ErrUnsupportedArch is returned when a binary's CPU is not x86, or its bit
// width is not 16, 32, or 64 — a fatal, whole-run error per the engine's
// error handling design.
var ErrUnsupportedArch = errors.New("loader: unsupported architecture")

// LoadELF reads an ELF file's section headers and classifies sections
// carrying SHF_EXECINSTR as CODE, the rest as DATA.
func LoadELF(path string) (*Binary, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "loader: open ELF")
	}
	defer f.Close()

	var bits int
	switch f.Class {
	case elf.ELFCLASS32:
		bits = 32
	case elf.ELFCLASS64:
		bits = 64
	default:
		return nil, errors.Wrapf(ErrUnsupportedArch, "ELF class %v", f.Class)
	}

	switch f.Machine {
	case elf.EM_386, elf.EM_X86_64:
	default:
		return nil, errors.Wrapf(ErrUnsupportedArch, "ELF machine %v", f.Machine)
	}

	bin := &Binary{Arch: ArchX86, Bits: bits, Type: FileTypeELF}
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS && s.Type != elf.SHT_NOBITS {
			continue
		}
		if s.Size == 0 {
			continue
		}
		data, err := sectionBytes(s)
		if err != nil {
			return nil, errors.Wrapf(err, "loader: section %q", s.Name)
		}

		typ := SectionData
		if s.Flags&elf.SHF_EXECINSTR != 0 {
			typ = SectionCode
		}
		bin.Sections = append(bin.Sections, &Section{
			Name:  s.Name,
			Type:  typ,
			VMA:   s.Addr,
			Size:  s.Size,
			Bytes: data,
		})
	}
	return bin, nil
}

// sectionBytes reads a section's contents, substituting a zero-filled
// buffer for SHT_NOBITS (.bss-like) sections which carry no file data.
func sectionBytes(s *elf.Section) ([]byte, error) {
	if s.Type == elf.SHT_NOBITS {
		return make([]byte, s.Size), nil
	}
	return s.Data()
}
