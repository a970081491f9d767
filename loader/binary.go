// Package loader turns an ELF or PE file on disk into the Binary/Section
// records the disassembly engine consumes. The engine treats these as
// external, read-only records: loader is the boundary where the filesystem
// and the container format's quirks live.
package loader

import (
	"os"

	"github.com/pkg/errors"
)

// Arch identifies the instruction set architecture of a Binary.
type Arch int

const (
	// ArchUnknown is the zero value for an unrecognized architecture.
	ArchUnknown Arch = iota
	// ArchX86 covers both 32-bit and 64-bit Intel/AMD binaries; bit width
	// is tracked separately on Binary.Bits.
	ArchX86
)

func (a Arch) String() string {
	switch a {
	case ArchX86:
		return "x86"
	default:
		return "unknown"
	}
}

// FileType identifies the container format a Binary was loaded from.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeELF
	FileTypePE
)

func (t FileType) String() string {
	switch t {
	case FileTypeELF:
		return "ELF"
	case FileTypePE:
		return "PE"
	default:
		return "unknown"
	}
}

// SectionType distinguishes sections the engine should disassemble (CODE)
// from everything else (DATA).
type SectionType int

const (
	SectionData SectionType = iota
	SectionCode
)

// Section is one section of a loaded binary: a name, a type, a base VMA, and
// the raw bytes backing it. Bytes is immutable for the disassembler's
// lifetime.
type Section struct {
	Name  string
	Type  SectionType
	VMA   uint64
	Size  uint64
	Bytes []byte
}

// Binary is a loaded executable: an architecture tag, a bit width, a file
// type, and an ordered sequence of sections.
type Binary struct {
	Arch     Arch
	Bits     int // 16, 32, or 64
	Type     FileType
	Sections []*Section
}

// ErrUnsupportedFormat is returned when a file's magic bytes match neither
// ELF nor PE.
var ErrUnsupportedFormat = errors.New("loader: unrecognized file format")

// Load sniffs path's magic bytes and dispatches to LoadELF or LoadPE.
func Load(path string) (*Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "loader: open")
	}
	var magic [4]byte
	_, err = f.Read(magic[:])
	f.Close()
	if err != nil {
		return nil, errors.Wrap(err, "loader: read magic")
	}

	switch {
	case magic[0] == 0x7F && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		return LoadELF(path)
	case magic[0] == 'M' && magic[1] == 'Z':
		return LoadPE(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "path %q", path)
	}
}
