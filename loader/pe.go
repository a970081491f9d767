package loader

import (
	"debug/pe"

	"github.com/pkg/errors"
)

const imageScnCntCode = 0x00000020

// LoadPE reads a PE file's section headers and classifies sections carrying
// IMAGE_SCN_CNT_CODE as CODE, the rest as DATA. Section virtual addresses
// are PE-relative (RVAs); VMA is ImageBase + RVA, matching the load image
// address the disassembler operates on.
func LoadPE(path string) (*Binary, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "loader: open PE")
	}
	defer f.Close()

	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_I386, pe.IMAGE_FILE_MACHINE_AMD64:
	default:
		return nil, errors.Wrapf(ErrUnsupportedArch, "PE machine %#x", f.Machine)
	}

	imageBase, bits, err := peImageBaseAndBits(f)
	if err != nil {
		return nil, err
	}

	bin := &Binary{Arch: ArchX86, Bits: bits, Type: FileTypePE}
	for _, s := range f.Sections {
		if s.VirtualSize == 0 && s.Size == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "loader: section %q", s.Name)
		}
		size := s.VirtualSize
		if int(size) > len(data) {
			// VirtualSize may exceed the on-disk size for sections with
			// uninitialized tail padding (e.g. .bss folded into .data);
			// pad with zeros up to the declared virtual size.
			padded := make([]byte, size)
			copy(padded, data)
			data = padded
		} else if size > 0 {
			data = data[:size]
		}

		typ := SectionData
		if s.Characteristics&imageScnCntCode != 0 {
			typ = SectionCode
		}
		bin.Sections = append(bin.Sections, &Section{
			Name:  s.Name,
			Type:  typ,
			VMA:   imageBase + uint64(s.VirtualAddress),
			Size:  uint64(len(data)),
			Bytes: data,
		})
	}
	return bin, nil
}

func peImageBaseAndBits(f *pe.File) (imageBase uint64, bits int, err error) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return uint64(oh.ImageBase), 32, nil
	case *pe.OptionalHeader64:
		return oh.ImageBase, 64, nil
	default:
		return 0, 0, errors.Wrap(ErrUnsupportedArch, "PE optional header missing or unrecognized")
	}
}
