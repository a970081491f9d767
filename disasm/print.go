package disasm

import (
	"fmt"
	"io"
	"sort"
	"text/template"
)

var sectionHeader = `; ------------------------------------------------------------------
; section {{ .Name }}  base {{ printf "%#x" .VMA }}  size {{ .Size }}
; {{ .NumBlocks }} committed block(s)
; ------------------------------------------------------------------
`

// Print writes ds's committed blocks to w, sorted ascending by start
// address. Sorting is for presentation only; the engine imposes no ordering
// invariant on commits themselves.
func (ds *DisasmSection) Print(w io.Writer) error {
	hdr, err := template.New("section").Parse(sectionHeader)
	if err != nil {
		return err
	}
	data := struct {
		Name      string
		VMA       uint64
		Size      uint64
		NumBlocks int
	}{ds.Sec.Name, ds.Sec.VMA, ds.Sec.Size, len(ds.BBs)}
	if err := hdr.Execute(w, data); err != nil {
		return err
	}

	sorted := make([]*BB, len(ds.BBs))
	copy(sorted, ds.BBs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for _, bb := range sorted {
		if err := printBB(w, bb); err != nil {
			return err
		}
	}
	return nil
}

func printBB(w io.Writer, bb *BB) error {
	tags := bbTags(bb)
	if _, err := fmt.Fprintf(w, "\n%#016x: bb [%#x, %#x)%s\n", bb.Start, bb.Start, bb.End, tags); err != nil {
		return err
	}
	if bb.Invalid {
		_, err := fmt.Fprintf(w, "  %#016x  (invalid)\n", bb.Start)
		return err
	}
	for _, ins := range bb.Insns {
		if _, err := fmt.Fprintf(w, "  %#016x  %-7s %s\n", ins.Start, ins.Mnemonic, ins.OpStr); err != nil {
			return err
		}
	}
	return nil
}

func bbTags(bb *BB) string {
	var tags string
	if bb.Padding {
		tags += " padding"
	}
	if bb.Trap {
		tags += " trap"
	}
	if bb.Privileged {
		tags += " priv"
	}
	return tags
}
