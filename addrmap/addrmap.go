// Package addrmap tracks, for every byte of an in-scope section, whether it
// belongs to a committed basic block, an instruction start, a block start,
// or remains unmapped.
package addrmap

import "github.com/pkg/errors"

// Flag is a per-address bit set. Multiple flags may be OR-combined.
type Flag uint8

// Unmapped is the zero value: the address is tracked but carries no flags,
// i.e. it is still sitting in the unmapped bag.
const Unmapped Flag = 0

const (
	Code Flag = 1 << iota
	Data
	BBStart
	InsStart
)

// ErrNotTracked is returned when an operation that requires containment
// (addr_type, set_addr_type, add_addr_flag) is given an address that was
// never inserted.
var ErrNotTracked = errors.New("addrmap: address not tracked")

// AddressMap is a per-section byte-level map from VMA to flag set, plus a
// bag of currently-unmapped addresses supporting O(1) random access and
// O(1) removal (swap-with-back-and-pop).
type AddressMap struct {
	mapped   map[uint64]Flag
	unmapped []uint64
	index    map[uint64]int // addr -> index into unmapped, only for unmapped addrs
}

// New returns an empty AddressMap.
func New() *AddressMap {
	return &AddressMap{
		mapped: make(map[uint64]Flag),
		index:  make(map[uint64]int),
	}
}

// Insert adds a to the unmapped bag if it is not already tracked. Idempotent.
func (m *AddressMap) Insert(a uint64) {
	if m.Contains(a) {
		return
	}
	m.index[a] = len(m.unmapped)
	m.unmapped = append(m.unmapped, a)
}

// Contains reports whether a is mapped or unmapped.
func (m *AddressMap) Contains(a uint64) bool {
	if _, ok := m.mapped[a]; ok {
		return true
	}
	_, ok := m.index[a]
	return ok
}

// AddrType returns the flag set for a, or Unmapped if a is only in the
// unmapped bag. Precondition: Contains(a).
func (m *AddressMap) AddrType(a uint64) (Flag, error) {
	if !m.Contains(a) {
		return Unmapped, errors.Wrapf(ErrNotTracked, "addr %#x", a)
	}
	return m.mapped[a], nil
}

// SetAddrType assigns the flag set t to a, removing it from the unmapped bag
// if t != Unmapped. Precondition: Contains(a).
func (m *AddressMap) SetAddrType(a uint64, t Flag) error {
	if !m.Contains(a) {
		return errors.Wrapf(ErrNotTracked, "addr %#x", a)
	}
	if t != Unmapped {
		m.removeUnmapped(a)
	}
	m.mapped[a] = t
	return nil
}

// AddAddrFlag OR-combines f into the existing flags for a. Precondition:
// Contains(a).
func (m *AddressMap) AddAddrFlag(a uint64, f Flag) error {
	if !m.Contains(a) {
		return errors.Wrapf(ErrNotTracked, "addr %#x", a)
	}
	m.removeUnmapped(a)
	m.mapped[a] |= f
	return nil
}

// Erase removes a from both the mapped table and the unmapped bag.
func (m *AddressMap) Erase(a uint64) {
	delete(m.mapped, a)
	m.removeUnmapped(a)
}

// UnmappedCount returns the number of addresses currently in the unmapped
// bag.
func (m *AddressMap) UnmappedCount() int {
	return len(m.unmapped)
}

// GetUnmapped returns the i'th address in the unmapped bag. Order is not
// meaningful and may change after any mutation.
func (m *AddressMap) GetUnmapped(i int) (uint64, error) {
	if i < 0 || i >= len(m.unmapped) {
		return 0, errors.Errorf("addrmap: unmapped index %d out of range [0,%d)", i, len(m.unmapped))
	}
	return m.unmapped[i], nil
}

// removeUnmapped removes a from the unmapped bag in O(1) via
// swap-with-back-and-pop, if present.
func (m *AddressMap) removeUnmapped(a uint64) {
	i, ok := m.index[a]
	if !ok {
		return
	}
	last := len(m.unmapped) - 1
	lastAddr := m.unmapped[last]
	m.unmapped[i] = lastAddr
	m.index[lastAddr] = i
	m.unmapped = m.unmapped[:last]
	delete(m.index, a)
}
