// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import "sort"

// addrPort is a masked network address plus a port pattern.
type addrPort struct {
	addr uint32
	port uint16
}

// prefixIndex records, per prefix length, which (masked address, port)
// pairs have at least one rule. Entries are keyed by the host-bits
// wildcard mask of the prefix length rather than the length itself, so
// that ascending key order already visits longer prefixes first and
// lookups need no sorting. At most 33 distinct keys can ever exist.
type prefixIndex struct {
	wildcards []uint32 // sorted ascending, most specific first
	entries   map[uint32]map[addrPort]struct{}
}

func newPrefixIndex() *prefixIndex {
	return &prefixIndex{
		entries: make(map[uint32]map[addrPort]struct{}),
	}
}

// insert registers a (masked address, port) pair at the given prefix
// length. Inserting the same pair twice is a no-op.
func (ix *prefixIndex) insert(prefixLen uint8, maskedAddr uint32, port uint16) {
	wild := hostWildcard(prefixLen)
	set, ok := ix.entries[wild]
	if !ok {
		set = make(map[addrPort]struct{})
		ix.entries[wild] = set
		i := sort.Search(len(ix.wildcards), func(i int) bool {
			return ix.wildcards[i] >= wild
		})
		ix.wildcards = append(ix.wildcards, 0)
		copy(ix.wildcards[i+1:], ix.wildcards[i:])
		ix.wildcards[i] = wild
	}
	set[addrPort{addr: maskedAddr, port: port}] = struct{}{}
}

// lookup walks the registered prefix lengths from most to least specific
// and returns the masked address of the first length at which
// (addr & mask, port) is registered. Only the first hit is reported;
// there is no search across ties and no second-best fallback.
func (ix *prefixIndex) lookup(addr uint32, port uint16) (uint32, bool) {
	for _, wild := range ix.wildcards {
		masked := addr &^ wild
		if _, ok := ix.entries[wild][addrPort{addr: masked, port: port}]; ok {
			return masked, true
		}
	}
	return 0, false
}

// len returns the number of registered (masked address, port) pairs.
func (ix *prefixIndex) len() int {
	n := 0
	for _, set := range ix.entries {
		n += len(set)
	}
	return n
}
