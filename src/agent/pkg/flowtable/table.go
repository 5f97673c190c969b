// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import "fmt"

// flowKey is the normalized rule tuple the exact-match table is keyed
// by: masked addresses and port patterns, never raw rule input.
type flowKey struct {
	srcAddr uint32
	srcPort uint16
	dstAddr uint32
	dstPort uint16
}

// Table is the rule table in its building state: insert-only,
// single-writer. Freeze it to obtain a shareable read-only Snapshot.
type Table struct {
	src    *prefixIndex
	dst    *prefixIndex
	flows  map[flowKey]Action
	frozen bool
}

// NewTable returns an empty table ready for inserts.
func NewTable() *Table {
	return &Table{
		src:   newPrefixIndex(),
		dst:   newPrefixIndex(),
		flows: make(map[flowKey]Action),
	}
}

// Insert adds a rule to the table. The rule's addresses are normalized
// to their prefix (host bits cleared) before indexing. Inserting a rule
// whose normalized tuple already exists overwrites the previous action:
// last write wins, no error. Insert fails on a prefix length above 32
// or after Freeze.
func (t *Table) Insert(r Rule) error {
	if t.frozen {
		return ErrFrozen
	}
	if r.Src.Len > 32 {
		return fmt.Errorf("source prefix length %d: %w", r.Src.Len, ErrInvalidPrefix)
	}
	if r.Dst.Len > 32 {
		return fmt.Errorf("destination prefix length %d: %w", r.Dst.Len, ErrInvalidPrefix)
	}

	srcAddr := r.Src.Masked()
	dstAddr := r.Dst.Masked()

	t.src.insert(r.Src.Len, srcAddr, r.SrcPort)
	t.dst.insert(r.Dst.Len, dstAddr, r.DstPort)

	t.flows[flowKey{
		srcAddr: srcAddr,
		srcPort: r.SrcPort,
		dstAddr: dstAddr,
		dstPort: r.DstPort,
	}] = r.Action

	return nil
}

// Len returns the number of distinct rule tuples in the table.
func (t *Table) Len() int {
	return len(t.flows)
}

// lookupExact resolves a normalized tuple to its action.
func (t *Table) lookupExact(k flowKey) (Action, bool) {
	a, ok := t.flows[k]
	return a, ok
}
