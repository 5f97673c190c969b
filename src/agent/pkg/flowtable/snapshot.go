// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import "sync/atomic"

// Snapshot is a frozen, immutable view of a table, safe for concurrent
// classification with no synchronization on the read path. The snapshot
// shares the table's maps by reference rather than deep-copying them;
// immutability is what makes the sharing sound.
type Snapshot struct {
	table *Table
}

// Freeze transitions the table from building to serving. The transition
// is one-way: subsequent inserts fail with ErrFrozen. Freeze is cheap;
// no data is copied.
func (t *Table) Freeze() *Snapshot {
	t.frozen = true
	return &Snapshot{table: t}
}

// Classify resolves a packet against the frozen table. Safe to call
// from any number of goroutines.
func (s *Snapshot) Classify(pkt Packet) (Action, bool) {
	return s.table.Classify(pkt)
}

// Len returns the number of distinct rule tuples in the snapshot.
func (s *Snapshot) Len() int {
	return s.table.Len()
}

// Handle is the atomically swappable reference readers classify
// through. A writer that needs to change policy builds a new table,
// freezes it, and swaps it in; readers holding the previous snapshot
// finish against it undisturbed.
type Handle struct {
	snap atomic.Pointer[Snapshot]
}

// NewHandle returns a handle serving the given snapshot.
func NewHandle(s *Snapshot) *Handle {
	h := &Handle{}
	h.snap.Store(s)
	return h
}

// Load returns the currently served snapshot.
func (h *Handle) Load() *Snapshot {
	return h.snap.Load()
}

// Swap replaces the served snapshot and returns the previous one.
func (h *Handle) Swap(s *Snapshot) *Snapshot {
	return h.snap.Swap(s)
}
