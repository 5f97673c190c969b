// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

// Classify resolves a packet to the action of the single winning rule.
// The second return value is false when no rule covers the packet; a
// miss is an absence of policy, not an error, and the default action is
// the caller's concern.
//
// The cascade tries port combinations in decreasing order of
// specificity. Each step resolves the source and destination address
// independently to their most specific registered prefix for that port
// pattern, then consults the exact-match table for that particular
// pairing. A step advances to the next combination only when one of its
// address sides fails to resolve; once both sides resolve, the
// exact-table answer is final for the whole cascade, so a tuple absent
// from the exact table is a no-match rather than a cue to try softer
// combinations. There is no backtracking to a less-specific prefix
// within a step.
func (t *Table) Classify(pkt Packet) (Action, bool) {
	combos := [4]struct{ srcPort, dstPort uint16 }{
		{pkt.SrcPort, pkt.DstPort},
		{WildcardPort, pkt.DstPort},
		{pkt.SrcPort, WildcardPort},
		{WildcardPort, WildcardPort},
	}

	for _, c := range combos {
		srcAddr, ok := t.src.lookup(pkt.SrcAddr, c.srcPort)
		if !ok {
			continue
		}
		dstAddr, ok := t.dst.lookup(pkt.DstAddr, c.dstPort)
		if !ok {
			continue
		}
		return t.lookupExact(flowKey{
			srcAddr: srcAddr,
			srcPort: c.srcPort,
			dstAddr: dstAddr,
			dstPort: c.dstPort,
		})
	}

	return Action{}, false
}
