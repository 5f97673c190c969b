// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import (
	"errors"
	"fmt"
)

// WildcardPort is the port pattern matching any port. A rule registered
// with port 0 therefore cannot match "port exactly 0"; this precision
// loss is inherited and documented, not silently fixed.
const WildcardPort uint16 = 0

// ErrInvalidPrefix is returned by Insert for a prefix length above 32.
var ErrInvalidPrefix = errors.New("prefix length out of range")

// ErrFrozen is returned by Insert after the table has been frozen.
var ErrFrozen = errors.New("table is frozen")

// ActionKind discriminates the rule action variants.
type ActionKind uint8

const (
	// ActionDeny drops the flow.
	ActionDeny ActionKind = iota
	// ActionAllow permits the flow toward the target named in the label.
	ActionAllow
)

// Action is the decision a rule carries. Actions are comparable values;
// the engine is otherwise indifferent to their contents.
type Action struct {
	Kind  ActionKind
	Label string
}

// Deny returns the deny action.
func Deny() Action {
	return Action{Kind: ActionDeny}
}

// Allow returns an allow action carrying the given target label.
func Allow(label string) Action {
	return Action{Kind: ActionAllow, Label: label}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionDeny:
		return "deny"
	case ActionAllow:
		return fmt.Sprintf("allow(%s)", a.Label)
	default:
		return fmt.Sprintf("action(%d)", a.Kind)
	}
}

// Prefix is an IPv4 network prefix: a 32-bit address plus a prefix
// length 0..32. Length 0 matches every address.
type Prefix struct {
	Addr uint32
	Len  uint8
}

// Masked returns the address with its host bits cleared.
func (p Prefix) Masked() uint32 {
	return p.Addr &^ hostWildcard(p.Len)
}

// hostWildcard returns the host-bits wildcard mask for a prefix length:
// 2^(32-len) - 1. Longer prefixes produce smaller values, so ascending
// wildcard order is most-specific-first order.
func hostWildcard(prefixLen uint8) uint32 {
	if prefixLen == 0 {
		return ^uint32(0)
	}
	return 1<<(32-prefixLen) - 1
}

// Rule is a single access-control entry. Rules are values; the table
// copies what it needs at insert time and never aliases the caller's
// data.
type Rule struct {
	Src     Prefix
	SrcPort uint16
	Dst     Prefix
	DstPort uint16
	Action  Action
}

// Packet is a fully resolved 4-tuple to classify. No field is a
// wildcard.
type Packet struct {
	SrcAddr uint32
	DstAddr uint32
	SrcPort uint16
	DstPort uint16
}
