// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/flow-classifier/src/agent/pkg/flowtable"
)

// Rule is the management-facing rule specification. Addresses are CIDR
// strings; port 0 means any port.
type Rule struct {
	SrcCIDR string `yaml:"src"`
	SrcPort uint16 `yaml:"src_port"`
	DstCIDR string `yaml:"dst"`
	DstPort uint16 `yaml:"dst_port"`
	Action  string `yaml:"action"` // "allow" or "deny"
	Target  string `yaml:"target,omitempty"`
}

// Statistics holds classification counters.
type Statistics struct {
	TotalPackets   uint64
	AllowedPackets uint64
	DeniedPackets  uint64
	PolicyHits     uint64
	PolicyMisses   uint64
}

// RuleManager validates and stores rules and serves classification
// through a frozen table snapshot. Every rule change rebuilds a fresh
// table and swaps it in; readers are never exposed to a mutating table.
type RuleManager struct {
	mu      sync.Mutex // serializes rule mutation and rebuilds
	rules   []Rule     // normalized, deduplicated by tuple
	handle  *flowtable.Handle
	storage Storage

	totalPackets   atomic.Uint64
	allowedPackets atomic.Uint64
	deniedPackets  atomic.Uint64
	policyHits     atomic.Uint64
	policyMisses   atomic.Uint64
}

// NewManager creates a rule manager without persistence.
func NewManager() *RuleManager {
	return &RuleManager{
		handle: flowtable.NewHandle(flowtable.NewTable().Freeze()),
	}
}

// NewManagerWithStorage creates a rule manager backed by persistent
// storage.
func NewManagerWithStorage(storage Storage) *RuleManager {
	m := NewManager()
	m.storage = storage
	return m
}

// LoadPersisted loads rules from persistent storage and builds the
// serving table from them. Invalid persisted rules are skipped with a
// warning rather than aborting the load.
func (m *RuleManager) LoadPersisted() error {
	if m.storage == nil {
		return fmt.Errorf("no storage configured")
	}

	rules, err := m.storage.LoadRules()
	if err != nil {
		return fmt.Errorf("failed to load rules from storage: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for i := range rules {
		norm, _, err := compile(&rules[i])
		if err != nil {
			log.Warnf("Skipping invalid persisted rule %s -> %s: %v",
				rules[i].SrcCIDR, rules[i].DstCIDR, err)
			continue
		}
		m.upsertLocked(norm)
		restored++
	}

	if err := m.rebuildLocked(); err != nil {
		return err
	}

	log.Infof("Restored %d/%d rules from storage", restored, len(rules))
	return nil
}

// AddRule validates a rule, persists it if storage is configured, and
// republishes the serving table. Re-adding a rule with an identical
// normalized tuple replaces the previous action (last write wins).
func (m *RuleManager) AddRule(r *Rule) error {
	norm, _, err := compile(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.upsertLocked(norm)
	if err := m.rebuildLocked(); err != nil {
		return err
	}

	if m.storage != nil {
		if err := m.storage.SaveRule(&norm); err != nil {
			log.Warnf("Failed to persist rule %s -> %s: %v", norm.SrcCIDR, norm.DstCIDR, err)
			// The serving table is the source of truth; keep going.
		}
	}

	log.Infof("Rule added: %s:%d -> %s:%d action=%s target=%s",
		norm.SrcCIDR, norm.SrcPort, norm.DstCIDR, norm.DstPort, norm.Action, norm.Target)
	return nil
}

// AddRules adds a batch of rules with a single table rebuild at the
// end. The first invalid rule aborts the batch before anything is
// published.
func (m *RuleManager) AddRules(rules []Rule) error {
	normalized := make([]Rule, 0, len(rules))
	for i := range rules {
		norm, _, err := compile(&rules[i])
		if err != nil {
			return fmt.Errorf("rule %d (%s -> %s): %w", i, rules[i].SrcCIDR, rules[i].DstCIDR, err)
		}
		normalized = append(normalized, norm)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range normalized {
		m.upsertLocked(normalized[i])
		if m.storage != nil {
			if err := m.storage.SaveRule(&normalized[i]); err != nil {
				log.Warnf("Failed to persist rule %s -> %s: %v",
					normalized[i].SrcCIDR, normalized[i].DstCIDR, err)
			}
		}
	}

	if err := m.rebuildLocked(); err != nil {
		return err
	}

	log.Infof("Added %d rules", len(normalized))
	return nil
}

// ListRules returns the active rules in insertion order.
func (m *RuleManager) ListRules() ([]Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

// RuleCount returns the number of active rules.
func (m *RuleManager) RuleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rules)
}

// Classify resolves a packet against the current serving snapshot and
// updates the classification counters.
func (m *RuleManager) Classify(pkt flowtable.Packet) (flowtable.Action, bool) {
	action, ok := m.handle.Load().Classify(pkt)

	m.totalPackets.Add(1)
	if !ok {
		m.policyMisses.Add(1)
		return action, false
	}

	m.policyHits.Add(1)
	switch action.Kind {
	case flowtable.ActionAllow:
		m.allowedPackets.Add(1)
	case flowtable.ActionDeny:
		m.deniedPackets.Add(1)
	}
	return action, true
}

// GetStatistics returns a copy of the current counters.
func (m *RuleManager) GetStatistics() Statistics {
	return Statistics{
		TotalPackets:   m.totalPackets.Load(),
		AllowedPackets: m.allowedPackets.Load(),
		DeniedPackets:  m.deniedPackets.Load(),
		PolicyHits:     m.policyHits.Load(),
		PolicyMisses:   m.policyMisses.Load(),
	}
}

// upsertLocked replaces the rule with the same normalized tuple or
// appends a new one. Caller holds m.mu.
func (m *RuleManager) upsertLocked(norm Rule) {
	for i := range m.rules {
		if m.rules[i].SrcCIDR == norm.SrcCIDR &&
			m.rules[i].SrcPort == norm.SrcPort &&
			m.rules[i].DstCIDR == norm.DstCIDR &&
			m.rules[i].DstPort == norm.DstPort {
			m.rules[i] = norm
			return
		}
	}
	m.rules = append(m.rules, norm)
}

// rebuildLocked builds a fresh table from the rule list, freezes it,
// and swaps it into the handle. Caller holds m.mu.
func (m *RuleManager) rebuildLocked() error {
	tbl := flowtable.NewTable()
	for i := range m.rules {
		_, compiled, err := compile(&m.rules[i])
		if err != nil {
			return err
		}
		if err := tbl.Insert(compiled); err != nil {
			return err
		}
	}
	m.handle.Swap(tbl.Freeze())
	return nil
}

// compile parses a rule specification into an engine rule, returning
// the normalized spec (CIDR strings rewritten to their masked network)
// alongside the compiled rule.
func compile(r *Rule) (Rule, flowtable.Rule, error) {
	src, err := parseCIDR(r.SrcCIDR)
	if err != nil {
		return Rule{}, flowtable.Rule{}, fmt.Errorf("invalid source network: %w", err)
	}

	dst, err := parseCIDR(r.DstCIDR)
	if err != nil {
		return Rule{}, flowtable.Rule{}, fmt.Errorf("invalid destination network: %w", err)
	}

	action, err := parseAction(r.Action, r.Target)
	if err != nil {
		return Rule{}, flowtable.Rule{}, fmt.Errorf("invalid action: %w", err)
	}

	compiled := flowtable.Rule{
		Src:     src,
		SrcPort: r.SrcPort,
		Dst:     dst,
		DstPort: r.DstPort,
		Action:  action,
	}

	norm := *r
	norm.SrcCIDR = prefixString(src)
	norm.DstCIDR = prefixString(dst)
	norm.Action = strings.ToLower(r.Action)
	if action.Kind == flowtable.ActionDeny {
		norm.Target = ""
	}

	return norm, compiled, nil
}

// Helper functions

// parseCIDR parses CIDR notation into an engine prefix. A bare IP is
// treated as a /32 host route.
func parseCIDR(cidr string) (flowtable.Prefix, error) {
	if !strings.Contains(cidr, "/") {
		cidr = cidr + "/32"
	}

	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return flowtable.Prefix{}, err
	}

	if ipnet.IP.To4() == nil {
		return flowtable.Prefix{}, fmt.Errorf("not an IPv4 network: %s", cidr)
	}

	ones, _ := ipnet.Mask.Size()
	return flowtable.Prefix{
		Addr: ipToUint32(ipnet.IP),
		Len:  uint8(ones),
	}, nil
}

func parseAction(action, target string) (flowtable.Action, error) {
	switch strings.ToLower(action) {
	case "allow":
		if target == "" {
			return flowtable.Action{}, fmt.Errorf("allow rule requires a target")
		}
		return flowtable.Allow(target), nil
	case "deny":
		return flowtable.Deny(), nil
	default:
		return flowtable.Action{}, fmt.Errorf("unknown action: %s", action)
	}
}

// ParseAddr parses a dotted-quad IPv4 address into its uint32 value.
func ParseAddr(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return 0, fmt.Errorf("not an IPv4 address: %s", s)
	}
	return ipToUint32(ip), nil
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	if ip == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip)
}

func uint32ToIP(v uint32) string {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).String()
}

func prefixString(p flowtable.Prefix) string {
	return fmt.Sprintf("%s/%d", uint32ToIP(p.Masked()), p.Len)
}
