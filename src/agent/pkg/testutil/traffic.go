// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package testutil provides deterministic synthetic rule sets and
// traffic for exercising the classification engine in tests and load
// tools. Generators are seeded; the same seed always yields the same
// rules and packets.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/flow-classifier/src/agent/pkg/flowtable"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

// Miss traffic is drawn from the TEST-NET-3 block, which no generated
// rule ever covers.
const missBase = uint32(203)<<24 | uint32(0)<<16 | uint32(113)<<8

// ruleSpec keeps the numeric form of a generated rule so packets can be
// synthesized inside its coverage without re-parsing CIDR strings.
type ruleSpec struct {
	srcBase uint32 // /24 network base
	dstBase uint32
	dstPort uint16
}

// TrafficGenerator produces rule sets and packets for load and
// correctness testing.
type TrafficGenerator struct {
	rnd   *rand.Rand
	specs []ruleSpec
	rules []policy.Rule
}

// NewTrafficGenerator creates a generator with the given seed.
func NewTrafficGenerator(seed int64) *TrafficGenerator {
	return &TrafficGenerator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// GenerateRules produces n distinct rules over /24 networks inside
// 10.0.0.0/8, with a mix of port-specific and any-port rules and a mix
// of allow and deny actions. The generated set is retained so HitPacket
// can synthesize covered traffic.
func (g *TrafficGenerator) GenerateRules(n int) []policy.Rule {
	dstPorts := []uint16{0, 53, 80, 443, 8080}
	seen := make(map[ruleSpec]struct{}, n)

	for len(g.specs) < n {
		spec := ruleSpec{
			srcBase: uint32(10)<<24 | uint32(g.rnd.Intn(256))<<16 | uint32(g.rnd.Intn(256))<<8,
			dstBase: uint32(10)<<24 | uint32(g.rnd.Intn(256))<<16 | uint32(g.rnd.Intn(256))<<8,
			dstPort: dstPorts[g.rnd.Intn(len(dstPorts))],
		}
		if _, dup := seen[spec]; dup {
			continue
		}
		seen[spec] = struct{}{}

		rule := policy.Rule{
			SrcCIDR: cidr24(spec.srcBase),
			DstCIDR: cidr24(spec.dstBase),
			DstPort: spec.dstPort,
		}
		if g.rnd.Intn(4) == 0 {
			rule.Action = "deny"
		} else {
			rule.Action = "allow"
			rule.Target = fmt.Sprintf("svc-%d", len(g.specs))
		}

		g.specs = append(g.specs, spec)
		g.rules = append(g.rules, rule)
	}

	out := make([]policy.Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Clone returns a generator sharing this generator's rule set but
// drawing packets from an independent stream seeded with seed. Useful
// for concurrent workers that must all target the same rule table.
func (g *TrafficGenerator) Clone(seed int64) *TrafficGenerator {
	return &TrafficGenerator{
		rnd:   rand.New(rand.NewSource(seed)),
		specs: g.specs,
		rules: g.rules,
	}
}

// HitPacket returns a packet covered by one of the generated rules.
// Panics if GenerateRules has not been called.
func (g *TrafficGenerator) HitPacket() flowtable.Packet {
	if len(g.specs) == 0 {
		panic("testutil: HitPacket called before GenerateRules")
	}

	spec := g.specs[g.rnd.Intn(len(g.specs))]
	dstPort := spec.dstPort
	if dstPort == flowtable.WildcardPort {
		dstPort = g.ephemeral()
	}

	return flowtable.Packet{
		SrcAddr: spec.srcBase | g.host(),
		SrcPort: g.ephemeral(),
		DstAddr: spec.dstBase | g.host(),
		DstPort: dstPort,
	}
}

// MissPacket returns a packet no generated rule covers.
func (g *TrafficGenerator) MissPacket() flowtable.Packet {
	return flowtable.Packet{
		SrcAddr: missBase | g.host(),
		SrcPort: g.ephemeral(),
		DstAddr: missBase | g.host(),
		DstPort: g.ephemeral(),
	}
}

// Packet returns a hit packet with probability hitRatio and a miss
// packet otherwise.
func (g *TrafficGenerator) Packet(hitRatio float64) flowtable.Packet {
	if g.rnd.Float64() < hitRatio {
		return g.HitPacket()
	}
	return g.MissPacket()
}

func (g *TrafficGenerator) host() uint32 {
	return uint32(1 + g.rnd.Intn(254))
}

// ephemeral returns a port strictly above every port GenerateRules
// hands out, so synthetic packets never collide with a rule's explicit
// port by accident.
func (g *TrafficGenerator) ephemeral() uint16 {
	return uint16(10000 + g.rnd.Intn(50000))
}

func cidr24(base uint32) string {
	return fmt.Sprintf("%d.%d.%d.0/24", byte(base>>24), byte(base>>16), byte(base>>8))
}
