// Package policy provides rule management on top of the flowtable
// classification engine.
//
// It handles:
//   - Parsing CIDR/port rule specifications into engine rules
//   - Building, freezing, and atomically swapping serving tables
//   - Rule persistence (SQLite) and bulk loading from YAML files
//   - Classification counters
//
// # Rule Model
//
// A rule is defined by a 4-tuple pattern:
//   - Source network (CIDR notation; a bare IP means /32)
//   - Source port (0 for any)
//   - Destination network (CIDR notation)
//   - Destination port (0 for any)
//
// And an action:
//   - allow: permit the flow toward the named target
//   - deny: drop the flow
//
// Two rules with the same normalized tuple are one rule; the later
// insert wins. There is no rule deletion: policy changes are made by
// rebuilding the table, which AddRule does on every call.
//
// # Example Usage
//
//	m := policy.NewManager()
//
//	err := m.AddRule(&policy.Rule{
//	    SrcCIDR: "10.0.0.0/24",
//	    DstCIDR: "10.1.0.5/32",
//	    DstPort: 443,
//	    Action:  "allow",
//	    Target:  "int1",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	action, ok := m.Classify(flowtable.Packet{...})
//
// # Thread Safety
//
// Classification goes through an atomically swapped frozen snapshot and
// is safe from any number of goroutines. Rule mutation is serialized
// internally; AddRule may be called concurrently with Classify.
package policy
