// Package flowtable implements the userspace flow-classification engine:
// an in-memory table of access-control rules over IPv4 prefixes and ports,
// and the matching algorithm that resolves a packet 4-tuple to a rule.
//
// # Rule Model
//
// A rule pairs a source and destination network prefix with a source and
// destination port pattern, and carries an action (deny, or allow with a
// target label). Port 0 is the wildcard pattern: a rule registered with
// port 0 matches any port. The flip side is that a rule cannot name port
// 0 literally; this is an inherited sentinel, kept as documented behavior.
//
// # Matching
//
// Classification resolves each address side to its most specific
// registered prefix independently, then looks the resulting normalized
// tuple up in an exact-match table. Port wildcards are tried in
// decreasing order of specificity across four combinations:
//
//	(src port, dst port)
//	(any,      dst port)
//	(src port, any)
//	(any,      any)
//
// A combination is skipped only when one of its address sides has no
// registered prefix for that port pattern. Once both sides resolve, the
// exact-match answer is final: a missing tuple is a no-match, and softer
// combinations are not consulted.
//
// A packet outside every rule's coverage yields no match; the default
// action on a miss is the caller's policy, not the engine's.
//
// # Lifecycle
//
// A Table is built once (insert-only) and then frozen. A frozen Snapshot
// is immutable and safe for concurrent classification from any number of
// goroutines with no locking on the read path. Rule changes are made by
// building a new table and swapping it into a Handle, never by mutating
// a table readers may hold.
package flowtable
