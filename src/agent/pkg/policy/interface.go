// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import "github.com/flow-classifier/src/agent/pkg/flowtable"

// Manager interface defines the operations for rule management and
// classification. This interface is useful for testing and dependency
// injection.
type Manager interface {
	AddRule(r *Rule) error
	ListRules() ([]Rule, error)
	Classify(pkt flowtable.Packet) (flowtable.Action, bool)
	GetStatistics() Statistics
}

// Ensure RuleManager implements Manager interface
var _ Manager = (*RuleManager)(nil)
