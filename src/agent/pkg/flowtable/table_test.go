// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package flowtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTable_InsertValidation tests prefix length validation
func TestTable_InsertValidation(t *testing.T) {
	testCases := []struct {
		name        string
		rule        Rule
		expectError bool
	}{
		{
			name: "valid exact host rule",
			rule: Rule{
				Src:    Prefix{Addr: ip("192.168.1.100"), Len: 32},
				Dst:    Prefix{Addr: ip("10.0.0.1"), Len: 32},
				Action: Allow("web"),
			},
		},
		{
			name: "valid catch-all rule",
			rule: Rule{
				Src:    Prefix{Len: 0},
				Dst:    Prefix{Len: 0},
				Action: Deny(),
			},
		},
		{
			name: "source prefix too long",
			rule: Rule{
				Src:    Prefix{Addr: ip("192.168.1.0"), Len: 33},
				Dst:    Prefix{Addr: ip("10.0.0.1"), Len: 32},
				Action: Deny(),
			},
			expectError: true,
		},
		{
			name: "destination prefix too long",
			rule: Rule{
				Src:    Prefix{Addr: ip("192.168.1.0"), Len: 24},
				Dst:    Prefix{Addr: ip("10.0.0.1"), Len: 40},
				Action: Deny(),
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := NewTable()
			err := tbl.Insert(tc.rule)

			if tc.expectError {
				assert.ErrorIs(t, err, ErrInvalidPrefix)
				assert.Equal(t, 0, tbl.Len())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, tbl.Len())
		})
	}
}

// TestTable_RejectedRuleDoesNotCorrupt tests that a rejected rule leaves
// previously inserted rules intact
func TestTable_RejectedRuleDoesNotCorrupt(t *testing.T) {
	tbl := NewTable()

	good := Rule{
		Src:     Prefix{Addr: ip("10.0.0.0"), Len: 24},
		Dst:     Prefix{Addr: ip("20.0.0.0"), Len: 24},
		DstPort: 80,
		Action:  Allow("app"),
	}
	require.NoError(t, tbl.Insert(good))

	bad := good
	bad.Src.Len = 99
	assert.ErrorIs(t, tbl.Insert(bad), ErrInvalidPrefix)

	action, ok := tbl.Classify(Packet{
		SrcAddr: ip("10.0.0.7"),
		DstAddr: ip("20.0.0.7"),
		SrcPort: 5000,
		DstPort: 80,
	})
	require.True(t, ok)
	assert.Equal(t, Allow("app"), action)
}

// TestTable_UpsertLastWriteWins tests that re-inserting an identical
// tuple overwrites the action instead of erroring or duplicating
func TestTable_UpsertLastWriteWins(t *testing.T) {
	tbl := NewTable()

	rule := Rule{
		Src:     Prefix{Addr: ip("10.0.0.0"), Len: 24},
		Dst:     Prefix{Addr: ip("20.0.0.0"), Len: 24},
		DstPort: 443,
		Action:  Allow("old"),
	}
	require.NoError(t, tbl.Insert(rule))

	rule.Action = Deny()
	require.NoError(t, tbl.Insert(rule))

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 1, tbl.src.len())
	assert.Equal(t, 1, tbl.dst.len())

	action, ok := tbl.Classify(Packet{
		SrcAddr: ip("10.0.0.1"),
		DstAddr: ip("20.0.0.1"),
		SrcPort: 1234,
		DstPort: 443,
	})
	require.True(t, ok)
	assert.Equal(t, Deny(), action)
}

// TestTable_NormalizesHostBits tests that rules are keyed by their
// masked address even when inserted with host bits set
func TestTable_NormalizesHostBits(t *testing.T) {
	tbl := NewTable()

	// 10.0.0.99/24 normalizes to 10.0.0.0/24.
	err := tbl.Insert(Rule{
		Src:    Prefix{Addr: ip("10.0.0.99"), Len: 24},
		Dst:    Prefix{Addr: ip("20.0.0.99"), Len: 24},
		Action: Allow("svc"),
	})
	require.NoError(t, err)

	action, ok := tbl.Classify(Packet{
		SrcAddr: ip("10.0.0.1"),
		DstAddr: ip("20.0.0.200"),
	})
	require.True(t, ok)
	assert.Equal(t, Allow("svc"), action)
}

// TestTable_InsertAfterFreeze tests the one-way building-to-serving
// transition
func TestTable_InsertAfterFreeze(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Insert(Rule{
		Src:    Prefix{Len: 0},
		Dst:    Prefix{Len: 0},
		Action: Deny(),
	}))

	snap := tbl.Freeze()
	require.NotNil(t, snap)

	err := tbl.Insert(Rule{
		Src:    Prefix{Addr: ip("10.0.0.0"), Len: 24},
		Dst:    Prefix{Len: 0},
		Action: Allow("late"),
	})
	assert.ErrorIs(t, err, ErrFrozen)
	assert.Equal(t, 1, snap.Len())
}
