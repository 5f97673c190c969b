// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage
}

// TestSQLiteStorage_SaveAndLoad tests saving and loading rules
func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	storage := newTestStorage(t)

	rule := &Rule{
		SrcCIDR: "192.168.1.0/24",
		SrcPort: 0,
		DstCIDR: "10.0.0.1/32",
		DstPort: 80,
		Action:  "allow",
		Target:  "web",
	}

	err := storage.SaveRule(rule)
	assert.NoError(t, err)

	rules, err := storage.LoadRules()
	assert.NoError(t, err)
	require.Len(t, rules, 1)

	loaded := rules[0]
	assert.Equal(t, rule.SrcCIDR, loaded.SrcCIDR)
	assert.Equal(t, rule.SrcPort, loaded.SrcPort)
	assert.Equal(t, rule.DstCIDR, loaded.DstCIDR)
	assert.Equal(t, rule.DstPort, loaded.DstPort)
	assert.Equal(t, rule.Action, loaded.Action)
	assert.Equal(t, rule.Target, loaded.Target)
}

// TestSQLiteStorage_UpsertSameTuple tests that saving the same tuple
// twice keeps one row with the later action
func TestSQLiteStorage_UpsertSameTuple(t *testing.T) {
	storage := newTestStorage(t)

	first := &Rule{
		SrcCIDR: "10.0.0.0/24",
		DstCIDR: "20.0.0.0/24",
		DstPort: 443,
		Action:  "allow",
		Target:  "old",
	}
	require.NoError(t, storage.SaveRule(first))

	second := *first
	second.Action = "deny"
	second.Target = ""
	require.NoError(t, storage.SaveRule(&second))

	count, err := storage.RuleCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rules, err := storage.LoadRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "deny", rules[0].Action)
	assert.Equal(t, "", rules[0].Target)
}

// TestSQLiteStorage_MultipleRules tests saving and loading several rules
func TestSQLiteStorage_MultipleRules(t *testing.T) {
	storage := newTestStorage(t)

	rules := []*Rule{
		{SrcCIDR: "192.168.1.0/24", DstCIDR: "10.0.0.1/32", DstPort: 80, Action: "allow", Target: "web"},
		{SrcCIDR: "192.168.1.0/24", DstCIDR: "10.0.0.2/32", DstPort: 443, Action: "deny"},
		{SrcCIDR: "0.0.0.0/0", DstCIDR: "0.0.0.0/0", Action: "deny"},
	}

	for _, r := range rules {
		require.NoError(t, storage.SaveRule(r))
	}

	loaded, err := storage.LoadRules()
	assert.NoError(t, err)
	assert.Len(t, loaded, len(rules))

	count, err := storage.RuleCount()
	assert.NoError(t, err)
	assert.Equal(t, len(rules), count)
}

// TestSQLiteStorage_ClearAll tests clearing storage
func TestSQLiteStorage_ClearAll(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveRule(&Rule{
		SrcCIDR: "10.0.0.0/8", DstCIDR: "10.0.0.0/8", Action: "deny",
	}))

	require.NoError(t, storage.ClearAll())

	count, err := storage.RuleCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestRuleManager_LoadPersisted tests restoring the serving table from
// storage
func TestRuleManager_LoadPersisted(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveRule(&Rule{
		SrcCIDR: "10.0.0.0/24",
		DstCIDR: "20.0.0.0/24",
		DstPort: 80,
		Action:  "allow",
		Target:  "web",
	}))
	// A row that no longer parses must not poison the restore.
	require.NoError(t, storage.SaveRule(&Rule{
		SrcCIDR: "garbage",
		DstCIDR: "20.0.0.0/24",
		Action:  "allow",
		Target:  "x",
	}))

	m := NewManagerWithStorage(storage)
	require.NoError(t, m.LoadPersisted())

	assert.Equal(t, 1, m.RuleCount())

	action, ok := classifyPacket(t, m, "10.0.0.9", 555, "20.0.0.9", 80)
	require.True(t, ok)
	assert.Equal(t, "web", action.Label)
}

// TestRuleManager_AddRulePersists tests that AddRule writes through to
// storage
func TestRuleManager_AddRulePersists(t *testing.T) {
	storage := newTestStorage(t)
	m := NewManagerWithStorage(storage)

	require.NoError(t, m.AddRule(&Rule{
		SrcCIDR: "10.0.0.5/24",
		DstCIDR: "20.0.0.0/24",
		DstPort: 22,
		Action:  "deny",
	}))

	rules, err := storage.LoadRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	// Stored in normalized form.
	assert.Equal(t, "10.0.0.0/24", rules[0].SrcCIDR)
}
