// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadRuleFile tests loading rules from YAML
func TestLoadRuleFile(t *testing.T) {
	path := writeRuleFile(t, `
rules:
  - src: 1.0.0.0/25
    dst: 2.0.0.0/25
    dst_port: 80
    action: allow
    target: int1
  - src: 0.0.0.0/0
    dst: 0.0.0.0/0
    action: deny
`)

	rules, err := LoadRuleFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "1.0.0.0/25", rules[0].SrcCIDR)
	assert.Equal(t, uint16(80), rules[0].DstPort)
	assert.Equal(t, "allow", rules[0].Action)
	assert.Equal(t, "int1", rules[0].Target)

	assert.Equal(t, "deny", rules[1].Action)
}

// TestLoadRuleFile_Errors tests loader failure modes
func TestLoadRuleFile_Errors(t *testing.T) {
	_, err := LoadRuleFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeRuleFile(t, "rules: [not a rule")
	_, err = LoadRuleFile(path)
	assert.Error(t, err)
}

// TestLoadRuleFile_IntoManager tests the load-then-publish path
func TestLoadRuleFile_IntoManager(t *testing.T) {
	path := writeRuleFile(t, `
rules:
  - src: 10.0.0.0/24
    src_port: 81
    dst: 20.0.0.0/24
    action: allow
    target: alt-http
`)

	rules, err := LoadRuleFile(path)
	require.NoError(t, err)

	m := NewManager()
	require.NoError(t, m.AddRules(rules))

	action, ok := classifyPacket(t, m, "10.0.0.3", 81, "20.0.0.3", 9999)
	require.True(t, ok)
	assert.Equal(t, "alt-http", action.Label)
}
