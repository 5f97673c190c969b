// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk YAML shape for bulk rule loading:
//
//	rules:
//	  - src: 10.0.0.0/24
//	    dst: 10.1.0.5
//	    dst_port: 443
//	    action: allow
//	    target: int1
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRuleFile reads rule specifications from a YAML file. The rules
// are parsed but not validated; pass them to AddRules for validation
// and publication.
func LoadRuleFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}

	return rf.Rules, nil
}
