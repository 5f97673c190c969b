package models

// RuleRequest represents a rule creation request
type RuleRequest struct {
	SrcCIDR string `json:"src" binding:"required"`
	SrcPort uint16 `json:"src_port"`
	DstCIDR string `json:"dst" binding:"required"`
	DstPort uint16 `json:"dst_port"`
	Action  string `json:"action" binding:"required,oneof=allow deny"`
	Target  string `json:"target"`
}

// RuleResponse represents a rule in API responses
type RuleResponse struct {
	SrcCIDR string `json:"src"`
	SrcPort uint16 `json:"src_port"`
	DstCIDR string `json:"dst"`
	DstPort uint16 `json:"dst_port"`
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
}

// RuleListResponse represents a list of rules
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Count int            `json:"count"`
}
