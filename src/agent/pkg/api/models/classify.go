package models

// ClassifyRequest represents a classification query: a fully resolved
// 4-tuple, no wildcards
type ClassifyRequest struct {
	SrcIP   string `json:"src_ip" binding:"required"`
	SrcPort uint16 `json:"src_port"`
	DstIP   string `json:"dst_ip" binding:"required"`
	DstPort uint16 `json:"dst_port"`
}

// ClassifyResponse represents a classification result. Matched false
// means no rule covers the tuple; the default action on a miss is
// deployment policy, so action and target are omitted.
type ClassifyResponse struct {
	Matched bool   `json:"matched"`
	Action  string `json:"action,omitempty"`
	Target  string `json:"target,omitempty"`
}
