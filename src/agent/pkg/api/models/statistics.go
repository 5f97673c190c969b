package models

// StatisticsResponse represents all classification statistics
type StatisticsResponse struct {
	TotalPackets   uint64 `json:"total_packets"`
	AllowedPackets uint64 `json:"allowed_packets"`
	DeniedPackets  uint64 `json:"denied_packets"`
	PolicyHits     uint64 `json:"policy_hits"`
	PolicyMisses   uint64 `json:"policy_misses"`
}

// PacketStatsResponse represents packet-specific statistics
type PacketStatsResponse struct {
	TotalPackets   uint64  `json:"total_packets"`
	AllowedPackets uint64  `json:"allowed_packets"`
	DeniedPackets  uint64  `json:"denied_packets"`
	AllowRate      float64 `json:"allow_rate"`
	DenyRate       float64 `json:"deny_rate"`
}

// PolicyStatsResponse represents rule-match statistics
type PolicyStatsResponse struct {
	PolicyHits   uint64  `json:"policy_hits"`
	PolicyMisses uint64  `json:"policy_misses"`
	HitRate      float64 `json:"hit_rate"`
}
