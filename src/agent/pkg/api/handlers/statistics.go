package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flow-classifier/src/agent/pkg/api/models"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

// StatisticsHandler handles statistics API requests
type StatisticsHandler struct {
	manager policy.Manager
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(manager policy.Manager) *StatisticsHandler {
	return &StatisticsHandler{
		manager: manager,
	}
}

// GetAllStats handles GET /api/v1/stats
func (h *StatisticsHandler) GetAllStats(c *gin.Context) {
	stats := h.manager.GetStatistics()
	c.JSON(http.StatusOK, models.StatisticsResponse{
		TotalPackets:   stats.TotalPackets,
		AllowedPackets: stats.AllowedPackets,
		DeniedPackets:  stats.DeniedPackets,
		PolicyHits:     stats.PolicyHits,
		PolicyMisses:   stats.PolicyMisses,
	})
}

// GetPacketStats handles GET /api/v1/stats/packets
func (h *StatisticsHandler) GetPacketStats(c *gin.Context) {
	stats := h.manager.GetStatistics()

	resp := models.PacketStatsResponse{
		TotalPackets:   stats.TotalPackets,
		AllowedPackets: stats.AllowedPackets,
		DeniedPackets:  stats.DeniedPackets,
	}
	if stats.TotalPackets > 0 {
		resp.AllowRate = float64(stats.AllowedPackets) / float64(stats.TotalPackets) * 100
		resp.DenyRate = float64(stats.DeniedPackets) / float64(stats.TotalPackets) * 100
	}

	c.JSON(http.StatusOK, resp)
}

// GetPolicyStats handles GET /api/v1/stats/policy
func (h *StatisticsHandler) GetPolicyStats(c *gin.Context) {
	stats := h.manager.GetStatistics()

	resp := models.PolicyStatsResponse{
		PolicyHits:   stats.PolicyHits,
		PolicyMisses: stats.PolicyMisses,
	}
	if total := stats.PolicyHits + stats.PolicyMisses; total > 0 {
		resp.HitRate = float64(stats.PolicyHits) / float64(total) * 100
	}

	c.JSON(http.StatusOK, resp)
}
