package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flow-classifier/src/agent/pkg/api/models"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

// Version is the agent version reported by the status endpoint.
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	manager   policy.Manager
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(manager policy.Manager) *HealthHandler {
	return &HealthHandler{
		manager:   manager,
		startTime: time.Now(),
	}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "Service is healthy",
	})
}

// GetStatus handles GET /api/v1/status
func (h *HealthHandler) GetStatus(c *gin.Context) {
	rules, err := h.manager.ListRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(
			http.StatusInternalServerError,
			"internal_error",
			"Failed to read rule table",
			err.Error(),
		))
		return
	}

	stats := h.manager.GetStatistics()

	engine := models.EngineStatus{
		Status:  "serving",
		Message: "Classification engine is serving",
	}
	if len(rules) == 0 {
		engine.Status = "idle"
		engine.Message = "No rules loaded"
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "ok",
		Version: Version,
		Engine:  engine,
		API: models.APIStatus{
			Status:  "running",
			Message: "API server is running",
		},
		Statistics: &models.StatisticsResponse{
			TotalPackets:   stats.TotalPackets,
			AllowedPackets: stats.AllowedPackets,
			DeniedPackets:  stats.DeniedPackets,
			PolicyHits:     stats.PolicyHits,
			PolicyMisses:   stats.PolicyMisses,
		},
		RuleCount: len(rules),
		Uptime:    int64(time.Since(h.startTime).Seconds()),
	})
}
