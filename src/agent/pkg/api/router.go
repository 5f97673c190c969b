package api

import (
	"github.com/flow-classifier/src/agent/pkg/api/handlers"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.manager)
	ruleHandler := handlers.NewRuleHandler(s.manager)
	classifyHandler := handlers.NewClassifyHandler(s.manager)
	statsHandler := handlers.NewStatisticsHandler(s.manager)

	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Health and status endpoints
		v1.GET("/health", healthHandler.GetHealth)
		v1.GET("/status", healthHandler.GetStatus)

		// Rule management endpoints
		rules := v1.Group("/rules")
		{
			rules.POST("", ruleHandler.CreateRule)
			rules.GET("", ruleHandler.ListRules)
		}

		// Classification endpoint
		v1.POST("/classify", classifyHandler.Classify)

		// Statistics endpoints
		stats := v1.Group("/stats")
		{
			stats.GET("", statsHandler.GetAllStats)
			stats.GET("/packets", statsHandler.GetPacketStats)
			stats.GET("/policy", statsHandler.GetPolicyStats)
		}
	}
}
