package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flow-classifier/src/agent/pkg/api/models"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

// RuleHandler handles rule-related API requests
type RuleHandler struct {
	manager policy.Manager
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(manager policy.Manager) *RuleHandler {
	return &RuleHandler{
		manager: manager,
	}
}

// CreateRule handles POST /api/v1/rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Invalid rule request")
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest,
			"invalid_request",
			"Request validation failed",
			err.Error(),
		))
		return
	}

	rule := &policy.Rule{
		SrcCIDR: req.SrcCIDR,
		SrcPort: req.SrcPort,
		DstCIDR: req.DstCIDR,
		DstPort: req.DstPort,
		Action:  req.Action,
		Target:  req.Target,
	}

	if err := h.manager.AddRule(rule); err != nil {
		log.WithFields(log.Fields{
			"src": req.SrcCIDR,
			"dst": req.DstCIDR,
		}).WithError(err).Warn("Failed to add rule")
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest,
			"invalid_rule",
			"Failed to add rule",
			err.Error(),
		))
		return
	}

	c.JSON(http.StatusCreated, ruleResponse(rule))
}

// ListRules handles GET /api/v1/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	rules, err := h.manager.ListRules()
	if err != nil {
		log.WithError(err).Error("Failed to list rules")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(
			http.StatusInternalServerError,
			"internal_error",
			"Failed to list rules",
			err.Error(),
		))
		return
	}

	resp := models.RuleListResponse{
		Rules: make([]models.RuleResponse, 0, len(rules)),
		Count: len(rules),
	}
	for i := range rules {
		resp.Rules = append(resp.Rules, *ruleResponse(&rules[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func ruleResponse(r *policy.Rule) *models.RuleResponse {
	return &models.RuleResponse{
		SrcCIDR: r.SrcCIDR,
		SrcPort: r.SrcPort,
		DstCIDR: r.DstCIDR,
		DstPort: r.DstPort,
		Action:  r.Action,
		Target:  r.Target,
	}
}
