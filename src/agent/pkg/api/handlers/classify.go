package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/flow-classifier/src/agent/pkg/api/models"
	"github.com/flow-classifier/src/agent/pkg/flowtable"
	"github.com/flow-classifier/src/agent/pkg/policy"
)

// ClassifyHandler handles classification API requests
type ClassifyHandler struct {
	manager policy.Manager
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(manager policy.Manager) *ClassifyHandler {
	return &ClassifyHandler{
		manager: manager,
	}
}

// Classify handles POST /api/v1/classify
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest,
			"invalid_request",
			"Request validation failed",
			err.Error(),
		))
		return
	}

	src, err := policy.ParseAddr(req.SrcIP)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest,
			"invalid_address",
			"Invalid source address",
			err.Error(),
		))
		return
	}

	dst, err := policy.ParseAddr(req.DstIP)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest,
			"invalid_address",
			"Invalid destination address",
			err.Error(),
		))
		return
	}

	pkt := flowtable.Packet{
		SrcAddr: src,
		SrcPort: req.SrcPort,
		DstAddr: dst,
		DstPort: req.DstPort,
	}

	action, matched := h.manager.Classify(pkt)

	resp := models.ClassifyResponse{Matched: matched}
	if matched {
		switch action.Kind {
		case flowtable.ActionAllow:
			resp.Action = "allow"
			resp.Target = action.Label
		case flowtable.ActionDeny:
			resp.Action = "deny"
		}
	}

	log.WithFields(log.Fields{
		"src_ip":   req.SrcIP,
		"src_port": req.SrcPort,
		"dst_ip":   req.DstIP,
		"dst_port": req.DstPort,
		"matched":  matched,
	}).Debug("Classification query")

	c.JSON(http.StatusOK, resp)
}
