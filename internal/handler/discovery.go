package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/service"
)

// DiscoveryHandler handles destination discovery requests
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
	logger    *zap.Logger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discovery *service.DiscoveryService, log *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discovery: discovery,
		logger:    logger.OrNop(log).Named("discovery_handler"),
	}
}

// Recommend handles POST /api/discovery
func (h *DiscoveryHandler) Recommend(c *gin.Context) {
	var req model.DiscoveryRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.discovery.Recommend(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
