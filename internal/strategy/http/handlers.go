package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/shop"
	"github.com/audit-ai/cro-backend/internal/strategy/repository"
	"github.com/audit-ai/cro-backend/internal/strategy/service"
)

// Handler exposes the strategy assistant over HTTP.
type Handler struct {
	strategy *service.Service
}

// New creates a new strategy Handler.
func New(strategy *service.Service) *Handler {
	return &Handler{strategy: strategy}
}

// Register mounts the strategy routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/strategy")
	grp.POST("/plan", h.GeneratePlan)
	grp.GET("/prompts", h.RecentPrompts)
}

type planRequest struct {
	Goal string `json:"goal"`
}

// GeneratePlan requests a strategy plan for a business goal.
func (h *Handler) GeneratePlan(c *gin.Context) {
	sh, err := shop.FromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var body planRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.strategy.GeneratePlan(c.Request.Context(), sh, body.Goal)
	if err != nil {
		var engineErr *engine.Error
		switch {
		case errors.Is(err, service.ErrMissingGoal), errors.Is(err, shop.ErrIdentityMissing):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &engineErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":         "insight engine call failed",
				"engine_status": engineErr.Status,
				"details":       engineErr.Body,
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

// RecentPrompts returns the shop's recent goals.
func (h *Handler) RecentPrompts(c *gin.Context) {
	sh, err := shop.FromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prompts, err := h.strategy.RecentPrompts(c.Request.Context(), sh, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list prompts"})
		return
	}
	if prompts == nil {
		prompts = []repository.Prompt{}
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}
