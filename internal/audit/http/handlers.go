package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/audit-ai/cro-backend/internal/audit/domain"
	"github.com/audit-ai/cro-backend/internal/audit/service"
	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/review"
	"github.com/audit-ai/cro-backend/internal/shop"
)

// Handler exposes the audit flow over HTTP.
type Handler struct {
	audits *service.Service
}

// New creates a new audit Handler.
func New(audits *service.Service) *Handler {
	return &Handler{audits: audits}
}

func respondError(c *gin.Context, err error) {
	var engineErr *engine.Error
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, review.ErrSuggestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrAuditFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrEmptyDescription),
		errors.Is(err, review.ErrUnknownTag),
		errors.Is(err, review.ErrNothingAccepted),
		errors.Is(err, service.ErrMissingURL),
		errors.Is(err, service.ErrMissingGoal),
		errors.Is(err, shop.ErrIdentityMissing):
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
}

func (h *Handler) shopDomain(c *gin.Context) (shop.Domain, bool) {
	sh, err := shop.FromContext(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return sh, true
}

// StartAudit runs crawl + suggest for a page and returns the new session.
func (h *Handler) StartAudit(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	var body startAuditRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.audits.StartAudit(c.Request.Context(), sh, body.URL, body.Goal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(sess))
}

// History lists the shop's past audit records together with the ids of
// sessions still live in the session store.
func (h *Handler) History(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	records, err := h.audits.History(c.Request.Context(), sh, 50)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	live, err := h.audits.ActiveSessions(c.Request.Context(), sh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": records, "active_sessions": live})
}

// GetSession returns the session snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	sess, err := h.audits.Session(c.Request.Context(), sh, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Discard drops the session.
func (h *Handler) Discard(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	if err := h.audits.Discard(c.Request.Context(), sh, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) suggestionOp(c *gin.Context, op func(sh shop.Domain, sessionID, suggestionID string) (*review.Session, error)) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	sess, err := op(sh, c.Param("id"), c.Param("sid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Accept marks a suggestion accepted.
func (h *Handler) Accept(c *gin.Context) {
	h.suggestionOp(c, func(sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
		return h.audits.Accept(c.Request.Context(), sh, sessionID, suggestionID)
	})
}

// Reject marks a suggestion rejected.
func (h *Handler) Reject(c *gin.Context) {
	h.suggestionOp(c, func(sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
		return h.audits.Reject(c.Request.Context(), sh, sessionID, suggestionID)
	})
}

// UnsetStatus returns a suggestion to pending.
func (h *Handler) UnsetStatus(c *gin.Context) {
	h.suggestionOp(c, func(sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
		return h.audits.UnsetStatus(c.Request.Context(), sh, sessionID, suggestionID)
	})
}

// Edit installs a replacement description for a suggestion.
func (h *Handler) Edit(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	var body editRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sess, err := h.audits.Edit(c.Request.Context(), sh, c.Param("id"), c.Param("sid"), body.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Regenerate requests a variant for one suggestion.
func (h *Handler) Regenerate(c *gin.Context) {
	h.suggestionOp(c, func(sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
		return h.audits.Regenerate(c.Request.Context(), sh, sessionID, suggestionID)
	})
}

// ToggleTag flips a tag on a suggestion.
func (h *Handler) ToggleTag(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	sess, err := h.audits.ToggleTag(c.Request.Context(), sh, c.Param("id"), c.Param("sid"), c.Param("tag"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// RegenerateAll replaces the whole suggestion set from a fresh suggest call.
func (h *Handler) RegenerateAll(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	sess, err := h.audits.RegenerateAll(c.Request.Context(), sh, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Export returns the accepted-suggestion bundle as a JSON download.
func (h *Handler) Export(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	export, err := h.audits.Export(c.Request.Context(), sh, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="audit-suggestions.json"`)
	c.JSON(http.StatusOK, export)
}

// Finalize marks the audit reviewed.
func (h *Handler) Finalize(c *gin.Context) {
	sh, ok := h.shopDomain(c)
	if !ok {
		return
	}
	sess, err := h.audits.Finalize(c.Request.Context(), sh, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}
