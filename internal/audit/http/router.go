package http

import "github.com/gin-gonic/gin"

// Register mounts the audit routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	audits := rg.Group("/audits")
	audits.POST("", h.StartAudit)
	audits.GET("", h.History)
	audits.GET("/:id", h.GetSession)
	audits.DELETE("/:id", h.Discard)
	audits.POST("/:id/finalize", h.Finalize)
	audits.POST("/:id/regenerate", h.RegenerateAll)
	audits.GET("/:id/export", h.Export)

	sugg := audits.Group("/:id/suggestions/:sid")
	sugg.POST("/accept", h.Accept)
	sugg.POST("/reject", h.Reject)
	sugg.DELETE("/status", h.UnsetStatus)
	sugg.PUT("", h.Edit)
	sugg.POST("/regenerate", h.Regenerate)
	sugg.POST("/tags/:tag", h.ToggleTag)
}
