package handlers

import (
	"vtds-application-vshasta/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	appSvc *services.ApplicationService
}

func New(appSvc *services.ApplicationService) *Handler {
	return &Handler{appSvc: appSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Lifecycle phases; each starts a deployment run.
	r.POST("/consolidate", h.StartPhase)
	r.POST("/prepare", h.StartPhase)
	r.POST("/validate", h.StartPhase)
	r.POST("/deploy", h.StartPhase)
	r.POST("/remove", h.StartPhase)

	// Deployment run history
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/:id", h.GetRun)

	// Consolidated topology and configuration
	r.GET("/topology/xnames", h.GetXNameMap)
	r.GET("/topology/hosts", h.GetHostMap)
	r.GET("/config", h.GetConfig)

	// Post-deployment verification
	r.GET("/verify/csm", h.VerifyCSM)
}
