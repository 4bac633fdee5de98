package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtds-application-vshasta/internal/adapters/primary/http/dto"
	"vtds-application-vshasta/internal/core/domain"
)

// GetXNameMap returns the xname to node mapping computed by consolidate.
func (h *Handler) GetXNameMap(c *gin.Context) {
	cfg := h.appSvc.Config()
	if cfg.XNameMap == nil {
		mapDomainError(c, domain.ErrNotConsolidated)
		return
	}
	c.JSON(http.StatusOK, dto.ToXNameMapResponse(cfg.XNameMap))
}

// GetHostMap returns the cluster wide hostname to IPv4 map computed by
// consolidate.
func (h *Handler) GetHostMap(c *gin.Context) {
	cfg := h.appSvc.Config()
	if cfg.HostIPv4Map == nil {
		mapDomainError(c, domain.ErrNotConsolidated)
		return
	}
	c.JSON(http.StatusOK, dto.HostMapResponse{Hosts: cfg.HostIPv4Map})
}

// GetConfig returns the application configuration in its current state of
// consolidation. The generated BMC password is masked.
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := *h.appSvc.Config()
	if cfg.BMC.Password != "" {
		cfg.BMC.Password = "********"
	}
	c.JSON(http.StatusOK, cfg)
}
