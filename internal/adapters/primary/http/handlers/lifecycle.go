package handlers

import (
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"vtds-application-vshasta/internal/adapters/primary/http/dto"
	"vtds-application-vshasta/internal/core/domain"
)

// StartPhase launches the lifecycle phase named by the route. By default
// the run continues in the background and a 202 with the run record comes
// back; with ?wait=true the response carries the finished run.
func (h *Handler) StartPhase(c *gin.Context) {
	phase, err := domain.ParseRunPhase(path.Base(c.FullPath()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))

	run, err := h.appSvc.StartRun(c.Request.Context(), phase, wait)
	if err != nil {
		log.WithError(err).WithField("phase", phase).Error("start lifecycle run failed")
		mapDomainError(c, err)
		return
	}

	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToRunResponse(run))
}

// VerifyCSM reports Kubernetes node readiness of the deployed system.
func (h *Handler) VerifyCSM(c *gin.Context) {
	nodes, err := h.appSvc.Verify(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVerifyCSMResponse(nodes))
}
