package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vtds-application-vshasta/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrNodeClassNotFound),
		errors.Is(err, domain.ErrNetworkNotFound),
		errors.Is(err, domain.ErrNetworkRoleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / precondition errors
	case errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrNotConsolidated),
		errors.Is(err, domain.ErrNotPrepared),
		errors.Is(err, domain.ErrNoApplicationConfig),
		errors.Is(err, domain.ErrMissingGeometry),
		errors.Is(err, domain.ErrMissingSystemConfig),
		errors.Is(err, domain.ErrMissingBMCConfig),
		errors.Is(err, domain.ErrNoCSMVersion),
		errors.Is(err, domain.ErrInvalidCSMVersion),
		errors.Is(err, domain.ErrInvalidCIDR),
		errors.Is(err, domain.ErrPoolOutsideNetwork),
		errors.Is(err, domain.ErrGatewayOutsideNetwork):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrCSMNotAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
