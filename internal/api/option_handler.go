package api

import (
	"errors"
	"net/http"

	"github.com/case-import-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OptionHandler handles dropdown option endpoints
type OptionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewOptionHandler creates a new OptionHandler
func NewOptionHandler(services *service.Services, log zerolog.Logger) *OptionHandler {
	return &OptionHandler{
		services: services,
		log:      log.With().Str("handler", "option").Logger(),
	}
}

// Refresh handles POST /v1/options/refresh
func (h *OptionHandler) Refresh(c *gin.Context) {
	caller := callerFrom(c)

	n, err := h.services.Option.Refresh(c.Request.Context(), caller)
	if err != nil {
		if errors.Is(err, service.ErrNotPrivileged) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("tenant_id", caller.TenantID).Msg("Options refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh options"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}
