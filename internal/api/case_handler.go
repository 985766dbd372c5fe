package api

import (
	"errors"
	"net/http"

	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CaseHandler handles duplicate detection and deletion endpoints
type CaseHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(services *service.Services, log zerolog.Logger) *CaseHandler {
	return &CaseHandler{
		services: services,
		log:      log.With().Str("handler", "case").Logger(),
	}
}

type checkDuplicateRequest struct {
	Nom           string `json:"nom"`
	Prenom        string `json:"prenom"`
	DateNaissance string `json:"dateNaissance"`
}

type checkDuplicateResponse struct {
	HasDuplicate bool                        `json:"hasDuplicate"`
	Duplicates   []models.DuplicateCandidate `json:"duplicates"`
}

// CheckDuplicate handles POST /v1/cases/check-duplicate
func (h *CaseHandler) CheckDuplicate(c *gin.Context) {
	caller := callerFrom(c)

	var req checkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	found, err := h.services.Duplicate.FindDuplicates(c.Request.Context(), caller.TenantID, req.Nom, req.Prenom, req.DateNaissance)
	if err != nil {
		h.log.Error().Err(err).Str("tenant_id", caller.TenantID).Msg("Duplicate check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check duplicates"})
		return
	}

	resp := checkDuplicateResponse{Duplicates: found}
	for _, d := range found {
		if d.ExactName {
			resp.HasDuplicate = true
			break
		}
	}
	c.JSON(http.StatusOK, resp)
}

type deleteCasesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// DeleteCases handles DELETE /v1/cases
func (h *CaseHandler) DeleteCases(c *gin.Context) {
	caller := callerFrom(c)

	var req deleteCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids is required"})
		return
	}

	deleted, err := h.services.Duplicate.BulkDelete(c.Request.Context(), caller, req.IDs)
	if err != nil {
		var authErr *service.AuthorizationError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error()})
			return
		}
		h.log.Error().Err(err).Str("tenant_id", caller.TenantID).Msg("Bulk delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete cases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
