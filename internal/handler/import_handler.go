package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ledgerd/internal/middleware"
	"ledgerd/internal/service"
)

// ImportHandler handles import lifecycle endpoints.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// GetByID handles GET /api/v1/imports/:id
func (h *ImportHandler) GetByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	importID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid import ID")
		return
	}

	imp, err := h.importService.GetImport(c.Request.Context(), userID, importID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, imp)
}

// Commit handles POST /api/v1/imports/:id/commit. Committing an
// already-committed import returns the prior count, not an error.
func (h *ImportHandler) Commit(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	importID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid import ID")
		return
	}

	count, err := h.importService.Commit(c.Request.Context(), userID, importID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"committed_count": count})
}
