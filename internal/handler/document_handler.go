package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ledgerd/internal/middleware"
	"ledgerd/internal/service"
)

// DocumentHandler handles statement upload and lookup endpoints.
type DocumentHandler struct {
	importService service.ImportService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(importService service.ImportService) *DocumentHandler {
	return &DocumentHandler{importService: importService}
}

// Upload handles POST /api/v1/documents. The statement is extracted and
// staged synchronously; the response carries the document, its import, and
// any extraction warnings. Re-uploading identical content returns the
// existing document with is_duplicate set.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	autoCommit := c.PostForm("auto_commit") == "true"

	result, err := h.importService.Upload(c.Request.Context(), service.UploadInput{
		UserID:     userID,
		Data:       data,
		Filename:   header.Filename,
		MIMEHint:   header.Header.Get("Content-Type"),
		AutoCommit: autoCommit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.IsDuplicate {
		RespondOK(c, result)
		return
	}
	RespondCreated(c, result)
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.importService.GetDocument(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	offset, limit := pagination(c)

	docs, total, err := h.importService.ListDocuments(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// pagination reads offset/limit query params with the standard bounds.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
