package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ledgerd/internal/domain"
	"ledgerd/internal/handler"
	"ledgerd/mocks"
)

func TestImportHandler_Commit_Success(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	importID := uuid.New()
	mockSvc.On("Commit", mock.Anything, userID, importID).Return(12, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/imports/"+importID.String()+"/commit", nil)
	c.Params = gin.Params{{Key: "id", Value: importID.String()}}
	setUserContext(c, userID)

	h.Commit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"committed_count":12`)
}

func TestImportHandler_Commit_NotParsed(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	importID := uuid.New()
	mockSvc.On("Commit", mock.Anything, userID, importID).Return(0, domain.ErrImportNotParsed)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/imports/"+importID.String()+"/commit", nil)
	c.Params = gin.Params{{Key: "id", Value: importID.String()}}
	setUserContext(c, userID)

	h.Commit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "IMPORT_NOT_PARSED")
}

func TestImportHandler_GetByID_Success(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	importID := uuid.New()
	mockSvc.On("GetImport", mock.Anything, userID, importID).
		Return(&domain.Import{ID: importID, UserID: userID, Status: domain.ImportStatusParsed}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/imports/"+importID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: importID.String()}}
	setUserContext(c, userID)

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"parsed"`)
}
