package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ledgerd/internal/middleware"
)

func newLoggedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/things", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/boom", func(c *gin.Context) { panic("kaput") })
	return r
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLogger_LogsRequestWithID(t *testing.T) {
	r := newLoggedRouter()
	buf := captureLog(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/things?offset=5", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-abc-123", w.Header().Get("X-Request-ID"))

	line := buf.String()
	assert.Contains(t, line, "GET /things?offset=5")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "request_id=req-abc-123")
}

func TestLogger_SkipsHealthProbes(t *testing.T) {
	r := newLoggedRouter()
	buf := captureLog(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	r := newLoggedRouter()
	captureLog(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/things", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecovery_PanicBecomesErrorEnvelope(t *testing.T) {
	r := newLoggedRouter()
	buf := captureLog(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "panic recovered")
}
