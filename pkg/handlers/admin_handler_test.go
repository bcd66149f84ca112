package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMaintenanceMode(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/maintenance/start", `{"username":"admin","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/maintenance/start", `{"username":"admin"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/maintenance/start", `{"username":"admin","password":"pw"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/reviews/datasets", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/maintenance/stop", `{"username":"admin","password":"pw"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/reviews/datasets", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminWithoutPasswordRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &AdminHandler{AdminUsername: "admin"}
	r := gin.New()
	r.POST("/start", h.StartMaintenance)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/start", `{"username":"admin","password":"x"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth("secret"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-KEY", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	open := gin.New()
	open.Use(APIKeyAuth(""))
	open.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMonitoringLogsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := services.NewMonitoringService()
	svc.RecordIngestion(services.IngestionEntry{Source: "upload", Reviews: 3})
	h := NewMonitoringHandler(svc)

	r := gin.New()
	r.GET("/logs", h.GetLogs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?period=1h", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["requestsOverTime"], 1)
	assert.Equal(t, float64(3), body["ingestion"].(map[string]interface{})["reviewsIngested"])

	assert.Equal(t, 24*7, periodHours("7d"))
	assert.Equal(t, 24, periodHours("bogus"))
}
