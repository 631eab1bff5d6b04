package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthCheck_NoStore(t *testing.T) {
	r := gin.New()
	NewHealthHandler("projectflow", "1.0.0", nil).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "projectflow", resp.Service)
	assert.Equal(t, "disabled", resp.Store)
}

func TestHealthCheck_StoreUp(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	NewHealthHandler("projectflow", "1.0.0", store).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Store)
}

func TestHealthCheck_StoreDown(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := gin.New()
	NewHealthHandler("projectflow", "1.0.0", store).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "down", resp.Store)
}
