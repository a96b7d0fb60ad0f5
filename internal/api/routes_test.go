package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"truthlens/internal/models"
	"truthlens/internal/quota"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// panicClassifier always panics, for exercising the recovery middleware.
type panicClassifier struct{}

func (panicClassifier) Classify(ctx context.Context, mediaURL, mediaType string) (*models.MediaCheckResponse, error) {
	panic("classifier blew up")
}

func newTestRouter(t *testing.T, withQuota bool) *mux.Router {
	t.Helper()

	guard := quota.NewMemoryGuard(2, time.Minute)
	t.Cleanup(guard.Close)

	classifier := &stubClassifier{result: &models.MediaCheckResponse{
		MediaType: "image",
		Message:   "Likely authentic",
	}}
	handlers := NewHandlers(classifier, guard, WithMediaCheckEnabled(true))

	var quotaMW mux.MiddlewareFunc
	if withQuota {
		quotaMW = quota.Middleware(guard)
	}

	return SetupRoutes(handlers, models.NewDefaultConfig(), quotaMW)
}

func TestSetupRoutes_Endpoints(t *testing.T) {
	router := newTestRouter(t, false)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/v1/health", http.StatusOK},
		{"GET", "/api/v1/usage", http.StatusOK},
		{"GET", "/api/v1/check-media", http.StatusMethodNotAllowed},
		{"DELETE", "/api/v1/check-media", http.StatusMethodNotAllowed},
		{"GET", "/api/v1/history", http.StatusServiceUnavailable},
		{"GET", "/api/v1/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestSetupRoutes_QuotaOnCheckMediaOnly(t *testing.T) {
	router := newTestRouter(t, true)

	body := `{"media_url": "https://example.com/img.png", "media_type": "image"}`

	// Guard limit is 2; exhaust it through the middleware
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/check-media", jsonBody(body))
		req.Header.Set(quota.IdentityHeader, "user-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
	}

	req := httptest.NewRequest("POST", "/api/v1/check-media", jsonBody(body))
	req.Header.Set(quota.IdentityHeader, "user-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Usage stays readable after exhaustion
	usageReq := httptest.NewRequest("GET", "/api/v1/usage", nil)
	usageReq.Header.Set(quota.IdentityHeader, "user-123")
	usageRec := httptest.NewRecorder()
	router.ServeHTTP(usageRec, usageReq)
	assert.Equal(t, http.StatusOK, usageRec.Code)

	var usage models.UsageResponse
	require.NoError(t, json.NewDecoder(usageRec.Body).Decode(&usage))
	assert.Equal(t, 2, usage.UsedToday)
	assert.Equal(t, 0, usage.RemainingToday)
}

func TestSetupRoutes_RateLimitHeaders(t *testing.T) {
	router := newTestRouter(t, true)

	req := httptest.NewRequest("POST", "/api/v1/check-media", jsonBody(`{"media_url": "https://example.com/img.png", "media_type": "image"}`))
	req.Header.Set(quota.IdentityHeader, "user-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestSetupRoutes_CORS(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest("OPTIONS", "/api/v1/check-media", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "chrome-extension://abcdef", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestSetupRoutes_RecoveryMiddleware(t *testing.T) {
	guard := quota.NewMemoryGuard(25, time.Minute)
	t.Cleanup(guard.Close)

	// A classifier that panics exercises the recovery path
	handlers := NewHandlers(panicClassifier{}, guard, WithMediaCheckEnabled(true))
	router := SetupRoutes(handlers, models.NewDefaultConfig(), nil)

	req := httptest.NewRequest("POST", "/api/v1/check-media", jsonBody(`{"media_url": "https://example.com/img.png", "media_type": "image"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.ErrorCodeInternalError, resp.Code)
}
