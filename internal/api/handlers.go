package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"truthlens/internal/mediacheck"
	"truthlens/internal/models"
	"truthlens/internal/quota"
	"truthlens/internal/storage"
	"truthlens/internal/version"
)

// defaultHistoryLimit is how many records the history endpoint returns
// when the client does not ask for a specific count.
const defaultHistoryLimit = 20

// Handlers contains HTTP handlers for the gateway API
type Handlers struct {
	classifier mediacheck.Classifier
	guard      quota.Guard

	history    storage.Storage
	cacheTTL   time.Duration
	mediaCheck bool // whether a classifier credential is configured
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handlers)

// WithHistory attaches a classification history store. Fresh records
// within ttl are served as cached results without an upstream call.
func WithHistory(store storage.Storage, ttl time.Duration) HandlerOption {
	return func(h *Handlers) {
		h.history = store
		h.cacheTTL = ttl
	}
}

// WithMediaCheckEnabled controls whether the check-media feature is
// advertised and served. It is false when no classifier credential is
// configured; requests then receive a feature-unavailable response
// without any upstream attempt.
func WithMediaCheckEnabled(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.mediaCheck = enabled
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(classifier mediacheck.Classifier, guard quota.Guard, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		classifier: classifier,
		guard:      guard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// features reports what this deployment currently offers.
func (h *Handlers) features() models.FeatureFlags {
	return models.FeatureFlags{
		MediaCheck: h.mediaCheck,
		Usage:      h.guard != nil,
		History:    h.history != nil,
	}
}

// Status handles the root endpoint
// GET /
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.StatusResponse{
		Message:  "TruthLens API is running",
		Version:  version.GetInfo().Version,
		Features: h.features(),
	})
}

// CheckMedia handles media classification requests
// POST /api/v1/check-media
func (h *Handlers) CheckMedia(w http.ResponseWriter, r *http.Request) {
	if !h.mediaCheck {
		h.writeErrorResponse(w, http.StatusServiceUnavailable, models.ErrorCodeFeatureDisabled,
			"AI media detection is not available on this deployment")
		return
	}

	var req models.MediaCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, models.ErrorCodeValidation, err.Error())
		return
	}
	req.Normalize()

	if cached := h.cachedResult(r, &req); cached != nil {
		h.writeJSONResponse(w, http.StatusOK, cached)
		return
	}

	result, err := h.classifier.Classify(r.Context(), req.MediaURL, req.MediaType)
	if err != nil {
		h.writeBridgeError(w, r, err)
		return
	}

	h.saveResult(r, &req, result)
	h.writeJSONResponse(w, http.StatusOK, result)
}

// cachedResult returns a fresh stored result for the asset, or nil.
func (h *Handlers) cachedResult(r *http.Request, req *models.MediaCheckRequest) *models.MediaCheckResponse {
	if h.history == nil || h.cacheTTL <= 0 {
		return nil
	}

	record, err := h.history.LatestForAsset(r.Context(), req.MediaURL)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("History lookup failed", "error", err)
		}
		return nil
	}
	if !record.FreshAt(time.Now().UTC(), h.cacheTTL) {
		return nil
	}

	return &models.MediaCheckResponse{
		AIGenerated: record.AIGenerated,
		Confidence:  record.Confidence,
		MediaType:   record.MediaType,
		Message:     record.Message,
		Cached:      true,
	}
}

// saveResult records a completed classification, best-effort.
func (h *Handlers) saveResult(r *http.Request, req *models.MediaCheckRequest, result *models.MediaCheckResponse) {
	if h.history == nil {
		return
	}

	record := models.NewCheckRecord(req.MediaURL, req.MediaType,
		result.AIGenerated, result.Confidence, result.Message)
	if err := h.history.SaveCheck(r.Context(), record); err != nil {
		slog.Warn("Failed to save check record", "error", err)
	}
}

// writeBridgeError maps a classification failure to a stable, user-safe
// response. No classification error is ever fatal; each call is isolated.
func (h *Handlers) writeBridgeError(w http.ResponseWriter, r *http.Request, err error) {
	var bridgeErr *mediacheck.BridgeError
	if errors.As(err, &bridgeErr) {
		slog.Warn("Media classification failed",
			"code", bridgeErr.Code,
			"error", bridgeErr.Error(),
			"path", r.URL.Path,
		)
		h.writeErrorResponse(w, bridgeErr.StatusCode, bridgeErr.ResponseCode(), bridgeErr.Message)
		return
	}

	slog.Error("Unexpected classification error", "error", err)
	h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError,
		"media classification failed")
}

// Usage handles usage statistics requests. Reading usage never consumes
// a quota unit.
// GET /api/v1/usage
func (h *Handlers) Usage(w http.ResponseWriter, r *http.Request) {
	if h.guard == nil {
		h.writeErrorResponse(w, http.StatusServiceUnavailable, models.ErrorCodeFeatureDisabled,
			"usage tracking is not enabled on this deployment")
		return
	}

	identity := quota.ResolveIdentity(r)
	stats := h.guard.Stats(identity)

	h.writeJSONResponse(w, http.StatusOK, models.UsageResponse{
		Status:         "success",
		Tier:           "free",
		DailyLimit:     stats.Limit,
		UsedToday:      stats.Used,
		RemainingToday: stats.Remaining,
		ResetTime:      stats.ResetAt,
		Features:       h.features(),
	})
}

// History handles recent-check listing requests
// GET /api/v1/history
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeErrorResponse(w, http.StatusServiceUnavailable, models.ErrorCodeFeatureDisabled,
			"check history is not enabled on this deployment")
		return
	}

	limit := defaultHistoryLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	checks, err := h.history.RecentChecks(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list check history", "error", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError,
			"failed to list check history")
		return
	}

	records := make([]models.CheckRecord, 0, len(checks))
	for _, check := range checks {
		records = append(records, *check)
	}

	h.writeJSONResponse(w, http.StatusOK, models.HistoryResponse{
		Checks:     records,
		TotalCount: len(records),
	})
}

// HealthCheck handles health check requests
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = version.GetInfo().Version

	if h.mediaCheck {
		response.AddComponent("classifier", models.StatusHealthy, "Media classification configured")
	} else {
		response.AddComponent("classifier", models.StatusDegraded, "No classifier credential configured")
	}

	if h.history != nil {
		if err := h.history.Ping(r.Context()); err != nil {
			response.Status = models.StatusDegraded
			response.AddComponent("history", models.StatusUnhealthy, err.Error())
		} else {
			response.AddComponent("history", models.StatusHealthy, "History storage operational")
		}
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; log and move on
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResp := models.NewErrorResponse(message, errorCode)
	h.writeJSONResponse(w, statusCode, errorResp)
}
