// Package mediacheck bridges the gateway to a remote media-analysis
// service that scores whether an asset is AI-generated. The remote call
// is slow and failure-prone; this package executes it on a bounded worker
// pool with a mandatory per-call timeout, and normalizes the
// heterogeneous upstream outcomes into a stable result shape and a small
// typed error taxonomy.
package mediacheck

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"truthlens/internal/models"
)

// classAIGenerated is the single classification category this gateway
// requests from the upstream model.
const classAIGenerated = "ai_generated"

// maxResponseBytes bounds how much of the upstream body is read.
const maxResponseBytes = 1 << 20

// Classifier is the classification contract consumed by the API layer.
type Classifier interface {
	// Classify scores the asset at mediaURL. It returns a normalized
	// result or a *BridgeError; it never retries and has no side effects
	// beyond the outbound call itself.
	Classify(ctx context.Context, mediaURL, mediaType string) (*models.MediaCheckResponse, error)
}

// Service implements Classifier against an HTTP endpoint.
type Service struct {
	cfg    models.ClassifierConfig
	client *http.Client
	pool   *pool
}

var _ Classifier = (*Service)(nil)

// NewService creates a classification service with cfg.MaxWorkers
// outbound workers. The per-call timeout comes from cfg.Timeout.
func NewService(cfg models.ClassifierConfig) *Service {
	return &Service{
		cfg: cfg,
		// The context deadline set in Classify governs each call; the
		// client itself carries no timeout so it never fires first.
		client: &http.Client{},
		pool:   newPool(cfg.MaxWorkers),
	}
}

// Close stops the worker pool.
func (s *Service) Close() {
	s.pool.close()
}

// Classify dispatches one classification call through the worker pool and
// waits for the outcome, at most cfg.Timeout. The calling goroutine only
// blocks on a channel select, so the server keeps handling other requests
// while the upstream call is outstanding. On timeout the caller abandons
// the call; the in-flight HTTP request is cancelled best-effort through
// the shared context.
func (s *Service) Classify(ctx context.Context, mediaURL, mediaType string) (*models.MediaCheckResponse, error) {
	if s.cfg.APIKey == "" {
		return nil, NewNotConfiguredError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	type outcome struct {
		resp *models.MediaCheckResponse
		err  error
	}

	// Buffered so the worker never blocks if the caller has given up.
	results := make(chan outcome, 1)

	submitted := s.pool.submit(ctx, func() {
		resp, err := s.call(ctx, mediaURL, mediaType)
		results <- outcome{resp: resp, err: err}
	})
	if !submitted {
		return nil, NewUnavailableError(ctx.Err())
	}

	select {
	case o := <-results:
		return o.resp, o.err
	case <-ctx.Done():
		return nil, NewUnavailableError(ctx.Err())
	}
}

// classifyPayload is the upstream request body.
type classifyPayload struct {
	URL     string   `json:"url"`
	Classes []string `json:"classes"`
}

// classifyResult mirrors the parts of the upstream success body this
// gateway cares about: a status list whose entries nest a list of
// class/score pairs.
type classifyResult struct {
	Status []struct {
		Response struct {
			Output []struct {
				Classes []struct {
					Class string  `json:"class"`
					Score float64 `json:"score"`
				} `json:"classes"`
			} `json:"output"`
		} `json:"response"`
	} `json:"status"`
}

// call performs the outbound HTTP request and normalizes the outcome.
// Runs on a pool worker.
func (s *Service) call(ctx context.Context, mediaURL, mediaType string) (*models.MediaCheckResponse, error) {
	payload, err := json.Marshal(classifyPayload{
		URL:     mediaURL,
		Classes: []string{classAIGenerated},
	})
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	req.Header.Set("Authorization", "token "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	slog.Debug("Classifier call completed",
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"media_type", mediaType,
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewAuthError(excerptOf(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, NewRemoteError(resp.StatusCode, excerptOf(body))
	}

	confidence := extractConfidence(body)
	aiGenerated := confidence > 0.5

	return &models.MediaCheckResponse{
		AIGenerated: aiGenerated,
		Confidence:  confidence,
		MediaType:   mediaType,
		Message:     summarize(aiGenerated, confidence),
	}, nil
}

// extractConfidence pulls the ai_generated score out of a success body.
// The upstream contract is best-effort-structured: a missing or malformed
// shape degrades to zero confidence instead of failing the call.
func extractConfidence(body []byte) float64 {
	var result classifyResult
	if err := json.Unmarshal(body, &result); err != nil {
		return 0.0
	}

	if len(result.Status) == 0 || len(result.Status[0].Response.Output) == 0 {
		return 0.0
	}

	for _, cls := range result.Status[0].Response.Output[0].Classes {
		if cls.Class == classAIGenerated {
			return cls.Score
		}
	}
	return 0.0
}

// summarize derives the human-readable verdict using fixed thresholds.
func summarize(aiGenerated bool, confidence float64) string {
	if aiGenerated {
		if confidence > 0.8 {
			return "Likely AI-generated"
		}
		return "Possibly AI-generated"
	}
	if confidence < 0.2 {
		return "Likely authentic"
	}
	return "Uncertain"
}
