package mediacheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"truthlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) models.ClassifierConfig {
	return models.ClassifierConfig{
		Endpoint:   endpoint,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		MaxWorkers: 4,
	}
}

// hiveResponse builds an upstream success body carrying the given score
// for the ai_generated class.
func hiveResponse(score float64) string {
	return fmt.Sprintf(`{
		"status": [{
			"response": {
				"output": [{
					"classes": [
						{"class": "not_ai_generated", "score": %f},
						{"class": "ai_generated", "score": %f}
					]
				}]
			}
		}]
	}`, 1-score, score)
}

func TestService_Classify_NotConfigured(t *testing.T) {
	cfg := testConfig("http://example.invalid")
	cfg.APIKey = ""
	svc := NewService(cfg)
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	assert.Nil(t, result)

	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, ErrorCodeNotConfigured, bridgeErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, bridgeErr.StatusCode)
}

func TestService_Classify_HighConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			URL     string   `json:"url"`
			Classes []string `json:"classes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://example.com/img.png", payload.URL)
		assert.Equal(t, []string{"ai_generated"}, payload.Classes)

		fmt.Fprint(w, hiveResponse(0.93))
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	require.NoError(t, err)
	assert.True(t, result.AIGenerated)
	assert.InDelta(t, 0.93, result.Confidence, 0.0001)
	assert.Equal(t, "image", result.MediaType)
	assert.Equal(t, "Likely AI-generated", result.Message)
}

func TestService_Classify_VerdictThresholds(t *testing.T) {
	tests := []struct {
		score       float64
		aiGenerated bool
		message     string
	}{
		{0.93, true, "Likely AI-generated"},
		{0.65, true, "Possibly AI-generated"},
		{0.35, false, "Uncertain"},
		{0.05, false, "Likely authentic"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, hiveResponse(tt.score))
			}))
			defer server.Close()

			svc := NewService(testConfig(server.URL))
			defer svc.Close()

			result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
			require.NoError(t, err)
			assert.Equal(t, tt.aiGenerated, result.AIGenerated)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestService_Classify_MissingClassDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": [{"response": {"output": [{"classes": [{"class": "something_else", "score": 0.9}]}]}}]}`)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	require.NoError(t, err)
	assert.False(t, result.AIGenerated)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "Likely authentic", result.Message)
}

func TestService_Classify_MalformedBodyDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	require.NoError(t, err)
	assert.False(t, result.AIGenerated)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestService_Classify_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "invalid token"}`)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	assert.Nil(t, result)

	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, ErrorCodeAuthFailed, bridgeErr.Code)
	assert.Equal(t, http.StatusBadGateway, bridgeErr.StatusCode)
	assert.NotContains(t, bridgeErr.Message, "test-key")
}

func TestService_Classify_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "model overloaded"}`)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	assert.Nil(t, result)

	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, ErrorCodeRemote, bridgeErr.Code)
	assert.Contains(t, bridgeErr.Message, "500")
}

func TestService_Classify_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, hiveResponse(0.5))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 100 * time.Millisecond
	svc := NewService(cfg)
	defer svc.Close()

	start := time.Now()
	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	elapsed := time.Since(start)

	assert.Nil(t, result)
	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, ErrorCodeUnavailable, bridgeErr.Code)
	assert.Less(t, elapsed, time.Second, "caller must not wait past the configured timeout")
}

func TestService_Classify_ConnectionRefused(t *testing.T) {
	// A closed server makes the dial fail immediately
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := NewService(testConfig(server.URL))
	defer svc.Close()

	result, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
	assert.Nil(t, result)

	var bridgeErr *BridgeError
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, ErrorCodeUnavailable, bridgeErr.Code)
}

func TestService_Classify_ConcurrentCalls(t *testing.T) {
	var inFlight atomic.Int32
	var peak atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, hiveResponse(0.1))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxWorkers = 3
	svc := NewService(cfg)
	defer svc.Close()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := svc.Classify(context.Background(), "https://example.com/img.png", "image")
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-done)
	}

	assert.LessOrEqual(t, peak.Load(), int32(3), "outbound concurrency must not exceed the worker count")
}

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"valid score", hiveResponse(0.72), 0.72},
		{"empty status list", `{"status": []}`, 0.0},
		{"empty output list", `{"status": [{"response": {"output": []}}]}`, 0.0},
		{"empty body", ``, 0.0},
		{"wrong types", `{"status": "oops"}`, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, extractConfidence([]byte(tt.body)), 0.0001)
		})
	}
}

func TestExcerptOf_Truncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, excerptOf(long), maxExcerptLen)
	assert.Equal(t, "short", excerptOf([]byte("short")))
}
