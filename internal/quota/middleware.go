package quota

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"truthlens/internal/models"
)

// IdentityHeader is the client-supplied identifier header. Browser
// extension clients send a stable anonymous ID in it.
const IdentityHeader = "X-User-ID"

// Middleware returns HTTP middleware that enforces the daily quota on the
// routes it wraps. It always sets X-RateLimit-* headers from the Check
// decision. When the quota is exhausted it answers 429 with a structured
// body and a Retry-After header. Otherwise it serves the request and
// records one consumed unit if the handler succeeded (2xx). Check and
// Increment are two separate calls, so concurrent requests can overshoot
// the limit by the number of requests in flight.
func Middleware(guard Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := ResolveIdentity(r)
			decision := guard.Check(identity)

			// Always set rate limit headers
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))

			if !decision.Allowed {
				retryAfter := decision.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				resp := models.QuotaExceededResponse{
					Error:             "Quota exceeded",
					Message:           fmt.Sprintf("You have reached your daily limit of %d checks. Please try again after the reset time.", decision.Limit),
					Limit:             decision.Limit,
					ResetTime:         decision.ResetAt.UTC().Format(time.RFC3339),
					RetryAfterSeconds: retryAfter,
				}
				json.NewEncoder(w).Encode(resp)

				slog.Warn("Daily quota exceeded",
					"identity", identity,
					"limit", decision.Limit,
					"retry_after", retryAfter,
				)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// A unit is only consumed when the wrapped handler actually
			// served the request; rejected or failed requests stay free.
			if rec.status >= 200 && rec.status < 300 {
				guard.Increment(identity)
			}
		})
	}
}

// ResolveIdentity determines the quota key for a request: the
// client-supplied identifier when present, otherwise a network-address
// fallback prefixed with "ip_" so it can never collide with supplied IDs.
func ResolveIdentity(r *http.Request) string {
	if id := r.Header.Get(IdentityHeader); id != "" {
		return id
	}
	return "ip_" + clientIP(r)
}

// clientIP extracts the client IP from the request, checking proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
