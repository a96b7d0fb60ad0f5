package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckRecord is one stored classification outcome. Records double as a
// best-effort result cache: a sufficiently fresh record for the same
// media URL can be served without a new upstream call.
type CheckRecord struct {
	ID          string    `json:"id"`
	MediaURL    string    `json:"media_url"`
	MediaType   string    `json:"media_type"`
	AIGenerated bool      `json:"ai_generated"`
	Confidence  float64   `json:"confidence"`
	Message     string    `json:"message"`
	CheckedAt   time.Time `json:"checked_at"`
}

// NewCheckRecord builds a record for a completed classification.
func NewCheckRecord(mediaURL, mediaType string, aiGenerated bool, confidence float64, message string) *CheckRecord {
	return &CheckRecord{
		ID:          uuid.New().String(),
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		AIGenerated: aiGenerated,
		Confidence:  confidence,
		Message:     message,
		CheckedAt:   time.Now().UTC(),
	}
}

// FreshAt reports whether the record is still usable as a cached result
// at the given instant, for the given TTL.
func (r *CheckRecord) FreshAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(r.CheckedAt) < ttl
}
