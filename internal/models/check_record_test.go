package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckRecord(t *testing.T) {
	record := NewCheckRecord("https://example.com/img.png", MediaTypeImage, true, 0.93, "Likely AI-generated")

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "https://example.com/img.png", record.MediaURL)
	assert.Equal(t, MediaTypeImage, record.MediaType)
	assert.True(t, record.AIGenerated)
	assert.InDelta(t, 0.93, record.Confidence, 0.0001)
	assert.False(t, record.CheckedAt.IsZero())

	other := NewCheckRecord("https://example.com/img.png", MediaTypeImage, true, 0.93, "Likely AI-generated")
	assert.NotEqual(t, record.ID, other.ID)
}

func TestCheckRecord_FreshAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	record := &CheckRecord{CheckedAt: now.Add(-30 * time.Minute)}

	assert.True(t, record.FreshAt(now, time.Hour))
	assert.False(t, record.FreshAt(now, 10*time.Minute))
	assert.False(t, record.FreshAt(now, 0), "zero TTL means nothing is fresh")
	assert.False(t, record.FreshAt(now, -time.Hour))
}
