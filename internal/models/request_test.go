package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaCheckRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     MediaCheckRequest
		wantErr string
	}{
		{
			name: "valid image request",
			req:  MediaCheckRequest{MediaURL: "https://example.com/photo.jpg", MediaType: "image"},
		},
		{
			name: "valid video request",
			req:  MediaCheckRequest{MediaURL: "http://cdn.example.com/clip.mp4", MediaType: "video"},
		},
		{
			name: "uppercase media type accepted",
			req:  MediaCheckRequest{MediaURL: "https://example.com/photo.jpg", MediaType: "IMAGE"},
		},
		{
			name:    "missing URL",
			req:     MediaCheckRequest{MediaType: "image"},
			wantErr: "media_url is required",
		},
		{
			name:    "non-http scheme",
			req:     MediaCheckRequest{MediaURL: "ftp://example.com/photo.jpg", MediaType: "image"},
			wantErr: "must use http or https",
		},
		{
			name:    "scheme only",
			req:     MediaCheckRequest{MediaURL: "https://", MediaType: "image"},
			wantErr: "must include a host",
		},
		{
			name:    "missing media type",
			req:     MediaCheckRequest{MediaURL: "https://example.com/photo.jpg"},
			wantErr: "media_type is required",
		},
		{
			name:    "unsupported media type",
			req:     MediaCheckRequest{MediaURL: "https://example.com/track.mp3", MediaType: "audio"},
			wantErr: "media_type must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestMediaCheckRequest_Normalize(t *testing.T) {
	req := MediaCheckRequest{MediaURL: "https://example.com/photo.jpg", MediaType: "IMAGE"}
	req.Normalize()
	assert.Equal(t, MediaTypeImage, req.MediaType)
}
