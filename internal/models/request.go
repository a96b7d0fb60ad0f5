// Package models - API request types and input validation.
// This file defines all incoming API request structures with validation.
//
// Validation Philosophy:
// - Fail fast with clear error messages for invalid input
// - Normalize input data for consistent processing (lowercase media types)
// - Validate structural rules before any quota unit is spent on a request
package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Media type constants accepted by the check-media endpoint.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaCheckRequest asks the gateway to classify a media asset as
// AI-generated or authentic.
type MediaCheckRequest struct {
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

// Validate checks the request for structural problems.
func (r *MediaCheckRequest) Validate() error {
	if r.MediaURL == "" {
		return errors.New("media_url is required")
	}

	u, err := url.Parse(r.MediaURL)
	if err != nil {
		return fmt.Errorf("media_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("media_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("media_url must include a host")
	}

	switch strings.ToLower(r.MediaType) {
	case MediaTypeImage, MediaTypeVideo:
	case "":
		return errors.New("media_type is required")
	default:
		return fmt.Errorf("media_type must be %q or %q, got %q", MediaTypeImage, MediaTypeVideo, r.MediaType)
	}

	return nil
}

// Normalize lowercases the media type so downstream code can compare it
// directly.
func (r *MediaCheckRequest) Normalize() {
	r.MediaType = strings.ToLower(r.MediaType)
}
