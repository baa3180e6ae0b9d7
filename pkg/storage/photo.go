package storage

import (
	"net/http"
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// NormalizePhotoPath keeps absolute URLs and rooted paths, roots bare
// relative paths and maps blank input to nil.
func NormalizePhotoPath(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if absoluteURL.MatchString(trimmed) || strings.HasPrefix(trimmed, "/") {
		return &trimmed
	}
	rooted := "/" + trimmed
	return &rooted
}

// AbsolutePhotoURL prefixes rooted paths with baseURL.
func AbsolutePhotoURL(value *string, baseURL string) *string {
	if value == nil {
		return nil
	}
	normalized := NormalizePhotoPath(*value)
	if normalized == nil || absoluteURL.MatchString(*normalized) || baseURL == "" {
		return normalized
	}
	full := strings.TrimSuffix(baseURL, "/") + *normalized
	return &full
}

// PublicBaseURL returns the configured base URL, or one derived from the request.
func PublicBaseURL(configured string, r *http.Request) string {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return strings.TrimSuffix(trimmed, "/")
	}
	if r == nil || r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}
