package utils

import (
	"net/url"
	"strings"
)

// MaskSecret masks an API key or token for display.
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// ValidateURL validates that a URL has an http(s) scheme and a host.
func ValidateURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// TrimBaseURL strips a trailing slash so base URLs compare consistently.
func TrimBaseURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}
