package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxSourceLength bounds source strings accepted from flags, config and
// HTTP query parameters.
const maxSourceLength = 2048

// ValidateSource validates a tree source: an http(s) URL or a local path.
//
// Validation rules:
//   - Source cannot be empty
//   - No null bytes or control characters
//   - URLs must use the http or https scheme and carry a host
func ValidateSource(source string) error {
	if source == "" {
		return New(ErrCodeInvalidSource, "source cannot be empty")
	}
	if len(source) > maxSourceLength {
		return New(ErrCodeInvalidSource, "source too long (max %d characters)", maxSourceLength)
	}
	for _, r := range source {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source contains invalid control characters")
		}
	}
	if !strings.Contains(source, "://") {
		return nil
	}
	return ValidateURL(source)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidSource, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidSource, "URL must use http or https scheme")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidSource, err, "parse URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidSource, "URL has no host: %q", rawURL)
	}
	return nil
}

// ValidateResourcePath validates the relative resource path resolved against
// a base URL (e.g. "locality.json").
//
// The path must be relative, must not traverse upwards and must not contain
// backslashes or control characters.
func ValidateResourcePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidSource, "resource path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "resource path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidSource, "resource path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidSource, "resource path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidSource, "resource path cannot contain backslashes")
	}
	return nil
}
