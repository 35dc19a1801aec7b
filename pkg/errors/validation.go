package errors

import (
	"strings"
	"unicode"
)

// ValidateDiagramID validates a stored diagram identifier.
// It rejects ids that could be used for path traversal or injection when a
// backend maps ids onto files or keys.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 64 characters
func ValidateDiagramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "diagram id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "diagram id too long (max 64 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "diagram id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "diagram id contains invalid characters")
	}

	return nil
}

// ValidateDiagramTitle validates a user-supplied diagram title.
// An empty title is allowed; callers substitute a default.
func ValidateDiagramTitle(title string) error {
	const maxTitleLength = 200
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "diagram title too long (max %d characters)", maxTitleLength)
	}

	for _, r := range title {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "diagram title contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
