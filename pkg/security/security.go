// Package security provides validation, sanitization, and limits for dispatchq.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forgeworks/dispatchq/pkg/core"
)

// Limits enforced at the submission and storage boundaries.
const (
	// MaxFunctionRefLength is the maximum length for function refs.
	MaxFunctionRefLength = 255

	// MaxArgsSize is the maximum size in bytes for marshaled job arguments (1MB).
	MaxArgsSize = 1 << 20

	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 4096

	// MaxConcurrency is the hard limit for a worker's executor count.
	MaxConcurrency = 1000
)

// validFunctionRef matches alphanumeric, hyphens, underscores, and dots.
var validFunctionRef = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// ValidateFunctionRef validates a function ref identifier.
func ValidateFunctionRef(name string) error {
	if name == "" {
		return core.ErrInvalidFunctionRef
	}
	if len(name) > MaxFunctionRefLength {
		return core.ErrFunctionRefTooLong
	}
	if !validFunctionRef.MatchString(name) {
		return core.ErrInvalidFunctionRef
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages before storage.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// Strip null bytes and control characters (except whitespace).
	var sanitized strings.Builder
	sanitized.Grow(len(msg))
	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	out := sanitized.String()
	if len(out) > MaxErrorMessageLength {
		out = out[:MaxErrorMessageLength]
		// Don't cut a rune in half.
		for !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
	}
	return out
}

// ClampConcurrency ensures an executor count is within [1, MaxConcurrency].
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
