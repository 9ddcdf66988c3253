package security

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation limits for recommendation requests.
const (
	// Query limits.
	MinQueryLength = 1
	MaxQueryLength = 500

	// Result limits.
	MinTopK = 1
	MaxTopK = 50

	// Session ID limits.
	MaxSessionIDLength = 128
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s: %s (got: %v)", e.Field, e.Constraint, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Constraint)
}

// sessionIDRegex matches valid session IDs: alphanumeric, hyphen, underscore.
var sessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidateQuery validates a recommendation query string.
// Requirements: Required, 1-500 chars, valid UTF-8.
func ValidateQuery(query string) error {
	if query == "" {
		return &ValidationError{
			Field:      "query",
			Constraint: "required",
		}
	}

	if !utf8.ValidString(query) {
		return &ValidationError{
			Field:      "query",
			Constraint: "must be valid UTF-8",
		}
	}

	length := utf8.RuneCountInString(query)
	if length > MaxQueryLength {
		return &ValidationError{
			Field:      "query",
			Value:      length,
			Constraint: fmt.Sprintf("maximum length is %d characters", MaxQueryLength),
		}
	}

	return nil
}

// ValidateTopK validates a result count. Zero is allowed and means the
// server default.
func ValidateTopK(topK int) error {
	if topK == 0 {
		return nil
	}

	if topK < MinTopK || topK > MaxTopK {
		return &ValidationError{
			Field:      "top_k",
			Value:      topK,
			Constraint: fmt.Sprintf("must be between %d and %d", MinTopK, MaxTopK),
		}
	}

	return nil
}

// ValidateSessionID validates a client-supplied session identifier.
// Empty is allowed and disables session tracking.
func ValidateSessionID(id string) error {
	if id == "" {
		return nil
	}

	if len(id) > MaxSessionIDLength {
		return &ValidationError{
			Field:      "session_id",
			Value:      len(id),
			Constraint: fmt.Sprintf("maximum length is %d characters", MaxSessionIDLength),
		}
	}

	if !sessionIDRegex.MatchString(id) {
		return &ValidationError{
			Field:      "session_id",
			Constraint: "must be alphanumeric with hyphens or underscores",
		}
	}

	return nil
}
