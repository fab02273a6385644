package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("response parse error")
	ErrAIExhausted = errors.New("all models exhausted")
	ErrTransient   = errors.New("transient failure")
)

// RateLimitKind distinguishes the two quota dimensions enforced per model.
type RateLimitKind string

const (
	RateLimitRPM RateLimitKind = "rpm"
	RateLimitRPD RateLimitKind = "rpd"
)

// RateLimitError reports a denied admission for a specific model and quota
// dimension. Callers branch on Kind: an RPM denial is recoverable by moving to
// the next model, an RPD denial halts all further spend.
type RateLimitError struct {
	Kind  RateLimitKind
	Model string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (%s) for model %s", e.Kind, e.Model)
}

// NewRateLimitError builds a RateLimitError for the given quota dimension.
func NewRateLimitError(kind RateLimitKind, model string) *RateLimitError {
	return &RateLimitError{Kind: kind, Model: model}
}

// AsRateLimit unwraps err to a RateLimitError when one is present.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// IsDailyLimit reports whether err carries an RPD denial.
func IsDailyLimit(err error) bool {
	rle, ok := AsRateLimit(err)
	return ok && rle.Kind == RateLimitRPD
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
