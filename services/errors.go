package services

import (
	"errors"
	"fmt"
	"strings"

	"patchbay/models"
)

// ErrReadOnly is returned by every mutating store operation while the
// kill-switch is active. It is expected operational behavior: a human
// toggles the switch, so callers must not retry automatically.
var ErrReadOnly = errors.New("read-only mode active: mutations are disabled")

// ValidationError reports malformed input, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a session state change that is not present
// in the transition table. The session is left unmodified.
type InvalidTransitionError struct {
	From models.SessionState
	To   models.SessionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid session state transition from %q to %q", e.From, e.To)
}

// PathViolation is one rejected path with the reason it was rejected.
type PathViolation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// PathPolicyError aggregates every path violation found in a batch, so a
// caller sees all of them in one error rather than just the first.
type PathPolicyError struct {
	Violations []PathViolation
}

func (e *PathPolicyError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Path, v.Reason))
	}
	return fmt.Sprintf("path policy rejected %d path(s): %s",
		len(e.Violations), strings.Join(parts, "; "))
}
