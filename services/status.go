package services

import "sync/atomic"

// Status holds the process-wide read-only flag (the kill-switch). It is
// injected into every store rather than read from ambient globals so tests
// can run in parallel without cross-contamination. Toggling takes effect for
// the next operation that checks it; operations already past the check run
// to completion.
type Status struct {
	readOnly atomic.Bool
}

func NewStatus(readOnly bool) *Status {
	s := &Status{}
	s.readOnly.Store(readOnly)
	return s
}

func (s *Status) ReadOnly() bool {
	return s.readOnly.Load()
}

func (s *Status) SetReadOnly(v bool) {
	s.readOnly.Store(v)
}
