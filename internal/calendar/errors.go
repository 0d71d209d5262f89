package calendar

import (
	"errors"
	"fmt"
)

// ===============================
// Provider Error Classification
// ===============================

type Kind int

const (
	// KindTransient: network failures, 429 and 5xx. Retryable.
	KindTransient Kind = iota
	// KindAuth: the credential is no longer usable (401/403, failed
	// refresh). Triggers the local-only fallback.
	KindAuth
	// KindPermanent: other 4xx. Not retried, surfaced to the operator.
	KindPermanent
)

type Error struct {
	Op     string
	Status int
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("calendar %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

func IsTransient(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransient
}

func IsAuth(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAuth
}

func IsPermanent(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindPermanent
}
