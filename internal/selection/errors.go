package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailure: the stored document is unreadable. Nothing is written.
	ErrParseFailure = errors.New("selection document unreadable")
	// ErrConflict: every compare-and-swap attempt lost to a concurrent writer.
	ErrConflict = errors.New("selection document write conflict")
	// ErrUnderlyingStore: the backend failed (I/O, network, timeout, open breaker).
	ErrUnderlyingStore = errors.New("selection store failure")

	// ErrVersionMismatch is returned by backends when the expected version is stale
	ErrVersionMismatch = errors.New("version mismatch")
)

// WriteError describes a failed merge
type WriteError struct {
	Kind     error
	Key      string
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("merge %q: %v after %d attempt(s)", e.Key, e.Kind, e.Attempts)
	}
	return fmt.Sprintf("merge %q: %v after %d attempt(s): %v", e.Key, e.Kind, e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches the error kind so errors.Is(err, ErrConflict) works
func (e *WriteError) Is(target error) bool {
	return target == e.Kind
}
