package market

import (
	"errors"
	"fmt"
)

// ErrAuth marks an invalid or expired credential. No further real fetch can
// succeed, so callers abort the whole batch on it.
var ErrAuth = errors.New("market: authentication failed")

// ErrNoListings marks an empty result set from a real source. Callers degrade
// to the simulated fallback.
var ErrNoListings = errors.New("market: no listings found")

// TransientError wraps a retryable transport or source failure. After the
// retry budget is exhausted the item degrades to the simulated fallback.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("market: transient source error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
