package weather

import "errors"

// ErrRateLimited is returned when the governor rejects an operation. No
// network call has been made when this error is seen.
var ErrRateLimited = errors.New("rate limit exceeded, wait before making more requests")

// ValidationError reports unusable operation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
