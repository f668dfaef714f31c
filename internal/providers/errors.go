package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSport is returned when a sport id has no upstream mapping.
var ErrUnknownSport = errors.New("unknown sport")

// RateLimitError captures rate limit responses from the upstream API.
type RateLimitError struct {
	Sport      string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}
