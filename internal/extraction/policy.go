package extraction

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/schemas"
)

// DefaultMaxAttempts is one call plus two retries.
const DefaultMaxAttempts = 3

// RetryPolicy decides how many attempts an extraction gets and which
// failures earn another one.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff is multiplied by the retry number before each retry.
	Backoff   time.Duration
	Retryable func(error) bool
}

// DefaultRetryPolicy retries malformed output and per-attempt timeouts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Retryable:   IsRetryable,
	}
}

// IsRetryable reports whether a failed attempt is worth repeating: the
// output did not validate, the model returned nothing, or the attempt timed
// out. Unavailable models and anything else are final.
func IsRetryable(err error) bool {
	if err == nil || llm.IsUnavailable(err) {
		return false
	}

	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, llm.ErrEmptyResponse)
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return IsRetryable(err)
	}
	return p.Retryable(err)
}

func (p RetryPolicy) delay(retry int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	return time.Duration(retry) * p.Backoff
}
