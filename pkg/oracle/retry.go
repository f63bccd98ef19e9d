package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// buildRetryPolicy implements spec.md §4.5's backoff contract: base delay
// retryDelay, factor 2, jitter ±20%, up to maxAttempts. Non-retryable
// failures (Oracle.Protocol, or a cancelled context) abort immediately
// instead of being retried.
func buildRetryPolicy[R any](maxAttempts int, retryDelay time.Duration) failsafe.Policy[R] {
	return retrypolicy.Builder[R]().
		HandleIf(func(_ R, err error) bool {
			if err == nil {
				return false
			}
			var se *subxerr.Error
			if errors.As(err, &se) && se.Kind == subxerr.KindOracleProtocol {
				return false
			}
			return !errors.Is(err, context.Canceled)
		}).
		AbortIf(func(_ R, err error) bool {
			if err == nil {
				return false
			}
			var se *subxerr.Error
			return errors.As(err, &se) && se.Kind == subxerr.KindOracleProtocol
		}).
		AbortOnErrors(context.Canceled).
		WithMaxAttempts(maxAttempts).
		ReturnLastFailure().
		WithBackoffFactor(retryDelay, 5*retryDelay, 2.0).
		WithJitterFactor(0.2).
		Build()
}
