package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Default retry policy, matching the reference collection behaviour.
const (
	DefaultMaxAttempts = 5
	DefaultWait        = 10 * time.Second
	DefaultShortWait   = 2 * time.Second
)

// RetryConfig controls the retry policy for a single upstream request.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts before giving up.
	MaxAttempts int
	// Wait is the delay inserted after rate limits, server errors and
	// transport failures.
	Wait time.Duration
	// ShortWait is the delay inserted after any other non-2xx status.
	// Such a response still consumes an attempt.
	ShortWait time.Duration
}

// SleepFunc waits for the given duration or until the context is cancelled.
// Tests inject a recording implementation to run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client *http.Client
	Retry  RetryConfig
	Sleep  SleepFunc
}

var (
	// ErrNoData signals that all attempts for a source were exhausted.
	// Callers treat it as "no data for this source", not as a crash.
	ErrNoData = errors.New("no data from upstream")

	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
	errInvalidRetry = errors.New("invalid retry configuration")
)

// sleepWithContext is the default SleepFunc.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchJSON executes the request with bounded retries, fixed backoff and a
// circuit breaker, and decodes a 2xx JSON body into out.
//
// Status handling per attempt:
//   - 429 and >=500 wait Retry.Wait and retry (transient).
//   - any other non-2xx waits Retry.ShortWait and retries.
//   - transport errors wait Retry.Wait and retry.
//
// Exhausted attempts surface as ErrNoData, never as a panic or crash.
func fetchJSON(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
	out any,
) error {
	if cfg.Client == nil {
		return errNoHTTPClient
	}
	if cfg.Retry.MaxAttempts <= 0 || cfg.Retry.Wait <= 0 {
		return errInvalidRetry
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.Retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return fmt.Errorf("unexpected result type from circuit breaker")
			}

			decodeErr := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if decodeErr == nil {
				return nil
			}
			// A malformed body counts as a failed attempt, same as a
			// transport error.
			err = fmt.Errorf("decode response: %w", decodeErr)
		}

		// An open circuit means the upstream is persistently failing;
		// report absence of data right away instead of burning attempts.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit breaker open: %v", ErrNoData, err)
		}

		lastErr = err

		wait := cfg.Retry.Wait
		if errors.Is(err, errUnexpected) {
			wait = cfg.Retry.ShortWait
		}
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}

	return fmt.Errorf("%w: %v", ErrNoData, lastErr)
}
