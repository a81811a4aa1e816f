package client

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultAttemptTimeout bounds an attempt that does not set its own timeout.
const DefaultAttemptTimeout = 30 * time.Second

// ErrAttemptUnavailable lets an attempt step aside without counting as a failure
// worth reporting, e.g. an environment variable that is not set.
var ErrAttemptUnavailable = errors.New("attempt not available")

// Attempt is one way of obtaining a Google ID token.
type Attempt struct {
	Name    string
	Timeout time.Duration
	Obtain  func(ctx context.Context) (string, error)
}

// ObtainIDToken runs attempts in order and returns the first token obtained.
// Each attempt runs under its own timeout; cancelling ctx stops the chain.
func ObtainIDToken(ctx context.Context, attempts ...Attempt) (string, error) {
	var errs []error
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := runAttempt(ctx, a)
		if err == nil {
			return token, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !errors.Is(err, ErrAttemptUnavailable) {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
		}
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("no sign-in method available: %w", ErrAttemptUnavailable)
	}
	return "", fmt.Errorf("all sign-in attempts failed: %w", errors.Join(errs...))
}

func runAttempt(ctx context.Context, a Attempt) (string, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		token string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		token, err := a.Obtain(actx)
		done <- result{token: token, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.token == "" {
			r.err = errors.New("empty token")
		}
		return r.token, r.err
	case <-actx.Done():
		return "", actx.Err()
	}
}
