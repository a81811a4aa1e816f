package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticAttempt(name, token string, err error) Attempt {
	return Attempt{
		Name:   name,
		Obtain: func(context.Context) (string, error) { return token, err },
	}
}

func TestObtainIDToken(t *testing.T) {
	ctx := context.Background()

	t.Run("first success wins", func(t *testing.T) {
		calls := 0
		second := Attempt{Name: "second", Obtain: func(context.Context) (string, error) {
			calls++
			return "second", nil
		}}
		token, err := ObtainIDToken(ctx, staticAttempt("first", "first", nil), second)
		require.NoError(t, err)
		assert.Equal(t, "first", token)
		assert.Zero(t, calls)
	})

	t.Run("falls through failures", func(t *testing.T) {
		token, err := ObtainIDToken(ctx,
			staticAttempt("broken", "", errors.New("boom")),
			staticAttempt("unavailable", "", ErrAttemptUnavailable),
			staticAttempt("ok", "tok", nil),
		)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("joins every failure", func(t *testing.T) {
		first := errors.New("first failed")
		second := errors.New("second failed")
		_, err := ObtainIDToken(ctx,
			staticAttempt("a", "", first),
			staticAttempt("skip", "", ErrAttemptUnavailable),
			staticAttempt("b", "", second),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
		assert.NotContains(t, err.Error(), "skip")
	})

	t.Run("nothing available", func(t *testing.T) {
		_, err := ObtainIDToken(ctx, staticAttempt("skip", "", ErrAttemptUnavailable))
		assert.ErrorIs(t, err, ErrAttemptUnavailable)
	})

	t.Run("empty token is a failure", func(t *testing.T) {
		_, err := ObtainIDToken(ctx, staticAttempt("empty", "", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty token")
	})

	t.Run("timeout moves on", func(t *testing.T) {
		hang := Attempt{
			Name:    "hang",
			Timeout: 20 * time.Millisecond,
			Obtain: func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		}
		token, err := ObtainIDToken(ctx, hang, staticAttempt("ok", "tok", nil))
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("timeout does not wait for a stuck attempt", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		stuck := Attempt{
			Name:    "stuck",
			Timeout: 20 * time.Millisecond,
			Obtain: func(context.Context) (string, error) {
				<-release
				return "late", nil
			},
		}
		_, err := ObtainIDToken(ctx, stuck)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancellation stops the chain", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		later := 0
		first := Attempt{Name: "first", Obtain: func(context.Context) (string, error) {
			cancel()
			return "", errors.New("gave up")
		}}
		second := Attempt{Name: "second", Obtain: func(context.Context) (string, error) {
			later++
			return "tok", nil
		}}
		_, err := ObtainIDToken(cctx, first, second)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, later)
	})
}

func TestEnvAndFileAttempts(t *testing.T) {
	t.Setenv("TEST_GOOGLE_ID_TOKEN", "")
	_, err := EnvAttempt("TEST_GOOGLE_ID_TOKEN").Obtain(context.Background())
	assert.ErrorIs(t, err, ErrAttemptUnavailable)

	t.Setenv("TEST_GOOGLE_ID_TOKEN", " tok \n")
	token, err := EnvAttempt("TEST_GOOGLE_ID_TOKEN").Obtain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = FileAttempt(t.TempDir() + "/missing").Obtain(context.Background())
	assert.ErrorIs(t, err, ErrAttemptUnavailable)

	_, err = BrowserAttempt(BrowserConfig{}).Obtain(context.Background())
	assert.ErrorIs(t, err, ErrAttemptUnavailable)
}
