package embedding

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(10)

	// No provider headers seen yet.
	assert.Equal(t, -1, limiter.Remaining())
	assert.True(t, limiter.ResetTime().IsZero())
}

func TestWait_NoQuotaState(t *testing.T) {
	limiter := NewRateLimiter(100)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestUpdateFromResponse(t *testing.T) {
	limiter := NewRateLimiter(10)
	reset := time.Now().Add(time.Hour).Unix()

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
	}
	resp.Header.Set(HeaderRateLimit, "100")
	resp.Header.Set(HeaderRateRemaining, "42")
	resp.Header.Set(HeaderRateReset, intString(reset))
	limiter.UpdateFromResponse(resp)

	assert.Equal(t, 42, limiter.Remaining())
	assert.Equal(t, time.Unix(reset, 0), limiter.ResetTime())
}

func TestCheckResponse(t *testing.T) {
	t.Run("ok response passes", func(t *testing.T) {
		limiter := NewRateLimiter(10)
		err := limiter.CheckResponse(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})
		assert.NoError(t, err)
	})

	t.Run("429 returns rate limit error", func(t *testing.T) {
		limiter := NewRateLimiter(10)
		resp := &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{HeaderRetryAfter: []string{"30"}},
		}

		err := limiter.CheckResponse(resp)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRateLimited)

		var rlErr *RateLimitError
		require.True(t, errors.As(err, &rlErr))
		assert.Greater(t, rlErr.RetryIn(), 20*time.Second)
	})

	t.Run("403 with exhausted quota returns rate limit error", func(t *testing.T) {
		limiter := NewRateLimiter(10)
		resp := &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{},
		}
		resp.Header.Set(HeaderRateRemaining, "0")

		err := limiter.CheckResponse(resp)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("403 with quota left passes", func(t *testing.T) {
		limiter := NewRateLimiter(10)
		resp := &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{},
		}
		resp.Header.Set(HeaderRateRemaining, "50")

		assert.NoError(t, limiter.CheckResponse(resp))
	})
}

func TestWait_HonoursContextDuringQuotaWait(t *testing.T) {
	limiter := NewRateLimiter(100)

	// Exhausted quota with a reset far in the future.
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
	}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, intString(time.Now().Add(time.Hour).Unix()))
	limiter.UpdateFromResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{ResetAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Contains(t, err.Error(), "2025-06-01")

	bare := &RateLimitError{}
	assert.Equal(t, "embedding: rate limit exceeded", bare.Error())
}

func intString(v int64) string {
	return strconv.FormatInt(v, 10)
}
