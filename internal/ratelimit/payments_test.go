package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/internal/config"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	ctx := context.Background()
	limiter := NewPaymentLimiter(config.Config{}, nil)
	require.False(t, limiter.Enabled())

	res, err := limiter.AllowOrg(ctx, "10")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.TryLockWebhook(ctx, "razorpay", "pay_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, limiter.ReleaseWebhook(ctx, "razorpay", "pay_1", token))

	var nilLimiter *PaymentLimiter
	res, err = nilLimiter.AllowOrg(ctx, "10")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 4*time.Second, defaultBucketTTL(20, 40))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

func TestWebhookLockKey(t *testing.T) {
	assert.Equal(t, "whizly:lock:webhook:razorpay:pay_1", webhookLockKey(" Razorpay ", "pay_1 "))
}

func TestNewTokenBucketValidates(t *testing.T) {
	_, err := newTokenBucket(nil, 1, 1)
	assert.Error(t, err)
}

func TestBucketDecision(t *testing.T) {
	b := &tokenBucket{rate: 2, burst: 10}

	d := b.decide(true, 4.6)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
	assert.Equal(t, 10, d.Limit)
	assert.Zero(t, d.RetryAfter)

	d = b.decide(false, 0.5)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 250*time.Millisecond, d.RetryAfter)
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(3), castToInt(int64(3)))
	assert.Equal(t, int64(2), castToInt(2.9))
	assert.Equal(t, 1.5, castToFloat("1.5"))
	assert.Equal(t, float64(4), castToFloat(int64(4)))
	assert.Equal(t, float64(0), castToFloat(nil))
	assert.Equal(t, int64(7), castToInt("7"))
}
