package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/whizlyai/whizly/internal/config"
)

// ErrWebhookClaimExpired means the webhook processing claim timed out.
var ErrWebhookClaimExpired = errors.New("webhook claim expired before release")

const (
	keyPaymentOrg  = "whizly:ratelimit:payments:org:%s"
	keyWebhookLock = "whizly:lock:webhook:%s:%s"
)

// PaymentLimiter throttles payment recording per organization and
// serializes concurrent deliveries of the same provider webhook.
// A nil or disabled limiter allows everything.
type PaymentLimiter struct {
	enabled bool

	bucket  *tokenBucket
	claims  claimStore
	lockTTL time.Duration
}

// NewPaymentLimiter returns a disabled limiter when redis is not configured.
func NewPaymentLimiter(cfg config.Config, client *redis.Client) *PaymentLimiter {
	limitCfg := cfg.RateLimit
	if client == nil || limitCfg.PaymentRate <= 0 || limitCfg.PaymentBurst <= 0 {
		return &PaymentLimiter{}
	}

	lockTTL := limitCfg.WebhookLockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	bucket, err := newTokenBucket(client, float64(limitCfg.PaymentRate), int(limitCfg.PaymentBurst))
	if err != nil {
		return &PaymentLimiter{}
	}
	return &PaymentLimiter{
		enabled: true,
		bucket:  bucket,
		claims:  claimStore{client: client},
		lockTTL: lockTTL,
	}
}

func (l *PaymentLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PaymentLimiter) AllowOrg(ctx context.Context, orgID string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	return l.bucket.take(ctx, fmt.Sprintf(keyPaymentOrg, strings.TrimSpace(orgID)))
}

// TryLockWebhook claims a provider payment for processing. The returned
// token releases the claim.
func (l *PaymentLimiter) TryLockWebhook(ctx context.Context, provider, paymentID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	token, err := l.claims.claim(ctx, webhookLockKey(provider, paymentID), l.lockTTL)
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

// ReleaseWebhook returns ErrWebhookClaimExpired when the claim lapsed before
// processing finished; another delivery may have run concurrently.
func (l *PaymentLimiter) ReleaseWebhook(ctx context.Context, provider, paymentID, token string) error {
	if !l.Enabled() || token == "" {
		return nil
	}
	held, err := l.claims.release(ctx, webhookLockKey(provider, paymentID), token)
	if err != nil {
		return err
	}
	if !held {
		return ErrWebhookClaimExpired
	}
	return nil
}

func webhookLockKey(provider, paymentID string) string {
	return fmt.Sprintf(keyWebhookLock, strings.ToLower(strings.TrimSpace(provider)), strings.TrimSpace(paymentID))
}
