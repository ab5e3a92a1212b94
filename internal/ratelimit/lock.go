package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	errClaimKey = errors.New("claim key is empty")
	errClaimTTL = errors.New("claim ttl must be positive")
)

// releaseIfOwner deletes the key only while it still holds the caller's token,
// so an expired claim re-taken by another delivery is left alone.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// claimStore hands out short-lived exclusive claims on redis keys.
type claimStore struct {
	client redis.UniversalClient
}

// claim returns a non-empty token when the key was free.
func (s claimStore) claim(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errClaimKey
	}
	if ttl <= 0 {
		return "", errClaimTTL
	}
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// release reports whether the claim was still held when released.
func (s claimStore) release(ctx context.Context, key, token string) (bool, error) {
	if key == "" || token == "" {
		return false, nil
	}
	n, err := releaseIfOwner.Run(ctx, s.client, []string{key}, token).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
