package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The bucket state lives in a hash {tokens, ts}. Time comes from the redis
// server so replicas of the API agree on refill. Tokens are returned as a
// string to keep the fractional part.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
if now > ts then
  tokens = math.min(burst, tokens + (now - ts) / 1000 * rate)
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, tostring(tokens)}
`)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// tokenBucket is a fixed-rate bucket shared by every key it is asked about.
type tokenBucket struct {
	client redis.UniversalClient
	rate   float64
	burst  int
	ttl    time.Duration
}

func newTokenBucket(client redis.UniversalClient, rate float64, burst int) (*tokenBucket, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("rate limiter rate and burst must be positive")
	}
	return &tokenBucket{client: client, rate: rate, burst: burst, ttl: defaultBucketTTL(rate, burst)}, nil
}

func (b *tokenBucket) take(ctx context.Context, key string) (Decision, error) {
	if key == "" {
		return Decision{}, errors.New("rate limiter key is empty")
	}
	res, err := takeToken.Run(ctx, b.client, []string{key}, b.rate, b.burst, b.ttl.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) != 2 {
		return Decision{}, errors.New("unexpected rate limit script reply")
	}
	return b.decide(castToInt(res[0]) == 1, castToFloat(res[1])), nil
}

func (b *tokenBucket) decide(allowed bool, tokens float64) Decision {
	d := Decision{Allowed: allowed, Limit: b.burst, Remaining: int(math.Floor(tokens))}
	if !allowed {
		d.RetryAfter = time.Duration((1 - tokens) / b.rate * float64(time.Second))
	}
	return d
}

// defaultBucketTTL keeps idle buckets around for twice the time a full
// refill takes.
func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	return time.Duration(math.Max(1, math.Ceil(float64(burst)/rate*2))) * time.Second
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	}
	return 0
}

func castToFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	}
	return 0
}
