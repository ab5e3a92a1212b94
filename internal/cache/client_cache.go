package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
)

const keyClient = "whizly:client:%s:%s"

// ClientCache stores bill-to snapshots resolved from the client directory.
type ClientCache interface {
	GetClient(ctx context.Context, orgID, clientID snowflake.ID) (*invoicedomain.Client, bool)
	SetClient(ctx context.Context, orgID snowflake.ID, client *invoicedomain.Client, ttl time.Duration)
}

type memoryClientCache struct {
	items *TTLCache[string, invoicedomain.Client]
}

// NewMemoryClientCache keeps clients in process memory.
func NewMemoryClientCache() ClientCache {
	return &memoryClientCache{items: NewTTLCache[string, invoicedomain.Client]()}
}

func (c *memoryClientCache) GetClient(_ context.Context, orgID, clientID snowflake.ID) (*invoicedomain.Client, bool) {
	client, ok := c.items.Get(cacheKey(orgID.String(), clientID.String()))
	if !ok {
		return nil, false
	}
	return &client, true
}

func (c *memoryClientCache) SetClient(_ context.Context, orgID snowflake.ID, client *invoicedomain.Client, ttl time.Duration) {
	if client == nil || client.ID == 0 {
		return
	}
	c.items.Set(cacheKey(orgID.String(), client.ID.String()), *client, ttl)
}

type redisClientCache struct {
	client *redis.Client
}

// NewRedisClientCache stores clients as JSON values in redis. Redis
// failures behave like misses.
func NewRedisClientCache(client *redis.Client) ClientCache {
	return &redisClientCache{client: client}
}

func (c *redisClientCache) GetClient(ctx context.Context, orgID, clientID snowflake.ID) (*invoicedomain.Client, bool) {
	raw, err := c.client.Get(ctx, fmt.Sprintf(keyClient, orgID, clientID)).Bytes()
	if err != nil {
		return nil, false
	}
	var client invoicedomain.Client
	if err := json.Unmarshal(raw, &client); err != nil {
		return nil, false
	}
	return &client, true
}

func (c *redisClientCache) SetClient(ctx context.Context, orgID snowflake.ID, client *invoicedomain.Client, ttl time.Duration) {
	if client == nil || client.ID == 0 {
		return
	}
	raw, err := json.Marshal(client)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, fmt.Sprintf(keyClient, orgID, client.ID), raw, ttl).Err()
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}
