package cache

import (
	"context"
	"time"
)

// Cache is a read-through JSON cache. The questionnaire definition barely
// changes, so reads are served from here between TTL expiries.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
