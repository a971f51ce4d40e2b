package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// errNoValue keeps nil results out of redis.
var errNoValue = errors.New("cache: no value")

// GetOrLoadJSON caches load's result as JSON under key. Nil results and load
// errors are returned as-is and never stored. A cached entry that no longer
// decodes into T is dropped and reloaded.
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	var loaded *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			return nil, errNoValue
		}
		loaded = v
		return json.Marshal(v)
	})
	if errors.Is(err, errNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		return loaded, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		_ = c.Invalidate(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
