package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"

	"github.com/kindred-protocol/kindred/client"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

// ContentGateway serves encrypted profile blobs through two look-aside
// tiers: an in-process cache for hot references and a shared memcached pool
// across nodes. Content references are immutable, so cached entries never
// go stale, only cold.
type ContentGateway struct {
	client *client.Client
	mc     *memcache.Client
	cache  *cache.Cache
}

func NewContentGateway(cl *client.Client, mc *memcache.Client) *ContentGateway {
	return &ContentGateway{
		client: cl,
		mc:     mc,
		cache:  cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (g *ContentGateway) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key := contentKey(ref)

	if x, found := g.cache.Get(key); found {
		return x.([]byte), nil
	}

	if g.mc != nil {
		if item, err := g.mc.Get(key); err == nil {
			g.cache.Set(key, item.Value, cache.DefaultExpiration)
			return item.Value, nil
		}
	}

	blob, err := g.client.FetchContent(ctx, ref)
	if err != nil {
		return nil, err
	}

	g.cache.Set(key, blob, cache.DefaultExpiration)
	if g.mc != nil {
		// shared tier is best effort
		_ = g.mc.Set(&memcache.Item{
			Key:        key,
			Value:      blob,
			Expiration: int32((24 * time.Hour).Seconds()),
		})
	}

	return blob, nil
}

// contentKey hashes the reference so arbitrarily long URIs always fit
// memcached's key limit.
func contentKey(ref string) string {
	return fmt.Sprintf("content:%x", xxh3.HashString(ref))
}

var _ usecase.ContentGateway = (*ContentGateway)(nil)
