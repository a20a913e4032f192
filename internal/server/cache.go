package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heirclark17/talor/internal/research"
)

// ResultCache is a read-through cache of research responses in redis.
// Caching is the HTTP layer's decision; the engine stays stateless.
type ResultCache struct {
	Rdb *redis.Client
	TTL time.Duration
}

// Key derives a stable cache key from the report kind and every context
// field that affects the result.
func (rc *ResultCache) Key(kind string, r research.RequestContext) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%d|%d", kind, r.CompanyName, r.Industry, r.JobTitle, r.RoleCategory, r.RecencyDays, r.MaxItems)
	return "talor:research:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for key, if any.
func (rc *ResultCache) Get(ctx context.Context, key string) (ResearchResponse, bool) {
	if rc == nil || rc.Rdb == nil {
		return ResearchResponse{}, false
	}
	raw, err := rc.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		return ResearchResponse{}, false
	}
	var resp ResearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ResearchResponse{}, false
	}
	return resp, true
}

// Set stores the response under key. Failures are ignored; the cache is
// best effort.
func (rc *ResultCache) Set(ctx context.Context, key string, resp ResearchResponse) {
	if rc == nil || rc.Rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	ttl := rc.TTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	_ = rc.Rdb.Set(ctx, key, raw, ttl).Err()
}
