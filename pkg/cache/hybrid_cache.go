// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/workhub/pkg/log"
	"github.com/redis/go-redis/v9"
)

// HybridCache serves reads from a local FastCache and falls through to the
// remote cache. Writes go to both. Local entries live for LocalTTLRatio of the
// remote TTL so other processes' invalidations are observed eventually.
type HybridCache struct {
	local    *FastCache
	remote   ICache
	ttlRatio float64
}

func NewHybridCache(local *FastCache, remote ICache, ttlRatio float64) *HybridCache {
	if ttlRatio <= 0 || ttlRatio > 1 {
		ttlRatio = 0.5
	}
	return &HybridCache{local: local, remote: remote, ttlRatio: ttlRatio}
}

func (hc *HybridCache) localTTL(remote time.Duration) time.Duration {
	if remote <= 0 {
		return time.Minute
	}
	return time.Duration(float64(remote) * hc.ttlRatio)
}

func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
		return cmd
	}
	cmd := hc.remote.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnw("hybrid cache remote get failed", "key", key, "error", err)
		}
		return cmd
	}
	hc.local.Set(ctx, key, cmd.Val(), time.Minute)
	return cmd
}

func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	hc.local.Set(ctx, key, value, hc.localTTL(expiration))
	return hc.remote.Set(ctx, key, value, expiration)
}

func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	hc.local.Del(ctx, keys...)
	return hc.remote.Del(ctx, keys...)
}

// Hash commands bypass the local layer.
func (hc *HybridCache) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	return hc.remote.HSet(ctx, key, values...)
}

func (hc *HybridCache) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return hc.remote.HGetAll(ctx, key)
}

func (hc *HybridCache) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	return hc.remote.HDel(ctx, key, fields...)
}

func (hc *HybridCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	hc.local.Expire(ctx, key, hc.localTTL(expiration))
	return hc.remote.Expire(ctx, key, expiration)
}
