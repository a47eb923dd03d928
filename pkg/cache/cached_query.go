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
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss indicates that the key was not found in cache
var ErrCacheMiss = redis.Nil

type QueryFunc[T any] func(ctx context.Context) (T, error)

// CachedQuery is a read-through cache. Concurrent misses on the same key are
// collapsed so the query runs once per key per process.
type CachedQuery[T any] struct {
	cache     ICache
	group     singleflight.Group
	ttl       time.Duration
	logPrefix string
	onShared  func(key string)
}

type CachedQueryOption[T any] func(*CachedQuery[T])

func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

// WithSharedHook registers fn to run whenever a caller receives the result
// of another caller's in-flight query.
func WithSharedHook[T any](fn func(key string)) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.onShared = fn
	}
}

func NewCachedQuery[T any](cache ICache, opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		ttl:       time.Hour,
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Get returns the cached value for key, running query on a miss. hit reports
// whether the value came from the cache.
func (cq *CachedQuery[T]) Get(ctx context.Context, key string, query QueryFunc[T]) (result T, hit bool, err error) {
	if v, ok := cq.lookup(ctx, key); ok {
		return v, true, nil
	}

	res, err, shared := cq.group.Do(key, func() (any, error) {
		// another caller may have filled the key while we waited
		if v, ok := cq.lookup(ctx, key); ok {
			return v, nil
		}
		log.Debugw(cq.logPrefix+" cache miss, running query", "key", key)
		v, err := query(ctx)
		if err != nil {
			return nil, err
		}
		cq.store(ctx, key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("cached query %s: %w", key, err)
	}
	if shared {
		log.Debugw(cq.logPrefix+" shared in-flight result", "key", key)
		if cq.onShared != nil {
			cq.onShared(key)
		}
	}
	return res.(T), false, nil
}

func (cq *CachedQuery[T]) lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	if cq.cache == nil {
		return zero, false
	}
	data, err := cq.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warnw(cq.logPrefix+" cache get error", "key", key, "error", err)
		}
		return zero, false
	}
	var v T
	if err := sonic.UnmarshalString(data, &v); err != nil {
		log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", key, "error", err)
		return zero, false
	}
	log.Debugw(cq.logPrefix+" cache hit", "key", key)
	return v, true
}

func (cq *CachedQuery[T]) store(ctx context.Context, key string, v T) {
	if cq.cache == nil {
		return
	}
	data, err := sonic.MarshalString(v)
	if err != nil {
		log.Warnw(cq.logPrefix+" failed to marshal result for caching", "key", key, "error", err)
		return
	}
	if err := cq.cache.Set(ctx, key, data, cq.ttl).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to cache result", "key", key, "error", err)
	}
}

// Invalidate removes key from the cache.
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, key string) error {
	if cq.cache == nil {
		return nil
	}
	if err := cq.cache.Del(ctx, key).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to invalidate cache", "key", key, "error", err)
		return err
	}
	return nil
}
