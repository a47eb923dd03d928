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
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type FastCacheConfig struct {
	MaxBytes int // default 16MB
}

// FastCache keeps string values in fastcache and hashes in a map. Expiry is
// checked lazily on read.
type FastCache struct {
	mu     sync.RWMutex
	cache  *fastcache.Cache
	ttls   map[string]time.Time
	hashes map[string]map[string]string
	now    func() time.Time
}

func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &FastCache{
		cache:  fastcache.New(maxBytes),
		ttls:   make(map[string]time.Time),
		hashes: make(map[string]map[string]string),
		now:    time.Now,
	}
}

// expiredLocked must be called with the write lock held.
func (fc *FastCache) expiredLocked(key string) bool {
	exp, ok := fc.ttls[key]
	if !ok || fc.now().Before(exp) {
		return false
	}
	fc.cache.Del([]byte(key))
	delete(fc.hashes, key)
	delete(fc.ttls, key)
	return true
}

func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.expiredLocked(key) {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	value, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(value))
	return cmd
}

func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	data, err := toBytes(value)
	if err != nil {
		cmd.SetErr(err)
		return cmd
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cache.Set([]byte(key), data)
	if expiration > 0 {
		fc.ttls[key] = fc.now().Add(expiration)
	} else {
		delete(fc.ttls, key)
	}
	cmd.SetVal("OK")
	return cmd
}

func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var count int64
	for _, key := range keys {
		if fc.expiredLocked(key) {
			continue
		}
		if fc.cache.Has([]byte(key)) {
			fc.cache.Del([]byte(key))
			count++
		} else if _, ok := fc.hashes[key]; ok {
			delete(fc.hashes, key)
			count++
		}
		delete(fc.ttls, key)
	}
	cmd.SetVal(count)
	return cmd
}

func (fc *FastCache) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "hset", key)
	pairs, err := flattenHashArgs(values)
	if err != nil {
		cmd.SetErr(err)
		return cmd
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.expiredLocked(key)
	h, ok := fc.hashes[key]
	if !ok {
		h = make(map[string]string, len(pairs)/2)
		fc.hashes[key] = h
	}
	var added int64
	for i := 0; i < len(pairs); i += 2 {
		if _, exists := h[pairs[i]]; !exists {
			added++
		}
		h[pairs[i]] = pairs[i+1]
	}
	cmd.SetVal(added)
	return cmd
}

func (fc *FastCache) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx, "hgetall", key)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	out := make(map[string]string)
	if !fc.expiredLocked(key) {
		for k, v := range fc.hashes[key] {
			out[k] = v
		}
	}
	cmd.SetVal(out)
	return cmd
}

func (fc *FastCache) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "hdel", key)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var count int64
	if h, ok := fc.hashes[key]; ok && !fc.expiredLocked(key) {
		for _, f := range fields {
			if _, exists := h[f]; exists {
				delete(h, f)
				count++
			}
		}
		if len(h) == 0 {
			delete(fc.hashes, key)
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (fc *FastCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expire", key)
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.expiredLocked(key) {
		cmd.SetVal(false)
		return cmd
	}
	_, isHash := fc.hashes[key]
	if !isHash && !fc.cache.Has([]byte(key)) {
		cmd.SetVal(false)
		return cmd
	}
	fc.ttls[key] = fc.now().Add(expiration)
	cmd.SetVal(true)
	return cmd
}

// Clear drops every entry.
func (fc *FastCache) Clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cache.Reset()
	fc.ttls = make(map[string]time.Time)
	fc.hashes = make(map[string]map[string]string)
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	default:
		return sonic.Marshal(v)
	}
}

func flattenHashArgs(values []any) ([]string, error) {
	if len(values) == 1 {
		if m, ok := values[0].(map[string]any); ok {
			out := make([]string, 0, len(m)*2)
			for k, v := range m {
				b, err := toBytes(v)
				if err != nil {
					return nil, err
				}
				out = append(out, k, string(b))
			}
			return out, nil
		}
		if m, ok := values[0].(map[string]string); ok {
			out := make([]string, 0, len(m)*2)
			for k, v := range m {
				out = append(out, k, v)
			}
			return out, nil
		}
	}
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("hset expects field value pairs, got %d arguments", len(values))
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}
