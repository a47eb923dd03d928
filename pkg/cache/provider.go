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
	"fmt"

	"github.com/go-arcade/workhub/pkg/log"
	"github.com/google/wire"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendHybrid = "hybrid"

	defaultLocalMaxBytes = 32 * 1024 * 1024
)

type Conf struct {
	Backend       string  `mapstructure:"backend"`
	LocalMaxBytes int     `mapstructure:"localMaxBytes"`
	LocalTTLRatio float64 `mapstructure:"localTtlRatio"`
}

var ProviderSet = wire.NewSet(ProvideICache)

// ProvideICache builds the cache backend selected by conf.Backend. An empty
// backend means redis when an address is configured and memory otherwise.
func ProvideICache(conf Conf, redisConf Redis) (ICache, func(), error) {
	backend := conf.Backend
	if backend == "" {
		backend = BackendMemory
		if redisConf.Enabled() {
			backend = BackendRedis
		}
	}
	maxBytes := conf.LocalMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}

	if backend == BackendMemory {
		log.Infow("using in-process cache", "maxBytes", maxBytes)
		return NewFastCache(FastCacheConfig{MaxBytes: maxBytes}), func() {}, nil
	}
	if backend != BackendRedis && backend != BackendHybrid {
		return nil, nil, fmt.Errorf("unsupported cache backend %q", backend)
	}

	client, err := NewRedis(redisConf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warnw("close redis failed", "error", err)
		}
	}
	remote := NewRedisCache(client)
	if backend == BackendHybrid {
		return NewHybridCache(NewFastCache(FastCacheConfig{MaxBytes: maxBytes}), remote, conf.LocalTTLRatio), cleanup, nil
	}
	return remote, cleanup, nil
}
