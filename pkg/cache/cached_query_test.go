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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCachedQuery_MissThenHit(t *testing.T) {
	cq := NewCachedQuery[payload](NewFastCache(FastCacheConfig{}), WithTTL[payload](time.Minute))
	ctx := context.Background()
	var calls int32
	query := func(ctx context.Context) (payload, error) {
		atomic.AddInt32(&calls, 1)
		return payload{Name: "tasks", Count: 3}, nil
	}

	v, hit, err := cq.Get(ctx, "k", query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, payload{Name: "tasks", Count: 3}, v)

	v, hit, err = cq.Get(ctx, "k", query)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedQuery_ErrorNotCached(t *testing.T) {
	cq := NewCachedQuery[payload](NewFastCache(FastCacheConfig{}))
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := cq.Get(ctx, "k", func(context.Context) (payload, error) { return payload{}, boom })
	assert.ErrorIs(t, err, boom)

	v, hit, err := cq.Get(ctx, "k", func(context.Context) (payload, error) { return payload{Count: 1}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, v.Count)
}

func TestCachedQuery_CollapsesConcurrentMisses(t *testing.T) {
	cq := NewCachedQuery[payload](NewFastCache(FastCacheConfig{}))
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	query := func(ctx context.Context) (payload, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return payload{Count: 7}, nil
	}

	var wg sync.WaitGroup
	results := make([]payload, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := cq.Get(ctx, "same", query)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 7, r.Count)
	}
}

func TestCachedQuery_Invalidate(t *testing.T) {
	cq := NewCachedQuery[payload](NewFastCache(FastCacheConfig{}))
	ctx := context.Background()
	n := 0
	query := func(context.Context) (payload, error) {
		n++
		return payload{Count: n}, nil
	}

	v, _, _ := cq.Get(ctx, "k", query)
	assert.Equal(t, 1, v.Count)
	require.NoError(t, cq.Invalidate(ctx, "k"))
	v, hit, _ := cq.Get(ctx, "k", query)
	assert.False(t, hit)
	assert.Equal(t, 2, v.Count)
}

func TestCachedQuery_NilCache(t *testing.T) {
	cq := NewCachedQuery[payload](nil)
	v, hit, err := cq.Get(context.Background(), "k", func(context.Context) (payload, error) {
		return payload{Name: "x"}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "x", v.Name)
	assert.NoError(t, cq.Invalidate(context.Background(), "k"))
}
