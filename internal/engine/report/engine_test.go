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

package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/errs"
)

func newTestEngine(facts *fakeFacts, conf config.ReportConfig, archive Archiver) *Engine {
	e := NewEngine(facts, cache.NewFastCache(cache.FastCacheConfig{}), conf, archive)
	e.now = func() time.Time { return reportAt }
	return e
}

func TestEngine_ConcurrentIdenticalRequestsAggregateOnce(t *testing.T) {
	facts := &fakeFacts{tasks: sampleTasks(), delay: 50 * time.Millisecond}
	e := newTestEngine(facts, config.ReportConfig{}, nil)
	ctx := context.Background()

	const n = 10
	bodies := make([][]byte, n)
	errList := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			bodies[i], errList[i] = e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errList[i])
		assert.Equal(t, string(bodies[0]), string(bodies[i]))
	}
	assert.Equal(t, int32(1), facts.calls.Load())

	again, err := e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, string(bodies[0]), string(again))
	assert.Equal(t, int32(1), facts.calls.Load())
}

func TestEngine_EquivalentFiltersShareEntry(t *testing.T) {
	facts := &fakeFacts{tasks: sampleTasks()}
	e := newTestEngine(facts, config.ReportConfig{}, nil)
	ctx := context.Background()

	_, err := e.Generate(ctx, admin, string(KindPerformance), model.ReportFilter{Statuses: []string{"todo", "done"}})
	require.NoError(t, err)
	_, err = e.Generate(ctx, admin, string(KindPerformance), model.ReportFilter{Statuses: []string{"done", "todo", "done"}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), facts.calls.Load())

	_, err = e.Generate(ctx, admin, string(KindTimeTracking), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), facts.calls.Load())
}

func TestEngine_Authorization(t *testing.T) {
	facts := &fakeFacts{tasks: sampleTasks()}
	e := newTestEngine(facts, config.ReportConfig{}, nil)
	ctx := context.Background()

	_, err := e.Generate(ctx, member, string(KindTaskSummary), model.ReportFilter{})
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	assert.Equal(t, int32(0), facts.calls.Load())

	_, err = e.Generate(ctx, manager, string(KindTaskSummary), model.ReportFilter{DepartmentId: u64(77)})
	require.NoError(t, err)
	got := facts.lastFilter()
	assert.Equal(t, uint64(3), *got.OrganizationId)
	assert.Equal(t, uint64(4), *got.DepartmentId)

	// the manager's scoped entry is not served to an admin
	_, err = e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{DepartmentId: u64(4), OrganizationId: u64(3)})
	require.NoError(t, err)
	assert.Equal(t, int32(2), facts.calls.Load())
}

func TestEngine_UnknownKindAndInvalidFilter(t *testing.T) {
	e := newTestEngine(&fakeFacts{}, config.ReportConfig{}, nil)
	ctx := context.Background()

	_, err := e.Generate(ctx, admin, "burndown", model.ReportFilter{})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	_, err = e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{
		From: tp("2025-03-02T00:00:00Z"), To: tp("2025-03-02T00:00:00Z"),
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestEngine_Invalidate(t *testing.T) {
	facts := &fakeFacts{tasks: sampleTasks()}
	e := newTestEngine(facts, config.ReportConfig{}, nil)
	ctx := context.Background()

	_, err := e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)

	err = e.Invalidate(ctx, manager)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	require.NoError(t, e.Invalidate(ctx, admin))
	_, err = e.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), facts.calls.Load())
}

func TestEngine_GenerationSharedThroughStore(t *testing.T) {
	store := cache.NewFastCache(cache.FastCacheConfig{})
	facts := &fakeFacts{tasks: sampleTasks()}
	a := NewEngine(facts, store, config.ReportConfig{}, nil)
	b := NewEngine(facts, store, config.ReportConfig{}, nil)
	ctx := context.Background()

	_, err := a.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)
	_, err = b.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), facts.calls.Load())

	require.NoError(t, a.Invalidate(ctx, admin))
	_, err = b.Generate(ctx, admin, string(KindTaskSummary), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), facts.calls.Load())
}

func TestEngine_ProjectProgressUsesProjectFacts(t *testing.T) {
	facts := &fakeFacts{projects: []model.ProjectFact{{ProjectId: 1, Name: "apollo", Status: "active", Priority: "high", TaskTotal: 2, TaskDone: 1}}}
	e := newTestEngine(facts, config.ReportConfig{}, nil)

	r, err := e.Report(context.Background(), admin, string(KindProjectProgress), model.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, KindProjectProgress, r.Kind)
	assert.Len(t, r.Rows, 1)
	assert.True(t, reportAt.Equal(r.GeneratedAt))
	assert.Equal(t, 1.0, r.SummaryValue("projects"))
}
