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

package kpi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/cron"
)

func newTestScheduler(kpis *memKpis, inputs *seqInputs) (*Scheduler, *cron.Scheduler) {
	runner := cron.New()
	conf := config.KpiConfig{}
	conf.SetDefaults()
	return NewScheduler(newTestEngine(kpis, inputs, nil), kpis, runner, conf), runner
}

func TestScheduler_ConcurrentRunsCollapse(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "collapsed"})
	inputs := &seqInputs{values: []float64{7}, block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s, _ := newTestScheduler(kpis, inputs)
	sched := &model.KPISchedule{BaseModel: model.BaseModel{ID: 3}, KpiId: k.ID, CronExpression: "@every 1m", TimeoutSeconds: 5}
	ctx := context.Background()

	results := make([]*model.KPICalculation, 2)
	var wg sync.WaitGroup
	run := func(i int) {
		defer wg.Done()
		c, err := s.Run(ctx, sched)
		assert.NoError(t, err)
		results[i] = c
	}
	wg.Add(1)
	go run(0)
	<-inputs.entered
	wg.Add(1)
	go run(1)
	time.Sleep(50 * time.Millisecond)
	close(inputs.block)
	wg.Wait()

	assert.Len(t, kpis.calcs, 1)
	assert.Same(t, results[0], results[1])
	assert.Contains(t, kpis.touched, uint64(3))
}

func TestScheduler_TimeoutProducesErrorRow(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "stuck"})
	s, _ := newTestScheduler(kpis, &seqInputs{block: make(chan struct{})})

	c, err := s.Run(context.Background(), &model.KPISchedule{KpiId: k.ID, TimeoutSeconds: 1})
	require.NoError(t, err)
	assert.Equal(t, model.KpiStatusError, c.Status)
	assert.Equal(t, reasonTimeout, c.Metadata["error"])
	assert.Len(t, kpis.calcs, 1)
}

func TestScheduler_Sync(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "synced"})
	kpis.schedules = []*model.KPISchedule{
		{BaseModel: model.BaseModel{ID: 1}, KpiId: k.ID, CronExpression: "*/5 * * * *", IsActive: true},
		{BaseModel: model.BaseModel{ID: 2}, KpiId: k.ID, CronExpression: "@hourly", IsActive: true},
		{BaseModel: model.BaseModel{ID: 3}, KpiId: k.ID, CronExpression: "not a spec", IsActive: true},
	}
	s, runner := newTestScheduler(kpis, &seqInputs{})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.True(t, runner.Has("kpi-schedule-1"))
	assert.True(t, runner.Has("kpi-schedule-2"))
	assert.False(t, runner.Has("kpi-schedule-3"))
	assert.True(t, runner.Has(syncJob))

	kpis.schedules = kpis.schedules[1:2]
	require.NoError(t, s.Sync(ctx))
	assert.False(t, runner.Has("kpi-schedule-1"))
	assert.True(t, runner.Has("kpi-schedule-2"))
	assert.True(t, runner.Has(syncJob))

	require.NoError(t, runner.RunNow("kpi-schedule-2"))
	assert.Len(t, kpis.calcs, 1)
}
