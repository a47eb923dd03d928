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

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
)

func newTestEngine(kpis *memKpis, inputs *seqInputs, notifier Notifier) *Engine {
	return NewEngine(fakeTx{}, kpis, inputs, notifier)
}

func TestEngine_TrendAndStatusSequence(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "throughput", TargetValue: f64(100), WarningBand: 0.25})
	notifier := &recordingNotifier{}
	e := newTestEngine(kpis, &seqInputs{values: []float64{80, 90, 90, 105}}, notifier)
	ctx := context.Background()

	var trends, statuses []string
	for i := 0; i < 4; i++ {
		c, err := e.Evaluate(ctx, k.ID, Window{})
		require.NoError(t, err)
		trends = append(trends, c.Trend)
		statuses = append(statuses, c.Status)
	}

	assert.Equal(t, []string{model.TrendUnknown, model.TrendUp, model.TrendStable, model.TrendUp}, trends)
	assert.Equal(t, []string{model.KpiStatusWarning, model.KpiStatusWarning, model.KpiStatusWarning, model.KpiStatusSuccess}, statuses)

	calcs := kpis.calculationsOf(k.ID)
	require.Len(t, calcs, 4)
	assert.Nil(t, calcs[0].PreviousValue)
	assert.Equal(t, 90.0, *calcs[2].PreviousValue)
	assert.Equal(t, 105.0, *calcs[3].Value)
	assert.Equal(t, 15.0, calcs[3].Insights["delta"])

	stored, err := kpis.Get(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KpiStatusSuccess, *stored.LastStatus)
	assert.NotNil(t, stored.LastCalculationAt)

	// only the first move into warning notifies
	require.Len(t, kpis.notes, 1)
	assert.Equal(t, model.KpiStatusWarning, kpis.notes[0].Status)
	assert.Nil(t, kpis.notes[0].PreviousStatus)
	assert.Equal(t, calcs[0].CalculationId, kpis.notes[0].CalculationId)
	assert.Len(t, notifier.sent, 1)
	assert.Contains(t, kpis.delivered, kpis.notes[0].ID)
}

func TestEngine_SameWindowTwiceIsStable(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "hours"})
	e := newTestEngine(kpis, &seqInputs{values: []float64{42, 42}}, nil)
	ctx := context.Background()
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := e.Evaluate(ctx, k.ID, Window{To: &to})
	require.NoError(t, err)
	second, err := e.Evaluate(ctx, k.ID, Window{To: &to})
	require.NoError(t, err)

	assert.Equal(t, *first.Value, *second.Value)
	assert.Equal(t, model.TrendStable, second.Trend)
	assert.Equal(t, model.KpiStatusNormal, second.Status)
	assert.NotEqual(t, first.CalculationId, second.CalculationId)
	assert.Len(t, kpis.calcs, 2)
}

func TestEngine_FailedEvaluationAppendsErrorRow(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "broken", TargetValue: f64(1)})
	e := newTestEngine(kpis, &seqInputs{err: errInputs}, nil)

	c, err := e.Evaluate(context.Background(), k.ID, Window{})
	require.NoError(t, err)
	assert.Equal(t, model.KpiStatusError, c.Status)
	assert.Nil(t, c.Value)
	assert.Equal(t, errInputs.Error(), c.Metadata["error"])
	assert.Len(t, kpis.calcs, 1)
	assert.Empty(t, kpis.notes)
}

func TestEngine_TimeoutAppendsErrorRow(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "slow"})
	e := newTestEngine(kpis, &seqInputs{block: make(chan struct{})}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c, err := e.Evaluate(ctx, k.ID, Window{})
	require.NoError(t, err)
	assert.Equal(t, model.KpiStatusError, c.Status)
	assert.Equal(t, reasonTimeout, c.Metadata["error"])
	require.Len(t, kpis.calcs, 1)
	assert.Equal(t, c.CalculationId, kpis.calcs[0].CalculationId)
}

func TestEngine_UnknownKpi(t *testing.T) {
	e := newTestEngine(newMemKpis(), &seqInputs{}, nil)
	_, err := e.Evaluate(context.Background(), 404, Window{})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestEngine_SameKpiIsSerialized(t *testing.T) {
	kpis := newMemKpis()
	k := kpis.add(&model.KPI{Name: "serial"})
	inputs := &seqInputs{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := newTestEngine(kpis, inputs, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Evaluate(ctx, k.ID, Window{})
			assert.NoError(t, err)
		}()
	}
	<-inputs.entered
	time.Sleep(30 * time.Millisecond)
	inputs.mu.Lock()
	assert.Equal(t, 1, inputs.calls, "the second evaluation waits for the first")
	inputs.mu.Unlock()

	close(inputs.block)
	wg.Wait()
	assert.Len(t, kpis.calcs, 2)
}

func TestEngine_Calculate(t *testing.T) {
	kpis := newMemKpis()
	a := kpis.add(&model.KPI{Name: "a"})
	b := kpis.add(&model.KPI{Name: "b"})
	e := newTestEngine(kpis, &seqInputs{values: []float64{1, 2}}, nil)
	ctx := context.Background()

	_, err := e.Calculate(ctx, &model.CalculateReq{})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{a.ID}, From: &from, To: &to})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	out, err := e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{b.ID, a.ID, b.ID}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].KpiId)
	assert.Equal(t, b.ID, out[1].KpiId)
	assert.NotNil(t, out[0].WindowEnd)

	_, err = e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{a.ID, 999}})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestEngine_CalculateUnknownIdWritesNothing(t *testing.T) {
	kpis := newMemKpis()
	a := kpis.add(&model.KPI{Name: "a"})
	inputs := &seqInputs{values: []float64{10, 12}}
	e := newTestEngine(kpis, inputs, nil)
	ctx := context.Background()

	_, err := e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{a.ID, 999}})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Empty(t, kpis.calcs)
	inputs.mu.Lock()
	assert.Zero(t, inputs.calls)
	inputs.mu.Unlock()

	// the next real evaluation still sees a clean history
	out, err := e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{a.ID}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.KpiStatusNormal, out[0].Status)
	assert.Equal(t, model.TrendUnknown, out[0].Trend)
	stored, err := kpis.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KpiStatusNormal, *stored.LastStatus)

	out, err = e.Calculate(ctx, &model.CalculateReq{KpiIds: []uint64{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, model.TrendUp, out[0].Trend)
}

type failingLastCalc struct {
	*memKpis
	bad uint64
}

func (f *failingLastCalc) LastCalculation(ctx context.Context, kpiId uint64) (*model.KPICalculation, error) {
	if kpiId == f.bad {
		return nil, errInputs
	}
	return f.memKpis.LastCalculation(ctx, kpiId)
}

func TestEngine_CalculateSiblingFailureDoesNotCancelOthers(t *testing.T) {
	mem := newMemKpis()
	a := mem.add(&model.KPI{Name: "a"})
	b := mem.add(&model.KPI{Name: "b"})
	kpis := &failingLastCalc{memKpis: mem, bad: b.ID}
	inputs := &seqInputs{values: []float64{5}, block: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := NewEngine(fakeTx{}, kpis, inputs, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Calculate(context.Background(), &model.CalculateReq{KpiIds: []uint64{a.ID, b.ID}})
		done <- err
	}()
	<-inputs.entered
	time.Sleep(20 * time.Millisecond)
	close(inputs.block)
	require.Error(t, <-done)

	calcs := mem.calculationsOf(a.ID)
	require.Len(t, calcs, 1)
	assert.NotEqual(t, model.KpiStatusError, calcs[0].Status)
	assert.Empty(t, mem.calculationsOf(b.ID))
}

func TestKeyedLock_CancelWhileWaiting(t *testing.T) {
	var l keyedLock
	unlock, err := l.lock(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.lock(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.lock(context.Background(), 2)
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.lock(context.Background(), 1)
	require.NoError(t, err)
	again()
	assert.Empty(t, l.slots)
}
