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
	"errors"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/go-arcade/workhub/internal/engine/model"
)

type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memKpis keeps KPIs and their results in memory.
type memKpis struct {
	mu        sync.Mutex
	nextId    uint64
	kpis      map[uint64]*model.KPI
	calcs     []*model.KPICalculation
	notes     []*model.KPINotification
	delivered map[uint64]time.Time
	schedules []*model.KPISchedule
	touched   map[uint64]time.Time
}

func newMemKpis() *memKpis {
	return &memKpis{kpis: map[uint64]*model.KPI{}, delivered: map[uint64]time.Time{}, touched: map[uint64]time.Time{}}
}

func (m *memKpis) id() uint64 {
	m.nextId++
	return m.nextId
}

func (m *memKpis) Create(ctx context.Context, k *model.KPI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k.ID = m.id()
	k.CreatedAt, k.UpdatedAt = time.Now(), time.Now()
	cp := *k
	m.kpis[k.ID] = &cp
	return nil
}

func (m *memKpis) Get(ctx context.Context, id uint64) (*model.KPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.kpis[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *memKpis) List(ctx context.Context, q *model.KpiQuery) ([]*model.KPI, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.KPI
	for _, k := range m.kpis {
		cp := *k
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *memKpis) Update(ctx context.Context, id uint64, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.kpis[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range updates {
		switch col {
		case "name":
			k.Name = v.(string)
		case "formula":
			k.Formula = v.(string)
		case "data_source":
			k.DataSource = v.(datatypes.JSONType[model.DataSource])
		case "target_value":
			f := v.(float64)
			k.TargetValue = &f
		case "is_active":
			k.IsActive = v.(bool)
		case "updated_at":
			k.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (m *memKpis) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kpis[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.kpis, id)
	return nil
}

func (m *memKpis) LastCalculation(ctx context.Context, kpiId uint64) (*model.KPICalculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calcs) - 1; i >= 0; i-- {
		if m.calcs[i].KpiId == kpiId {
			cp := *m.calcs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memKpis) AppendCalculation(ctx context.Context, c *model.KPICalculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kpis[c.KpiId]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	c.ID = m.id()
	m.calcs = append(m.calcs, c)
	return nil
}

func (m *memKpis) ListCalculations(ctx context.Context, kpiId uint64, page model.PageReq) ([]*model.KPICalculation, int64, error) {
	return m.calculationsOf(kpiId), 0, nil
}

func (m *memKpis) calculationsOf(kpiId uint64) []*model.KPICalculation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.KPICalculation
	for _, c := range m.calcs {
		if c.KpiId == kpiId {
			out = append(out, c)
		}
	}
	return out
}

func (m *memKpis) MarkCalculated(ctx context.Context, kpiId uint64, at time.Time, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.kpis[kpiId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	k.LastCalculationAt = &at
	k.LastStatus = &status
	return nil
}

func (m *memKpis) CreateNotification(ctx context.Context, n *model.KPINotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	m.notes = append(m.notes, n)
	return nil
}

func (m *memKpis) MarkDelivered(ctx context.Context, notificationId uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered[notificationId] = at
	return nil
}

func (m *memKpis) ActiveSchedules(ctx context.Context) ([]*model.KPISchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.KPISchedule(nil), m.schedules...), nil
}

func (m *memKpis) TouchSchedule(ctx context.Context, scheduleId uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[scheduleId] = at
	return nil
}

func (m *memKpis) add(k *model.KPI) *model.KPI {
	if k.Direction == "" {
		k.Direction = model.DirectionHigherIsBetter
	}
	if k.Formula == "" {
		k.Formula = "sum(x)"
	}
	if k.DataSource.Data().Type == "" {
		k.DataSource = datatypes.NewJSONType(model.DataSource{Type: model.DataSourceStatic, Values: map[string][]float64{"x": {0}}})
	}
	k.IsActive = true
	_ = m.Create(context.Background(), k)
	return k
}

// seqInputs hands out one value per Fetch, in order.
type seqInputs struct {
	mu     sync.Mutex
	values []float64
	err    error
	// block, when set, makes Fetch wait for release or the context.
	block   chan struct{}
	entered chan struct{}
	calls   int
}

func (s *seqInputs) Fetch(ctx context.Context, ds model.DataSource, from, to *time.Time) (map[string][]float64, error) {
	s.mu.Lock()
	s.calls++
	var v float64
	if len(s.values) > 0 {
		v, s.values = s.values[0], s.values[1:]
	}
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := map[string][]float64{}
	for _, name := range ds.Identifiers() {
		out[name] = []float64{v}
	}
	return out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.KPINotification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, k *model.KPI, n *model.KPINotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

var errInputs = errors.New("inputs unavailable")

func f64(v float64) *float64 { return &v }
