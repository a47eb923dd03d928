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
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/id"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
)

const (
	defaultParallelism = 8
	persistTimeout     = 5 * time.Second
	reasonTimeout      = "timeout"
)

// Notifier delivers a KPI notification outside the database.
type Notifier interface {
	Notify(ctx context.Context, k *model.KPI, n *model.KPINotification) error
}

// Window is the half open input range [From, To).
type Window struct {
	From *time.Time
	To   *time.Time
}

// keyedLock serializes work per key. Waiting respects the context.
type keyedLock struct {
	mu    sync.Mutex
	slots map[uint64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func (l *keyedLock) lock(ctx context.Context, key uint64) (func(), error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[uint64]*slot)
	}
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			l.release(key, s)
		}, nil
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}
}

func (l *keyedLock) release(key uint64, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Engine evaluates KPIs. Evaluations of one KPI are mutually exclusive,
// different KPIs run in parallel.
type Engine struct {
	tx       service.Transactor
	kpis     repo.IKpiRepository
	inputs   repo.IKpiInputRepository
	notifier Notifier
	locks    keyedLock
	parallel int
	now      func() time.Time
}

func NewEngine(tx service.Transactor, kpis repo.IKpiRepository, inputs repo.IKpiInputRepository, notifier Notifier) *Engine {
	return &Engine{
		tx:       tx,
		kpis:     kpis,
		inputs:   inputs,
		notifier: notifier,
		parallel: defaultParallelism,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Calculate evaluates every requested KPI over the request window and
// returns the appended calculations in id order.
func (e *Engine) Calculate(ctx context.Context, req *model.CalculateReq) ([]*model.KPICalculation, error) {
	if len(req.KpiIds) == 0 {
		return nil, errs.Validation("kpiIds is required")
	}
	to := e.now()
	if req.To != nil {
		to = req.To.UTC()
	}
	w := Window{From: req.From, To: &to}
	if w.From != nil {
		from := w.From.UTC()
		if !from.Before(to) {
			return nil, errs.Unprocessable("from must precede to")
		}
		w.From = &from
	}

	ids := slices.Clone(req.KpiIds)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	// an unknown id fails the request before anything is written
	for _, kpiId := range ids {
		if _, err := e.kpis.Get(ctx, kpiId); err != nil {
			return nil, errs.FromDB(err, "kpi")
		}
	}

	// no shared cancellation: one KPI failing leaves the others running
	out := make([]*model.KPICalculation, len(ids))
	var g errgroup.Group
	g.SetLimit(e.parallel)
	for i, kpiId := range ids {
		g.Go(func() error {
			c, err := e.Evaluate(ctx, kpiId, w)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate runs one KPI and appends the result. A failed evaluation, a
// timeout included, still appends a calculation with status error.
func (e *Engine) Evaluate(ctx context.Context, kpiId uint64, w Window) (*model.KPICalculation, error) {
	start := time.Now()

	// 1. one evaluation per KPI at a time
	unlock, err := e.locks.lock(ctx, kpiId)
	if err != nil {
		return e.fail(ctx, kpiId, w, err, start)
	}
	defer unlock()

	// 2. load the definition and the previous result
	k, err := e.kpis.Get(ctx, kpiId)
	if err != nil {
		if ctx.Err() != nil {
			return e.fail(ctx, kpiId, w, ctx.Err(), start)
		}
		return nil, errs.FromDB(err, "kpi")
	}
	prev, err := e.kpis.LastCalculation(ctx, kpiId)
	if err != nil {
		if ctx.Err() != nil {
			return e.fail(ctx, kpiId, w, ctx.Err(), start)
		}
		return nil, errs.FromDB(err, "kpi calculation")
	}

	// 3. evaluate
	value, evalErr := e.run(ctx, k, w)
	c := newCalculation(kpiId, w, e.now())
	c.TargetValue = k.TargetValue
	c.Metadata["formula"] = k.Formula
	if prev != nil {
		c.PreviousValue = prev.Value
	}
	if evalErr != nil {
		markFailed(c, evalErr)
	} else {
		c.Value = &value
		c.Trend = Trend(value, c.PreviousValue, k.TrendEpsilon)
		c.Status = Status(value, k.TargetValue, k.WarningBand, k.Direction)
		c.Insights = insights(value, c.PreviousValue, k.TargetValue)
	}

	// 4. persist and notify
	if err := e.store(ctx, k, c); err != nil {
		return nil, err
	}
	e.observe(ctx, c, start)
	return c, nil
}

func (e *Engine) run(ctx context.Context, k *model.KPI, w Window) (float64, error) {
	ds := k.DataSource.Data()
	program, err := Compile(k.Formula, ds)
	if err != nil {
		return 0, err
	}
	inputs, err := e.inputs.Fetch(ctx, ds, w.From, w.To)
	if err != nil {
		return 0, err
	}
	return program.Run(inputs)
}

func newCalculation(kpiId uint64, w Window, at time.Time) *model.KPICalculation {
	return &model.KPICalculation{
		KpiId:         kpiId,
		CalculationId: id.GetUlid(),
		Trend:         model.TrendUnknown,
		Metadata:      datatypes.JSONMap{},
		Insights:      datatypes.JSONMap{},
		WindowStart:   w.From,
		WindowEnd:     w.To,
		CalculatedAt:  at,
	}
}

func markFailed(c *model.KPICalculation, cause error) {
	c.Value = nil
	c.Trend = model.TrendUnknown
	c.Status = model.KpiStatusError
	if errors.Is(cause, context.DeadlineExceeded) {
		c.Metadata["error"] = reasonTimeout
	} else {
		c.Metadata["error"] = cause.Error()
	}
}

// fail appends an error calculation when the evaluation could not start or
// finish in time.
func (e *Engine) fail(ctx context.Context, kpiId uint64, w Window, cause error, start time.Time) (*model.KPICalculation, error) {
	c := newCalculation(kpiId, w, e.now())
	markFailed(c, cause)
	if err := e.store(ctx, nil, c); err != nil {
		return nil, err
	}
	e.observe(ctx, c, start)
	return c, nil
}

func (e *Engine) store(ctx context.Context, k *model.KPI, c *model.KPICalculation) error {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
	}

	var note *model.KPINotification
	err := e.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := e.kpis.AppendCalculation(ctx, c); err != nil {
			return errs.FromDB(err, "kpi calculation")
		}
		if err := e.kpis.MarkCalculated(ctx, c.KpiId, c.CalculatedAt, c.Status); err != nil {
			return errs.FromDB(err, "kpi")
		}
		if k == nil || !notifiable(k.LastStatus, c.Status) {
			return nil
		}
		note = &model.KPINotification{
			KpiId:          k.ID,
			CalculationId:  c.CalculationId,
			Status:         c.Status,
			PreviousStatus: k.LastStatus,
			Message:        notificationMessage(k, c),
		}
		return errs.FromDB(e.kpis.CreateNotification(ctx, note), "kpi notification")
	})
	if err != nil {
		return err
	}
	if note != nil {
		e.deliver(ctx, k, note)
	}
	return nil
}

func notificationMessage(k *model.KPI, c *model.KPICalculation) string {
	msg := fmt.Sprintf("KPI %q is %s", k.Name, c.Status)
	if c.Value != nil {
		msg += fmt.Sprintf(": value %g", *c.Value)
	}
	if k.TargetValue != nil {
		msg += fmt.Sprintf(", target %g", *k.TargetValue)
	}
	return msg
}

// deliver pushes a committed notification. Failures stay in the table as
// undelivered rows.
func (e *Engine) deliver(ctx context.Context, k *model.KPI, n *model.KPINotification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, k, n); err != nil {
		log.WithContext(ctx).Warnw("kpi notification not delivered", "kpi", k.ID, "notification", n.ID, "error", err)
		return
	}
	at := e.now()
	if err := e.kpis.MarkDelivered(ctx, n.ID, at); err != nil {
		log.WithContext(ctx).Warnw("kpi notification delivery not recorded", "notification", n.ID, "error", err)
		return
	}
	n.DeliveredAt = &at
}

func (e *Engine) observe(ctx context.Context, c *model.KPICalculation, start time.Time) {
	elapsed := time.Since(start)
	metrics.ObserveKPIEvaluation(c.Status, elapsed)
	log.WithContext(ctx).Infow("kpi evaluated",
		"kpi", c.KpiId, "calculation", c.CalculationId, "status", c.Status, "trend", c.Trend, "elapsed", elapsed)
}
