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
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/cron"
	"github.com/go-arcade/workhub/pkg/log"
)

const (
	schedulePrefix = "kpi-schedule-"
	syncJob        = "kpi-schedule-sync"
	syncSpec       = "@every 1m"
)

// Scheduler runs KPISchedule rows on the cron scheduler. Concurrent
// attempts for the same KPI share one evaluation.
type Scheduler struct {
	engine  *Engine
	kpis    repo.IKpiRepository
	cron    *cron.Scheduler
	timeout time.Duration
	group   singleflight.Group

	mu         sync.Mutex
	registered map[string]string
}

func NewScheduler(engine *Engine, kpis repo.IKpiRepository, runner *cron.Scheduler, conf config.KpiConfig) *Scheduler {
	return &Scheduler{
		engine:     engine,
		kpis:       kpis,
		cron:       runner,
		timeout:    time.Duration(conf.DefaultTimeout) * time.Second,
		registered: make(map[string]string),
	}
}

func scheduleJob(id uint64) string {
	return schedulePrefix + strconv.FormatUint(id, 10)
}

// Start registers the active schedules and a job that keeps them in sync
// with the table.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	return s.cron.Add(syncJob, syncSpec, s.Sync)
}

// Sync adds, replaces and removes cron jobs to match the active schedules.
func (s *Scheduler) Sync(ctx context.Context) error {
	schedules, err := s.kpis.ActiveSchedules(ctx)
	if err != nil {
		return fmt.Errorf("load kpi schedules: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(schedules))
	for _, sched := range schedules {
		name := scheduleJob(sched.ID)
		seen[name] = struct{}{}
		if s.registered[name] == sched.CronExpression {
			continue
		}
		sched := sched
		if err := s.cron.Add(name, sched.CronExpression, func(ctx context.Context) error {
			_, err := s.Run(ctx, sched)
			return err
		}); err != nil {
			log.Warnw("kpi schedule skipped", "schedule", sched.ID, "spec", sched.CronExpression, "error", err)
			continue
		}
		s.registered[name] = sched.CronExpression
	}
	for name := range s.registered {
		if _, ok := seen[name]; ok {
			continue
		}
		if err := s.cron.Remove(name); err != nil {
			log.Warnw("kpi schedule not removed", "job", name, "error", err)
		}
		delete(s.registered, name)
	}
	return nil
}

// Run evaluates the KPI of sched now. Attempts arriving while one is in
// flight for the same KPI get its result.
func (s *Scheduler) Run(ctx context.Context, sched *model.KPISchedule) (*model.KPICalculation, error) {
	key := strconv.FormatUint(sched.KpiId, 10)
	v, err, shared := s.group.Do(key, func() (any, error) {
		timeout := s.timeout
		if sched.TimeoutSeconds > 0 {
			timeout = time.Duration(sched.TimeoutSeconds) * time.Second
		}
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		at := s.engine.now()
		c, err := s.engine.Evaluate(runCtx, sched.KpiId, Window{To: &at})
		if err != nil {
			return nil, err
		}
		if err := s.kpis.TouchSchedule(context.WithoutCancel(ctx), sched.ID, at); err != nil {
			log.Warnw("kpi schedule run not recorded", "schedule", sched.ID, "error", err)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugw("kpi evaluation shared", "kpi", sched.KpiId, "schedule", sched.ID)
	}
	return v.(*model.KPICalculation), nil
}
