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

package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-arcade/workhub/pkg/log"
	robfig "github.com/robfig/cron"
)

var (
	ErrEmptyName   = errors.New("cron job name is empty")
	ErrJobNotFound = errors.New("cron job not found")
)

// JobFunc is the unit of scheduled work. ctx is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context) error

// MetricsRecorder receives job outcomes, see pkg/metrics.
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateNextRun(jobName string, nextRun time.Time)
	UpdateJobsCount(count int)
}

var (
	recorderMu sync.RWMutex
	recorder   MetricsRecorder
)

func SetMetricsRecorder(r MetricsRecorder) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	recorder = r
}

func getRecorder() MetricsRecorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return recorder
}

type job struct {
	name     string
	spec     string
	schedule robfig.Schedule
	fn       JobFunc
	running  sync.Mutex
}

// Entry describes one registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// Scheduler keeps named jobs on top of robfig/cron. robfig/cron v1 has no
// removal by id, so Add on an existing name and Remove rebuild the runner.
type Scheduler struct {
	mu       sync.Mutex
	location *time.Location
	runner   *robfig.Cron
	jobs     map[string]*job
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
}

func New() *Scheduler {
	return NewWithLocation(time.UTC)
}

func NewWithLocation(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		location: loc,
		runner:   robfig.NewWithLocation(loc),
		jobs:     make(map[string]*job),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Parse validates a standard five field expression or a descriptor such as @every 5m.
func Parse(spec string) (robfig.Schedule, error) {
	s, err := robfig.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return s, nil
}

// Add registers fn under name, replacing any job with the same name.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if name == "" {
		return ErrEmptyName
	}
	schedule, err := Parse(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j := &job{name: name, spec: spec, schedule: schedule, fn: fn}
	_, replacing := s.jobs[name]
	s.jobs[name] = j
	if replacing {
		s.rebuildLocked()
	} else {
		s.runner.Schedule(schedule, s.wrap(j))
	}
	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(s.jobs))
	}
	log.Debugw("cron job registered", "name", name, "spec", spec)
	return nil
}

// Remove unregisters the job called name.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	delete(s.jobs, name)
	s.rebuildLocked()
	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(s.jobs))
	}
	return nil
}

func (s *Scheduler) rebuildLocked() {
	if s.started {
		s.runner.Stop()
	}
	s.runner = robfig.NewWithLocation(s.location)
	for _, j := range s.jobs {
		s.runner.Schedule(j.schedule, s.wrap(j))
	}
	if s.started {
		s.runner.Start()
	}
}

// wrap skips a tick when the previous run of the same job is still going.
func (s *Scheduler) wrap(j *job) robfig.Job {
	return robfig.FuncJob(func() {
		if !j.running.TryLock() {
			log.Warnw("cron job still running, skipping tick", "name", j.name)
			return
		}
		defer j.running.Unlock()
		s.run(j)
	})
}

func (s *Scheduler) run(j *job) {
	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			log.Errorw("cron job failed", "name", j.name, "error", err)
		}
		if rec := getRecorder(); rec != nil {
			rec.RecordJobRun(j.name, time.Since(start), err)
			rec.UpdateNextRun(j.name, j.schedule.Next(time.Now().In(s.location)))
		}
	}()
	err = j.fn(s.ctx)
}

// RunNow executes the named job synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	j.running.Lock()
	defer j.running.Unlock()
	s.run(j)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.runner.Start()
	log.Infow("cron scheduler started", "jobs", len(s.jobs))
}

// Stop halts scheduling and cancels the context handed to running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.runner.Stop()
	s.cancel()
}

// Entries lists registered jobs sorted by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().In(s.location)
	out := make([]Entry, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, Entry{Name: j.name, Spec: j.spec, Next: j.schedule.Next(now)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *Scheduler) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}
