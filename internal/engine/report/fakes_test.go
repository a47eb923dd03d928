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
	"sync/atomic"
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/service"
)

type fakeFacts struct {
	mu       sync.Mutex
	tasks    []model.TaskFact
	projects []model.ProjectFact
	filters  []model.ReportFilter
	calls    atomic.Int32
	delay    time.Duration
}

func (f *fakeFacts) TaskFacts(ctx context.Context, filter model.ReportFilter) ([]model.TaskFact, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.tasks, nil
}

func (f *fakeFacts) ProjectFacts(ctx context.Context, filter model.ReportFilter) ([]model.ProjectFact, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	return f.projects, nil
}

func (f *fakeFacts) lastFilter() model.ReportFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fakeArchive struct {
	names []string
}

func (a *fakeArchive) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	a.names = append(a.names, name)
	return "exports/" + name, nil
}

func u64(v uint64) *uint64 { return &v }

func f64(v float64) *float64 { return &v }

func tm(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tp(s string) *time.Time {
	t := tm(s)
	return &t
}

var (
	admin   = &service.Principal{UserId: 1, Role: "admin"}
	manager = &service.Principal{UserId: 2, Role: "manager", OrganizationId: u64(3), DepartmentId: u64(4)}
	member  = &service.Principal{UserId: 5, Role: "member", OrganizationId: u64(3)}
)

func sampleTasks() []model.TaskFact {
	dept := "platform"
	return []model.TaskFact{
		{TaskId: 1, Title: "a", Status: model.TaskDone, Priority: "high", Type: "bug", AssigneeId: 10, AssigneeName: "ana",
			DepartmentId: u64(4), DepartmentName: &dept,
			CreatedAt: tm("2025-03-01T08:00:00Z"), CompletedAt: tp("2025-03-02T08:00:00Z"), DueDate: tp("2025-03-03T00:00:00Z"),
			EstimatedHours: f64(10), SpentHours: 12},
		{TaskId: 2, Title: "b", Status: model.TaskInProgress, Priority: "medium", Type: "task", AssigneeId: 10, AssigneeName: "ana",
			DepartmentId: u64(4), DepartmentName: &dept,
			CreatedAt: tm("2025-03-01T09:00:00Z"), DueDate: tp("2025-03-05T00:00:00Z"), EstimatedHours: f64(4), SpentHours: 1.5},
		{TaskId: 3, Title: "c", Status: model.TaskDone, Priority: "medium", Type: "feature", AssigneeId: 11, AssigneeName: "bo",
			CreatedAt: tm("2025-03-02T10:00:00Z"), CompletedAt: tp("2025-03-04T22:00:00Z"), DueDate: tp("2025-03-04T00:00:00Z"),
			SpentHours: 6},
		{TaskId: 4, Title: "d", Status: model.TaskTodo, Priority: "low", Type: "task", AssigneeId: 11, AssigneeName: "bo",
			CreatedAt: tm("2025-03-03T10:00:00Z")},
	}
}
