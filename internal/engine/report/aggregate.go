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
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rate is done/total as a percentage.
func rate(done, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(done) / float64(total))
}

func isOpen(status string) bool {
	return status == model.TaskTodo || status == model.TaskInProgress || status == model.TaskReview
}

func isOverdue(f *model.TaskFact, at time.Time) bool {
	return f.DueDate != nil && f.DueDate.Before(at) && isOpen(f.Status)
}

func cycleHours(f *model.TaskFact) (float64, bool) {
	if f.Status != model.TaskDone || f.CompletedAt == nil {
		return 0, false
	}
	return f.CompletedAt.Sub(f.CreatedAt).Hours(), true
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) { m.sum += v; m.n++ }

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return round2(m.sum / float64(m.n))
}

// group buckets facts by key and returns the buckets ordered by key.
func group[K cmp.Ordered, F any](facts []F, key func(*F) K) ([]K, map[K][]*F) {
	buckets := map[K][]*F{}
	for i := range facts {
		k := key(&facts[i])
		buckets[k] = append(buckets[k], &facts[i])
	}
	keys := make([]K, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, buckets
}

func taskSummary(r *Report, facts []model.TaskFact, at time.Time) {
	r.Columns = []string{"dimension", "value", "count"}
	dims := []struct {
		name  string
		vocab []string
		of    func(*model.TaskFact) string
	}{
		{"status", model.TaskStatuses, func(f *model.TaskFact) string { return f.Status }},
		{"priority", model.TaskPriorities, func(f *model.TaskFact) string { return f.Priority }},
		{"type", model.TaskTypes, func(f *model.TaskFact) string { return f.Type }},
	}
	for _, d := range dims {
		counts := map[string]int64{}
		for i := range facts {
			counts[d.of(&facts[i])]++
		}
		for _, v := range d.vocab {
			r.Rows = append(r.Rows, []any{d.name, v, counts[v]})
		}
	}

	var done, overdue int64
	var cycle mean
	for i := range facts {
		f := &facts[i]
		if f.Status == model.TaskDone {
			done++
		}
		if h, ok := cycleHours(f); ok {
			cycle.add(h)
		}
		if isOverdue(f, at) {
			overdue++
		}
	}
	total := int64(len(facts))
	r.addSummary("total_tasks", total)
	r.addSummary("completed_tasks", done)
	r.addSummary("completion_rate", rate(done, total))
	r.addSummary("avg_cycle_hours", cycle.value())
	r.addSummary("overdue_tasks", overdue)
}

func byAssignee(f *model.TaskFact) uint64 { return f.AssigneeId }

func departmentName(f *model.TaskFact) string {
	if f.DepartmentName == nil {
		return ""
	}
	return *f.DepartmentName
}

func performance(r *Report, facts []model.TaskFact) {
	r.Columns = []string{"user_id", "user", "department", "assigned", "completed", "completion_rate", "on_time", "avg_cycle_hours"}
	keys, buckets := group(facts, byAssignee)
	var total, done int64
	for _, k := range keys {
		tasks := buckets[k]
		var completed, onTime int64
		var cycle mean
		for _, f := range tasks {
			h, ok := cycleHours(f)
			if !ok {
				continue
			}
			completed++
			cycle.add(h)
			if f.DueDate == nil || !f.CompletedAt.After(*f.DueDate) {
				onTime++
			}
		}
		first := tasks[0]
		assigned := int64(len(tasks))
		r.Rows = append(r.Rows, []any{k, first.AssigneeName, departmentName(first), assigned, completed, rate(completed, assigned), onTime, cycle.value()})
		total += assigned
		done += completed
	}
	r.addSummary("users", int64(len(keys)))
	r.addSummary("total_tasks", total)
	r.addSummary("completed_tasks", done)
	r.addSummary("completion_rate", rate(done, total))
}

func timeTracking(r *Report, facts []model.TaskFact) {
	r.Columns = []string{"user_id", "user", "tasks", "estimated_hours", "spent_hours", "variance_hours"}
	keys, buckets := group(facts, byAssignee)
	var estimatedTotal, spentTotal float64
	for _, k := range keys {
		tasks := buckets[k]
		var estimated, spent float64
		for _, f := range tasks {
			if f.EstimatedHours != nil {
				estimated += *f.EstimatedHours
			}
			spent += f.SpentHours
		}
		estimated, spent = round2(estimated), round2(spent)
		r.Rows = append(r.Rows, []any{k, tasks[0].AssigneeName, int64(len(tasks)), estimated, spent, round2(spent - estimated)})
		estimatedTotal += estimated
		spentTotal += spent
	}
	r.addSummary("users", int64(len(keys)))
	r.addSummary("total_estimated_hours", round2(estimatedTotal))
	r.addSummary("total_spent_hours", round2(spentTotal))
	r.addSummary("total_variance_hours", round2(spentTotal-estimatedTotal))
}

func userWorkload(r *Report, facts []model.TaskFact, at time.Time) {
	r.Columns = []string{"user_id", "user", "todo", "in_progress", "review", "open_total", "overdue"}
	open := slices.DeleteFunc(slices.Clone(facts), func(f model.TaskFact) bool { return !isOpen(f.Status) })
	keys, buckets := group(open, byAssignee)
	var openTotal, overdueTotal int64
	for _, k := range keys {
		counts := map[string]int64{}
		var overdue int64
		for _, f := range buckets[k] {
			counts[f.Status]++
			if isOverdue(f, at) {
				overdue++
			}
		}
		n := int64(len(buckets[k]))
		r.Rows = append(r.Rows, []any{k, buckets[k][0].AssigneeName,
			counts[model.TaskTodo], counts[model.TaskInProgress], counts[model.TaskReview], n, overdue})
		openTotal += n
		overdueTotal += overdue
	}
	r.addSummary("users", int64(len(keys)))
	r.addSummary("open_tasks", openTotal)
	r.addSummary("overdue_tasks", overdueTotal)
}

func departmentAnalytics(r *Report, facts []model.TaskFact) {
	r.Columns = []string{"department_id", "department", "users", "tasks", "completed", "completion_rate", "spent_hours"}
	keys, buckets := group(facts, func(f *model.TaskFact) uint64 {
		if f.DepartmentId == nil {
			return 0
		}
		return *f.DepartmentId
	})
	var total, done int64
	var spentTotal float64
	for _, k := range keys {
		tasks := buckets[k]
		users := map[uint64]struct{}{}
		var completed int64
		var spent float64
		for _, f := range tasks {
			users[f.AssigneeId] = struct{}{}
			if f.Status == model.TaskDone {
				completed++
			}
			spent += f.SpentHours
		}
		name := departmentName(tasks[0])
		if k == 0 {
			name = "unassigned"
		}
		n := int64(len(tasks))
		r.Rows = append(r.Rows, []any{k, name, int64(len(users)), n, completed, rate(completed, n), round2(spent)})
		total += n
		done += completed
		spentTotal += round2(spent)
	}
	r.addSummary("departments", int64(len(keys)))
	r.addSummary("total_tasks", total)
	r.addSummary("completed_tasks", done)
	r.addSummary("total_spent_hours", round2(spentTotal))
}

func projectProgress(r *Report, facts []model.ProjectFact, at time.Time) {
	r.Columns = []string{"project_id", "project", "status", "priority", "progress", "task_total", "task_done", "task_completion_rate", "spent_hours", "overdue"}
	var tasks, done int64
	var spent float64
	for _, p := range facts {
		overdue := p.DueDate != nil && p.DueDate.Before(at) && p.CompletedAt == nil
		r.Rows = append(r.Rows, []any{p.ProjectId, p.Name, p.Status, p.Priority, int64(p.Progress),
			p.TaskTotal, p.TaskDone, rate(p.TaskDone, p.TaskTotal), round2(p.SpentHours), overdue})
		tasks += p.TaskTotal
		done += p.TaskDone
		spent += round2(p.SpentHours)
	}
	r.addSummary("projects", int64(len(facts)))
	r.addSummary("total_tasks", tasks)
	r.addSummary("completed_tasks", done)
	r.addSummary("total_spent_hours", round2(spent))
}

func taskCompletion(r *Report, facts []model.TaskFact) {
	r.Columns = []string{"date", "created", "completed"}
	created := map[string]int64{}
	completed := map[string]int64{}
	for i := range facts {
		f := &facts[i]
		created[f.CreatedAt.UTC().Format(time.DateOnly)]++
		if f.Status == model.TaskDone && f.CompletedAt != nil {
			completed[f.CompletedAt.UTC().Format(time.DateOnly)]++
		}
	}
	days := make([]string, 0, len(created)+len(completed))
	for d := range created {
		days = append(days, d)
	}
	for d := range completed {
		days = append(days, d)
	}
	slices.Sort(days)
	days = slices.Compact(days)

	var createdTotal, completedTotal int64
	for _, d := range days {
		r.Rows = append(r.Rows, []any{d, created[d], completed[d]})
		createdTotal += created[d]
		completedTotal += completed[d]
	}
	r.addSummary("days", int64(len(days)))
	r.addSummary("total_created", createdTotal)
	r.addSummary("total_completed", completedTotal)
}
