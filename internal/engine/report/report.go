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
	"slices"
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
)

type Kind string

const (
	KindTaskSummary         Kind = "task_summary"
	KindPerformance         Kind = "performance"
	KindTimeTracking        Kind = "time_tracking"
	KindUserWorkload        Kind = "user_workload"
	KindDepartmentAnalytics Kind = "department_analytics"
	KindProjectProgress     Kind = "project_progress"
	KindTaskCompletion      Kind = "task_completion"
)

var Kinds = []Kind{
	KindTaskSummary, KindPerformance, KindTimeTracking,
	KindUserWorkload, KindDepartmentAnalytics, KindProjectProgress, KindTaskCompletion,
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", errs.NotFound("unknown report kind %q", s)
	}
	return k, nil
}

// SummaryItem is one named total. Summary keeps insertion order, so every
// export lists totals the same way.
type SummaryItem struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Report is the canonical aggregate. Columns name the cells of every row in
// order; the tabular exports render exactly these.
type Report struct {
	Kind        Kind               `json:"kind"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Filters     model.ReportFilter `json:"filters"`
	Columns     []string           `json:"columns"`
	Rows        [][]any            `json:"rows"`
	Summary     []SummaryItem      `json:"summary"`
}

func (r *Report) addSummary(name string, value any) {
	r.Summary = append(r.Summary, SummaryItem{Name: name, Value: value})
}

// SummaryValue returns the named total, or nil.
func (r *Report) SummaryValue(name string) any {
	for _, s := range r.Summary {
		if s.Name == name {
			return s.Value
		}
	}
	return nil
}
