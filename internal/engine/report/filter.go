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

	"github.com/bytedance/sonic"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/statemachine"
)

// Canonicalize returns a copy of f in its canonical form: dates in UTC at
// second precision and every list sorted without duplicates. Equal filters
// encode to equal bytes.
func Canonicalize(f model.ReportFilter) model.ReportFilter {
	out := f
	out.From = utc(f.From)
	out.To = utc(f.To)
	out.Statuses = normalizeList(f.Statuses)
	out.Priorities = normalizeList(f.Priorities)
	out.Types = normalizeList(f.Types)
	return out
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Second)
	return &v
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// CanonicalBytes encodes a canonical filter. Struct fields encode in
// declaration order, so the bytes are stable.
func CanonicalBytes(f model.ReportFilter) ([]byte, error) {
	return sonic.ConfigStd.Marshal(Canonicalize(f))
}

// Validate checks the filter vocabulary for kind. Project reports filter on
// the project vocabulary, the rest on tasks.
func Validate(kind Kind, f model.ReportFilter) error {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return errs.Unprocessable("from must precede to")
	}
	statuses, priorities := model.TaskStatuses, model.TaskPriorities
	if kind == KindProjectProgress {
		statuses = make([]string, 0, len(statemachine.ProjectStatuses))
		for _, s := range statemachine.ProjectStatuses {
			statuses = append(statuses, string(s))
		}
		priorities = model.ProjectPriorities
		if len(f.Types) > 0 {
			return errs.Validation("project reports do not filter on types")
		}
	}
	for _, s := range f.Statuses {
		if !slices.Contains(statuses, s) {
			return errs.Validation("unknown status %q", s)
		}
	}
	for _, p := range f.Priorities {
		if !slices.Contains(priorities, p) {
			return errs.Validation("unknown priority %q", p)
		}
	}
	for _, t := range f.Types {
		if !slices.Contains(model.TaskTypes, t) {
			return errs.Validation("unknown type %q", t)
		}
	}
	return nil
}

// Scope restricts f to what p may see. Administrators keep the requested
// scope, everyone else is pinned to their own organization and department
// and needs at least one of them.
func Scope(p *service.Principal, f model.ReportFilter, allowed, admins []string) (model.ReportFilter, error) {
	if p == nil || !p.HasRole(allowed...) {
		return f, errs.Forbidden("reports require one of the roles %v", allowed)
	}
	if p.HasRole(admins...) {
		return f, nil
	}
	if p.OrganizationId == nil && p.DepartmentId == nil {
		return f, errs.Forbidden("no organization or department to scope the report to")
	}
	f.OrganizationId = p.OrganizationId
	f.DepartmentId = p.DepartmentId
	return f, nil
}
