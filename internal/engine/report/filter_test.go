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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/errs"
)

func TestCanonicalize_EquivalentFiltersEncodeEqually(t *testing.T) {
	a := model.ReportFilter{
		From:     tp("2025-03-01T10:00:00+02:00"),
		Statuses: []string{"todo", "done", "todo"},
	}
	b := model.ReportFilter{
		From:     tp("2025-03-01T08:00:00Z"),
		Statuses: []string{"done", "todo"},
	}
	ab, err := CanonicalBytes(a)
	require.NoError(t, err)
	bb, err := CanonicalBytes(b)
	require.NoError(t, err)
	assert.Equal(t, string(bb), string(ab))

	c := Canonicalize(a)
	assert.Equal(t, []string{"done", "todo"}, c.Statuses)
	assert.Equal(t, "UTC", c.From.Location().String())
	assert.Equal(t, []string{"todo", "done", "todo"}, a.Statuses, "input untouched")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		f    model.ReportFilter
		want errs.Kind
	}{
		{"inverted window", KindTaskSummary, model.ReportFilter{From: tp("2025-03-02T00:00:00Z"), To: tp("2025-03-01T00:00:00Z")}, errs.KindValidation},
		{"unknown status", KindTaskSummary, model.ReportFilter{Statuses: []string{"open"}}, errs.KindValidation},
		{"unknown type", KindPerformance, model.ReportFilter{Types: []string{"epic"}}, errs.KindValidation},
		{"project types", KindProjectProgress, model.ReportFilter{Types: []string{"bug"}}, errs.KindValidation},
		{"task status on project", KindProjectProgress, model.ReportFilter{Statuses: []string{"todo"}}, errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.kind, tt.f)
			require.Error(t, err)
			assert.Equal(t, tt.want, errs.KindOf(err))
		})
	}

	assert.NoError(t, Validate(KindTaskSummary, model.ReportFilter{Statuses: []string{"done"}, Types: []string{"bug"}}))
	assert.NoError(t, Validate(KindProjectProgress, model.ReportFilter{Statuses: []string{"active"}}))
}

func TestScope(t *testing.T) {
	allowed, admins := []string{"admin", "manager"}, []string{"admin"}

	_, err := Scope(member, model.ReportFilter{}, allowed, admins)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	_, err = Scope(nil, model.ReportFilter{}, allowed, admins)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	f, err := Scope(admin, model.ReportFilter{DepartmentId: u64(9)}, allowed, admins)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), *f.DepartmentId)

	f, err = Scope(manager, model.ReportFilter{OrganizationId: u64(99), DepartmentId: u64(98)}, allowed, admins)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), *f.OrganizationId)
	assert.Equal(t, uint64(4), *f.DepartmentId)

	unscoped := &service.Principal{UserId: 6, Role: "manager"}
	_, err = Scope(unscoped, model.ReportFilter{}, allowed, admins)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
}
