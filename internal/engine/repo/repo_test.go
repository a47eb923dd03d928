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

package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/go-arcade/workhub/internal/engine/model"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=workhub dbname=workhub sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestFilterApplyIsSorted(t *testing.T) {
	db := dryRunDB(t)
	stmt := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return Filter{"status": "done", "owner_id": 7}.apply(tx.Model(&model.Task{})).Find(&[]model.Task{})
	})
	assert.Contains(t, stmt, `FROM "tasks" WHERE "owner_id" = 7 AND "status" = 'done'`)
}

func TestValidateDataSource(t *testing.T) {
	tests := []struct {
		name string
		ds   model.DataSource
		err  string
	}{
		{"ok", model.DataSource{Type: "table", Table: "tasks", Columns: []string{"spent_hours"}, Filters: map[string]any{"status": "done"}, TimeColumn: "created_at"}, ""},
		{"static", model.DataSource{Type: "static", Values: map[string][]float64{"x": {1}}}, ""},
		{"empty static", model.DataSource{Type: "static"}, "no values"},
		{"unknown type", model.DataSource{Type: "sql"}, "unknown data source type"},
		{"table not whitelisted", model.DataSource{Type: "table", Table: "users", Columns: []string{"id"}}, "not readable"},
		{"column not numeric", model.DataSource{Type: "table", Table: "tasks", Columns: []string{"title"}}, "not a readable numeric column"},
		{"filter not allowed", model.DataSource{Type: "table", Table: "tasks", Columns: []string{"id"}, Filters: map[string]any{"title": "x"}}, "cannot be filtered"},
		{"bad time column", model.DataSource{Type: "table", Table: "tasks", Columns: []string{"id"}, TimeColumn: "title"}, "not a time column"},
		{"no columns", model.DataSource{Type: "table", Table: "tasks"}, "no columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataSource(tt.ds)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestBuildInputQuery(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	ds := model.DataSource{
		Type:       "table",
		Table:      "tasks",
		Columns:    []string{"spent_hours", "estimated_hours"},
		Filters:    map[string]any{"status": "done", "priority": []any{"high", "urgent"}},
		TimeColumn: "completed_at",
	}
	stmt, args, err := buildInputQuery(ds, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "spent_hours"::float8, "estimated_hours"::float8 FROM "tasks" `+
		`WHERE "priority" IN ? AND "status" = ? AND "completed_at" >= ? AND "completed_at" < ? ORDER BY 1`, stmt)
	assert.Equal(t, []any{[]any{"high", "urgent"}, "done", from, to}, args)

	_, _, err = buildInputQuery(model.DataSource{Type: "table", Table: "users", Columns: []string{"id"}}, nil, nil)
	assert.Error(t, err)
}

func TestTaskFactsQuery(t *testing.T) {
	org, user := uint64(3), uint64(9)
	stmt, args := taskFactsQuery(model.ReportFilter{
		OrganizationId: &org,
		UserId:         &user,
		Statuses:       []string{"done"},
	})
	assert.Contains(t, stmt, "JOIN users u ON u.id = COALESCE(t.executor_id, t.owner_id)")
	assert.Contains(t, stmt, "WHERE u.organization_id = ? AND (t.owner_id = ? OR t.executor_id = ?) AND t.status IN ?")
	assert.Equal(t, []any{org, user, user, []string{"done"}}, args)

	stmt, args = taskFactsQuery(model.ReportFilter{})
	assert.NotContains(t, stmt, "WHERE")
	assert.Empty(t, args)
}

func TestProjectFactsQuery(t *testing.T) {
	stmt, args := projectFactsQuery(model.ReportFilter{Statuses: []string{"active"}})
	assert.Contains(t, stmt, "WHERE p.status::text IN ?")
	assert.Contains(t, stmt, "GROUP BY p.id")
	assert.Equal(t, []any{[]string{"active"}}, args)
}
