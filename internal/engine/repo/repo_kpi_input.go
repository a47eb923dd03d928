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
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type inputTable struct {
	numeric []string
	filters []string
	times   []string
}

// kpiInputTables is the whitelist of tables and columns a KPI data source
// may read.
var kpiInputTables = map[string]inputTable{
	"tasks": {
		numeric: []string{"id", "estimated_hours", "spent_hours"},
		filters: []string{"status", "priority", "type", "project_id", "owner_id", "executor_id"},
		times:   []string{"created_at", "updated_at", "completed_at", "due_date"},
	},
	"projects": {
		numeric: []string{"id", "progress", "budget"},
		filters: []string{"status", "priority", "organization_id", "department_id", "manager_id"},
		times:   []string{"created_at", "updated_at", "completed_at", "start_date", "due_date"},
	},
	"documents": {
		numeric: []string{"id", "version"},
		filters: []string{"status", "type", "priority", "visibility", "is_latest", "organization_id", "department_id"},
		times:   []string{"created_at", "updated_at", "expires_at"},
	},
	"team_members": {
		numeric: []string{"id"},
		filters: []string{"team_id", "role", "is_active"},
		times:   []string{"joined_at", "left_at", "created_at"},
	},
	"kpi_calculations": {
		numeric: []string{"value"},
		filters: []string{"kpi_id", "status", "trend"},
		times:   []string{"calculated_at"},
	},
}

// ValidateDataSource checks a binding against the whitelist.
func ValidateDataSource(ds model.DataSource) error {
	switch ds.Type {
	case model.DataSourceStatic:
		if len(ds.Values) == 0 {
			return fmt.Errorf("static data source has no values")
		}
		return nil
	case model.DataSourceTable:
	default:
		return fmt.Errorf("unknown data source type %q", ds.Type)
	}
	t, ok := kpiInputTables[ds.Table]
	if !ok {
		return fmt.Errorf("table %q is not readable", ds.Table)
	}
	if len(ds.Columns) == 0 {
		return fmt.Errorf("data source declares no columns")
	}
	for _, c := range ds.Columns {
		if !contains(t.numeric, c) {
			return fmt.Errorf("column %s.%s is not a readable numeric column", ds.Table, c)
		}
	}
	for c := range ds.Filters {
		if !contains(t.filters, c) {
			return fmt.Errorf("column %s.%s cannot be filtered", ds.Table, c)
		}
	}
	if ds.TimeColumn != "" && !contains(t.times, ds.TimeColumn) {
		return fmt.Errorf("column %s.%s is not a time column", ds.Table, ds.TimeColumn)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// buildInputQuery renders the select for a validated table data source. The
// window is [from, to) on the time column.
func buildInputQuery(ds model.DataSource, from, to *time.Time) (string, []any, error) {
	if err := ValidateDataSource(ds); err != nil {
		return "", nil, err
	}
	cols := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = fmt.Sprintf("%q::float8", c)
	}
	var (
		where []string
		args  []any
	)
	filterCols := make([]string, 0, len(ds.Filters))
	for c := range ds.Filters {
		filterCols = append(filterCols, c)
	}
	sort.Strings(filterCols)
	for _, c := range filterCols {
		switch v := ds.Filters[c].(type) {
		case []any:
			where = append(where, fmt.Sprintf("%q IN ?", c))
			args = append(args, v)
		case nil:
			where = append(where, fmt.Sprintf("%q IS NULL", c))
		default:
			where = append(where, fmt.Sprintf("%q = ?", c))
			args = append(args, v)
		}
	}
	if ds.TimeColumn != "" {
		if from != nil {
			where = append(where, fmt.Sprintf("%q >= ?", ds.TimeColumn))
			args = append(args, *from)
		}
		if to != nil {
			where = append(where, fmt.Sprintf("%q < ?", ds.TimeColumn))
			args = append(args, *to)
		}
	}
	stmt := fmt.Sprintf("SELECT %s FROM %q", strings.Join(cols, ", "), ds.Table)
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	return stmt + " ORDER BY 1", args, nil
}

type IKpiInputRepository interface {
	// Fetch loads one series per declared identifier. NULL values are skipped.
	Fetch(ctx context.Context, ds model.DataSource, from, to *time.Time) (map[string][]float64, error)
}

type KpiInputRepo struct {
	database.IDatabase
}

func NewKpiInputRepo(db database.IDatabase) IKpiInputRepository {
	return &KpiInputRepo{IDatabase: db}
}

func (r *KpiInputRepo) Fetch(ctx context.Context, ds model.DataSource, from, to *time.Time) (map[string][]float64, error) {
	if ds.Type == model.DataSourceStatic {
		if err := ValidateDataSource(ds); err != nil {
			return nil, err
		}
		out := make(map[string][]float64, len(ds.Values))
		for k, v := range ds.Values {
			out[k] = append([]float64(nil), v...)
		}
		return out, nil
	}

	stmt, args, err := buildInputQuery(ds, from, to)
	if err != nil {
		return nil, err
	}
	rows, err := database.ReadDB(ctx, r).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]float64, len(ds.Columns))
	for _, c := range ds.Columns {
		out[c] = []float64{}
	}
	vals := make([]sql.NullFloat64, len(ds.Columns))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, c := range ds.Columns {
			if vals[i].Valid {
				out[c] = append(out[c], vals[i].Float64)
			}
		}
	}
	return out, rows.Err()
}
