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
	"strings"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type IReportRepository interface {
	TaskFacts(ctx context.Context, f model.ReportFilter) ([]model.TaskFact, error)
	ProjectFacts(ctx context.Context, f model.ReportFilter) ([]model.ProjectFact, error)
}

type ReportRepo struct {
	database.IDatabase
}

func NewReportRepo(db database.IDatabase) IReportRepository {
	return &ReportRepo{IDatabase: db}
}

const taskFactsSelect = `SELECT t.id AS task_id, t.title, t.status, t.priority, t.type, t.project_id,
	u.id AS assignee_id, u.username AS assignee_name,
	u.department_id, d.name AS department_name,
	t.created_at, t.completed_at, t.due_date, t.estimated_hours::float8 AS estimated_hours, t.spent_hours::float8 AS spent_hours
FROM tasks t
JOIN users u ON u.id = COALESCE(t.executor_id, t.owner_id)
LEFT JOIN departments d ON d.id = u.department_id`

// taskFactsQuery renders the task fact query for f. The window applies to
// the task creation time.
func taskFactsQuery(f model.ReportFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.From != nil {
		where = append(where, "t.created_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "t.created_at < ?")
		args = append(args, *f.To)
	}
	if f.OrganizationId != nil {
		where = append(where, "u.organization_id = ?")
		args = append(args, *f.OrganizationId)
	}
	if f.DepartmentId != nil {
		where = append(where, "u.department_id = ?")
		args = append(args, *f.DepartmentId)
	}
	if f.ProjectId != nil {
		where = append(where, "t.project_id = ?")
		args = append(args, *f.ProjectId)
	}
	if f.UserId != nil {
		where = append(where, "(t.owner_id = ? OR t.executor_id = ?)")
		args = append(args, *f.UserId, *f.UserId)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "t.status IN ?")
		args = append(args, f.Statuses)
	}
	if len(f.Priorities) > 0 {
		where = append(where, "t.priority IN ?")
		args = append(args, f.Priorities)
	}
	if len(f.Types) > 0 {
		where = append(where, "t.type IN ?")
		args = append(args, f.Types)
	}
	stmt := taskFactsSelect
	if len(where) > 0 {
		stmt += "\nWHERE " + strings.Join(where, " AND ")
	}
	return stmt + "\nORDER BY t.id", args
}

func (r *ReportRepo) TaskFacts(ctx context.Context, f model.ReportFilter) ([]model.TaskFact, error) {
	stmt, args := taskFactsQuery(f)
	var facts []model.TaskFact
	err := database.ReadDB(ctx, r).Raw(stmt, args...).Scan(&facts).Error
	return facts, err
}

const projectFactsSelect = `SELECT p.id AS project_id, p.name, p.status, p.priority, p.progress, p.due_date, p.completed_at,
	COUNT(t.id) AS task_total,
	COUNT(t.id) FILTER (WHERE t.status = 'done') AS task_done,
	COALESCE(SUM(t.spent_hours), 0)::float8 AS spent_hours
FROM projects p
LEFT JOIN tasks t ON t.project_id = p.id`

func projectFactsQuery(f model.ReportFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.From != nil {
		where = append(where, "p.created_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "p.created_at < ?")
		args = append(args, *f.To)
	}
	if f.OrganizationId != nil {
		where = append(where, "p.organization_id = ?")
		args = append(args, *f.OrganizationId)
	}
	if f.DepartmentId != nil {
		where = append(where, "p.department_id = ?")
		args = append(args, *f.DepartmentId)
	}
	if f.ProjectId != nil {
		where = append(where, "p.id = ?")
		args = append(args, *f.ProjectId)
	}
	if f.UserId != nil {
		where = append(where, "p.manager_id = ?")
		args = append(args, *f.UserId)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "p.status::text IN ?")
		args = append(args, f.Statuses)
	}
	if len(f.Priorities) > 0 {
		where = append(where, "p.priority::text IN ?")
		args = append(args, f.Priorities)
	}
	stmt := projectFactsSelect
	if len(where) > 0 {
		stmt += "\nWHERE " + strings.Join(where, " AND ")
	}
	return stmt + "\nGROUP BY p.id\nORDER BY p.id", args
}

func (r *ReportRepo) ProjectFacts(ctx context.Context, f model.ReportFilter) ([]model.ProjectFact, error) {
	stmt, args := projectFactsQuery(f)
	var facts []model.ProjectFact
	err := database.ReadDB(ctx, r).Raw(stmt, args...).Scan(&facts).Error
	return facts, err
}

type IStatisticsRepository interface {
	Count(ctx context.Context, table string) (int64, error)
	CountBy(ctx context.Context, table, column string) (map[string]int64, error)
}

// statisticsTables whitelists the tables and group columns statistics read.
var statisticsTables = map[string]string{
	"users":     "",
	"teams":     "status",
	"projects":  "status",
	"tasks":     "status",
	"documents": "status",
	"kpis":      "",
}

type StatisticsRepo struct {
	database.IDatabase
}

func NewStatisticsRepo(db database.IDatabase) IStatisticsRepository {
	return &StatisticsRepo{IDatabase: db}
}

func (r *StatisticsRepo) Count(ctx context.Context, table string) (int64, error) {
	if _, ok := statisticsTables[table]; !ok {
		return 0, errNotFound
	}
	var n int64
	db := database.ReadDB(ctx, r).Table(table)
	if table == "documents" {
		db = db.Where("is_latest")
	}
	err := db.Count(&n).Error
	return n, err
}

func (r *StatisticsRepo) CountBy(ctx context.Context, table, column string) (map[string]int64, error) {
	if col, ok := statisticsTables[table]; !ok || col != column || col == "" {
		return nil, errNotFound
	}
	var rows []struct {
		Key   string `gorm:"column:key"`
		Total int64  `gorm:"column:total"`
	}
	db := database.ReadDB(ctx, r).Table(table).
		Select(column + "::text AS key, COUNT(*) AS total")
	if table == "documents" {
		db = db.Where("is_latest")
	}
	if err := db.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Total
	}
	return out, nil
}
