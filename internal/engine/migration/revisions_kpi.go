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

package migration

import (
	"github.com/go-arcade/workhub/pkg/migrate"
)

func kpiRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevKpi,
		Parents:     []string{RevDocuments},
		Description: "kpi definitions and calculations",
		Upgrade: []migrate.Op{
			migrate.CreateTable{
				Name: "kpis",
				Columns: table(
					col("name", "VARCHAR(255)"),
					opt("description", "TEXT"),
					col("formula", "TEXT"),
					col("data_source", "JSONB"),
					opt("target_value", "DOUBLE PRECISION"),
					def("warning_band", "DOUBLE PRECISION", "0.25"),
					def("trend_epsilon", "DOUBLE PRECISION", "0"),
					def("direction", "VARCHAR(32)", "'higher_is_better'"),
					opt("unit", "VARCHAR(64)"),
					opt("category", "VARCHAR(64)"),
					def("is_active", "BOOLEAN", "true"),
					col("created_by", "BIGINT"),
					opt("organization_id", "BIGINT"),
					opt("department_id", "BIGINT"),
					opt("last_calculation_at", "TIMESTAMPTZ"),
					opt("last_status", "VARCHAR(32)"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_kpis_creator", "created_by", "users", migrate.Restrict),
					fk("fk_kpis_organization", "organization_id", "organizations", migrate.SetNull),
					fk("fk_kpis_department", "department_id", "departments", migrate.SetNull),
				},
			},
			migrate.CreateTable{
				Name: "kpi_calculations",
				Columns: table(
					col("kpi_id", "BIGINT"),
					col("calculation_id", "VARCHAR(32)"),
					opt("value", "DOUBLE PRECISION"),
					opt("target_value", "DOUBLE PRECISION"),
					opt("previous_value", "DOUBLE PRECISION"),
					def("trend", "VARCHAR(16)", "'unknown'"),
					col("status", "VARCHAR(16)"),
					def("metadata", "JSONB", "'{}'"),
					def("insights", "JSONB", "'{}'"),
					opt("window_start", "TIMESTAMPTZ"),
					opt("window_end", "TIMESTAMPTZ"),
					def("calculated_at", "TIMESTAMPTZ", "now()"),
				),
				Uniques:     []migrate.Unique{{Name: "uq_kpi_calculations_calculation_id", Columns: []string{"calculation_id"}}},
				ForeignKeys: []migrate.ForeignKey{fk("fk_kpi_calculations_kpi", "kpi_id", "kpis", migrate.Cascade)},
			},
			index("idx_kpi_calculations_kpi_at", "kpi_calculations", "kpi_id", "calculated_at"),
			migrate.CreateTable{
				Name: "kpi_templates",
				Columns: table(
					col("name", "VARCHAR(255)"),
					opt("description", "TEXT"),
					col("formula", "TEXT"),
					col("data_source", "JSONB"),
					opt("target_value", "DOUBLE PRECISION"),
					def("warning_band", "DOUBLE PRECISION", "0.25"),
					def("direction", "VARCHAR(32)", "'higher_is_better'"),
					opt("unit", "VARCHAR(64)"),
					opt("category", "VARCHAR(64)"),
				),
				Uniques: []migrate.Unique{{Name: "uq_kpi_templates_name", Columns: []string{"name"}}},
			},
			migrate.CreateTable{
				Name: "kpi_notifications",
				Columns: table(
					col("kpi_id", "BIGINT"),
					col("calculation_id", "VARCHAR(32)"),
					col("status", "VARCHAR(16)"),
					opt("previous_status", "VARCHAR(16)"),
					col("message", "TEXT"),
					def("is_read", "BOOLEAN", "false"),
					opt("delivered_at", "TIMESTAMPTZ"),
				),
				ForeignKeys: []migrate.ForeignKey{fk("fk_kpi_notifications_kpi", "kpi_id", "kpis", migrate.Cascade)},
			},
			index("idx_kpi_notifications_kpi", "kpi_notifications", "kpi_id"),
			migrate.CreateTable{
				Name: "kpi_schedules",
				Columns: table(
					col("kpi_id", "BIGINT"),
					col("cron_expression", "VARCHAR(128)"),
					def("timeout_seconds", "INTEGER", "60"),
					def("is_active", "BOOLEAN", "true"),
					opt("last_run_at", "TIMESTAMPTZ"),
				),
				ForeignKeys: []migrate.ForeignKey{fk("fk_kpi_schedules_kpi", "kpi_id", "kpis", migrate.Cascade)},
			},
		},
		Downgrade: drop("kpi_schedules", "kpi_notifications", "kpi_templates", "kpi_calculations", "kpis"),
	}
}

func taskTrackingRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevTaskTracking,
		Parents:     []string{RevKpi},
		Description: "task tracking fields",
		Upgrade: []migrate.Op{
			migrate.AddColumn{Table: "tasks", Column: def("type", "VARCHAR(32)", "'task'")},
			migrate.AddColumn{Table: "tasks", Column: opt("due_date", "TIMESTAMPTZ")},
			migrate.AddColumn{Table: "tasks", Column: opt("completed_at", "TIMESTAMPTZ")},
			migrate.AddColumn{Table: "tasks", Column: opt("estimated_hours", "NUMERIC(10,2)")},
			migrate.AddColumn{Table: "tasks", Column: def("spent_hours", "NUMERIC(10,2)", "0")},
			index("idx_tasks_due_date", "tasks", "due_date"),
		},
		Downgrade: []migrate.Op{
			migrate.DropIndex{Name: "idx_tasks_due_date"},
			migrate.DropColumn{Table: "tasks", Column: "spent_hours"},
			migrate.DropColumn{Table: "tasks", Column: "estimated_hours"},
			migrate.DropColumn{Table: "tasks", Column: "completed_at"},
			migrate.DropColumn{Table: "tasks", Column: "due_date"},
			migrate.DropColumn{Table: "tasks", Column: "type"},
		},
	}
}
