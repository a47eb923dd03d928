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

func baseRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevBase,
		Description: "dashboards, users and tasks",
		Upgrade: []migrate.Op{
			migrate.CreateTable{
				Name:    "flows",
				Columns: table(col("name", "VARCHAR(255)"), opt("description", "TEXT")),
			},
			migrate.CreateTable{
				Name: "users",
				Columns: table(
					col("username", "VARCHAR(64)"),
					col("email", "VARCHAR(255)"),
					col("password_hash", "VARCHAR(255)"),
					def("is_active", "BOOLEAN", "true"),
					def("role", "VARCHAR(32)", "'member'"),
					opt("full_name", "VARCHAR(255)"),
				),
				Uniques: []migrate.Unique{
					{Name: "uq_users_username", Columns: []string{"username"}},
					{Name: "uq_users_email", Columns: []string{"email"}},
				},
			},
			migrate.CreateTable{
				Name:    "widget_types",
				Columns: table(col("name", "VARCHAR(255)"), opt("description", "TEXT")),
				Uniques: []migrate.Unique{{Name: "uq_widget_types_name", Columns: []string{"name"}}},
			},
			migrate.CreateTable{
				Name:        "dashboards",
				Columns:     table(col("owner_id", "BIGINT"), col("title", "VARCHAR(255)"), opt("description", "TEXT")),
				ForeignKeys: []migrate.ForeignKey{fk("fk_dashboards_owner", "owner_id", "users", migrate.Cascade)},
			},
			migrate.CreateTable{
				Name:        "group_users",
				Columns:     table(col("name", "VARCHAR(255)"), col("owner_id", "BIGINT")),
				ForeignKeys: []migrate.ForeignKey{fk("fk_group_users_owner", "owner_id", "users", migrate.Cascade)},
			},
			migrate.CreateTable{
				Name: "tasks",
				Columns: table(
					col("title", "VARCHAR(255)"),
					opt("description", "TEXT"),
					def("status", "VARCHAR(32)", "'todo'"),
					def("priority", "VARCHAR(32)", "'medium'"),
					col("owner_id", "BIGINT"),
					opt("executor_id", "BIGINT"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_tasks_owner", "owner_id", "users", migrate.Restrict),
					fk("fk_tasks_executor", "executor_id", "users", migrate.SetNull),
				},
			},
			migrate.CreateTable{
				Name: "access_dashboards",
				Columns: table(
					col("dashboard_id", "BIGINT"),
					col("user_id", "BIGINT"),
					def("access_level", "VARCHAR(32)", "'view'"),
				),
				Uniques: []migrate.Unique{{Name: "uq_access_dashboards", Columns: []string{"dashboard_id", "user_id"}}},
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_access_dashboards_dashboard", "dashboard_id", "dashboards", migrate.Cascade),
					fk("fk_access_dashboards_user", "user_id", "users", migrate.Cascade),
				},
			},
			migrate.CreateTable{
				Name:        "dashboard_datas",
				Columns:     table(col("dashboard_id", "BIGINT"), col("key", "VARCHAR(255)"), def("data", "JSONB", "'{}'")),
				ForeignKeys: []migrate.ForeignKey{fk("fk_dashboard_datas_dashboard", "dashboard_id", "dashboards", migrate.Cascade)},
			},
			migrate.CreateTable{
				Name:    "flow_dashboards",
				Columns: table(col("flow_id", "BIGINT"), col("dashboard_id", "BIGINT"), def("position", "INTEGER", "0")),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_flow_dashboards_flow", "flow_id", "flows", migrate.Cascade),
					fk("fk_flow_dashboards_dashboard", "dashboard_id", "dashboards", migrate.Cascade),
				},
			},
			migrate.CreateTable{
				Name:    "user_groups",
				Columns: table(col("group_id", "BIGINT"), col("user_id", "BIGINT")),
				Uniques: []migrate.Unique{{Name: "uq_user_groups", Columns: []string{"group_id", "user_id"}}},
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_user_groups_group", "group_id", "group_users", migrate.Cascade),
					fk("fk_user_groups_user", "user_id", "users", migrate.Cascade),
				},
			},
			migrate.CreateTable{
				Name: "widgets",
				Columns: table(
					col("dashboard_id", "BIGINT"),
					col("widget_type_id", "BIGINT"),
					col("title", "VARCHAR(255)"),
					def("config", "JSONB", "'{}'"),
					def("position", "INTEGER", "0"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_widgets_dashboard", "dashboard_id", "dashboards", migrate.Cascade),
					fk("fk_widgets_widget_type", "widget_type_id", "widget_types", migrate.Restrict),
				},
			},
			index("idx_tasks_status", "tasks", "status"),
			index("idx_tasks_owner", "tasks", "owner_id"),
			index("idx_tasks_executor", "tasks", "executor_id"),
		},
		Downgrade: drop(
			"widgets", "user_groups", "flow_dashboards", "dashboard_datas", "access_dashboards",
			"tasks", "group_users", "dashboards", "widget_types", "users", "flows",
		),
	}
}

func organizationsRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevOrganizations,
		Parents:     []string{RevBase},
		Description: "organizations and departments",
		Upgrade: []migrate.Op{
			migrate.CreateTable{
				Name:    "organizations",
				Columns: table(col("name", "VARCHAR(255)"), opt("description", "TEXT")),
				Uniques: []migrate.Unique{{Name: "uq_organizations_name", Columns: []string{"name"}}},
			},
			migrate.CreateTable{
				Name:        "departments",
				Columns:     table(col("organization_id", "BIGINT"), col("name", "VARCHAR(255)")),
				Uniques:     []migrate.Unique{{Name: "uq_departments_org_name", Columns: []string{"organization_id", "name"}}},
				ForeignKeys: []migrate.ForeignKey{fk("fk_departments_organization", "organization_id", "organizations", migrate.Cascade)},
			},
			migrate.AddColumn{Table: "users", Column: opt("organization_id", "BIGINT")},
			migrate.AddColumn{Table: "users", Column: opt("department_id", "BIGINT")},
			migrate.CreateForeignKey{Table: "users", ForeignKey: fk("fk_users_organization", "organization_id", "organizations", migrate.SetNull)},
			migrate.CreateForeignKey{Table: "users", ForeignKey: fk("fk_users_department", "department_id", "departments", migrate.SetNull)},
		},
		Downgrade: []migrate.Op{
			migrate.DropConstraint{Table: "users", Name: "fk_users_department"},
			migrate.DropConstraint{Table: "users", Name: "fk_users_organization"},
			migrate.DropColumn{Table: "users", Column: "department_id"},
			migrate.DropColumn{Table: "users", Column: "organization_id"},
			migrate.DropTable{Name: "departments"},
			migrate.DropTable{Name: "organizations"},
		},
	}
}

func projectsRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevProjects,
		Parents:     []string{RevOrganizations},
		Description: "projects",
		Upgrade: []migrate.Op{
			migrate.CreateEnum{Name: "projectstatus", Values: []string{"planning", "active", "on_hold", "completed", "cancelled", "archived"}},
			migrate.CreateEnum{Name: "projectpriority", Values: []string{"low", "medium", "high", "critical", "urgent"}},
			migrate.CreateTable{
				Name: "projects",
				Columns: table(
					col("name", "VARCHAR(255)"),
					opt("description", "TEXT"),
					enum("status", "projectstatus", "'planning'"),
					enum("priority", "projectpriority", "'medium'"),
					opt("start_date", "TIMESTAMPTZ"),
					opt("due_date", "TIMESTAMPTZ"),
					opt("completed_at", "TIMESTAMPTZ"),
					opt("organization_id", "BIGINT"),
					opt("department_id", "BIGINT"),
					opt("manager_id", "BIGINT"),
					opt("budget", "NUMERIC(14,2)"),
					def("progress", "INTEGER", "0"),
					def("tags", "JSONB", "'[]'"),
					def("custom_fields", "JSONB", "'{}'"),
					opt("updated_by", "BIGINT"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_projects_organization", "organization_id", "organizations", migrate.SetNull),
					fk("fk_projects_department", "department_id", "departments", migrate.SetNull),
					fk("fk_projects_manager", "manager_id", "users", migrate.SetNull),
					fk("fk_projects_updated_by", "updated_by", "users", migrate.SetNull),
				},
			},
			index("idx_projects_status", "projects", "status"),
			index("idx_projects_priority", "projects", "priority"),
			index("idx_projects_organization", "projects", "organization_id"),
			index("idx_projects_department", "projects", "department_id"),
			index("idx_projects_manager", "projects", "manager_id"),
			index("idx_projects_dates", "projects", "start_date", "due_date"),
			index("idx_projects_updated_by", "projects", "updated_by"),
			migrate.Exec{Statement: `ALTER TABLE "projects" ADD CONSTRAINT "ck_projects_progress" CHECK (progress BETWEEN 0 AND 100)`},
			migrate.AddColumn{Table: "tasks", Column: opt("project_id", "BIGINT")},
			migrate.CreateForeignKey{Table: "tasks", ForeignKey: fk("fk_tasks_project", "project_id", "projects", migrate.SetNull)},
			index("idx_tasks_project", "tasks", "project_id"),
		},
		Downgrade: []migrate.Op{
			migrate.DropColumn{Table: "tasks", Column: "project_id"},
			migrate.DropTable{Name: "projects"},
			migrate.DropEnum{Name: "projectpriority"},
			migrate.DropEnum{Name: "projectstatus"},
		},
	}
}

func teamsRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevTeams,
		Parents:     []string{RevProjects},
		Description: "team management",
		Upgrade: []migrate.Op{
			migrate.CreateTable{
				Name: "teams",
				Columns: table(
					col("name", "VARCHAR(255)"),
					opt("description", "TEXT"),
					def("status", "VARCHAR(32)", "'active'"),
					def("is_public", "BOOLEAN", "false"),
					opt("auto_disband_at", "TIMESTAMPTZ"),
					opt("disbanded_at", "TIMESTAMPTZ"),
					opt("organization_id", "BIGINT"),
					opt("department_id", "BIGINT"),
					def("tags", "JSONB", "'[]'"),
					def("custom_fields", "JSONB", "'{}'"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_teams_organization", "organization_id", "organizations", migrate.SetNull),
					fk("fk_teams_department", "department_id", "departments", migrate.SetNull),
				},
			},
			migrate.CreateTable{
				Name: "team_members",
				Columns: table(
					col("team_id", "BIGINT"),
					col("user_id", "BIGINT"),
					def("role", "VARCHAR(32)", "'member'"),
					def("permissions", "JSONB", "'{}'"),
					def("is_active", "BOOLEAN", "true"),
					def("is_muted", "BOOLEAN", "false"),
					def("notifications_enabled", "BOOLEAN", "true"),
					def("sound_enabled", "BOOLEAN", "true"),
					def("joined_at", "TIMESTAMPTZ", "now()"),
					opt("left_at", "TIMESTAMPTZ"),
					opt("last_seen_at", "TIMESTAMPTZ"),
					opt("last_read_at", "TIMESTAMPTZ"),
				),
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_team_members_team", "team_id", "teams", migrate.Cascade),
					fk("fk_team_members_user", "user_id", "users", migrate.Cascade),
				},
			},
			migrate.CreateIndex{Index: migrate.Index{
				Name:    "uq_team_members_active",
				Table:   "team_members",
				Columns: []string{"team_id", "user_id"},
				Unique:  true,
				Where:   "is_active",
			}},
			index("idx_team_members_user", "team_members", "user_id"),
			index("idx_teams_status", "teams", "status"),
			index("idx_teams_organization", "teams", "organization_id"),
			index("idx_teams_department", "teams", "department_id"),
			index("idx_teams_auto_disband", "teams", "auto_disband_at"),
			index("idx_teams_name", "teams", "name"),
			migrate.CreateTable{
				Name: "project_teams",
				Columns: table(
					col("project_id", "BIGINT"),
					col("team_id", "BIGINT"),
					def("role", "VARCHAR(32)", "'contributor'"),
					def("is_active", "BOOLEAN", "true"),
				),
				Uniques: []migrate.Unique{{Name: "uq_project_teams", Columns: []string{"project_id", "team_id"}}},
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_project_teams_project", "project_id", "projects", migrate.Cascade),
					fk("fk_project_teams_team", "team_id", "teams", migrate.Cascade),
				},
			},
		},
		Downgrade: drop("project_teams", "team_members", "teams"),
	}
}

func favoritesRevision() *migrate.Revision {
	return &migrate.Revision{
		ID:          RevFavorites,
		Parents:     []string{RevProjects},
		Description: "favorite files",
		Upgrade: []migrate.Op{
			migrate.CreateTable{
				Name:    "favorite_files",
				Columns: table(col("user_id", "BIGINT"), col("project_id", "BIGINT"), col("filename", "VARCHAR(512)")),
				Uniques: []migrate.Unique{{Name: "uq_favorite_files", Columns: []string{"user_id", "project_id", "filename"}}},
				ForeignKeys: []migrate.ForeignKey{
					fk("fk_favorite_files_user", "user_id", "users", migrate.Cascade),
					fk("fk_favorite_files_project", "project_id", "projects", migrate.Cascade),
				},
			},
		},
		Downgrade: drop("favorite_files"),
	}
}
