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

package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/go-arcade/workhub/pkg/statemachine"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
	PriorityUrgent   = "urgent"
)

var ProjectPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityUrgent}

type Project struct {
	BaseModel
	Name           string                      `gorm:"column:name" json:"name"`
	Description    *string                     `gorm:"column:description" json:"description,omitempty"`
	Status         statemachine.ProjectStatus  `gorm:"column:status" json:"status"`
	Priority       string                      `gorm:"column:priority" json:"priority"`
	StartDate      *time.Time                  `gorm:"column:start_date" json:"startDate,omitempty"`
	DueDate        *time.Time                  `gorm:"column:due_date" json:"dueDate,omitempty"`
	CompletedAt    *time.Time                  `gorm:"column:completed_at" json:"completedAt,omitempty"`
	OrganizationId *uint64                     `gorm:"column:organization_id" json:"organizationId,omitempty"`
	DepartmentId   *uint64                     `gorm:"column:department_id" json:"departmentId,omitempty"`
	ManagerId      *uint64                     `gorm:"column:manager_id" json:"managerId,omitempty"`
	Budget         *float64                    `gorm:"column:budget" json:"budget,omitempty"`
	Progress       int                         `gorm:"column:progress" json:"progress"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	CustomFields   datatypes.JSONMap           `gorm:"column:custom_fields;type:jsonb" json:"customFields"`
	UpdatedBy      *uint64                     `gorm:"column:updated_by" json:"updatedBy,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectTeam struct {
	BaseModel
	ProjectId uint64 `gorm:"column:project_id" json:"projectId"`
	TeamId    uint64 `gorm:"column:team_id" json:"teamId"`
	Role      string `gorm:"column:role" json:"role"`
	IsActive  bool   `gorm:"column:is_active" json:"isActive"`
}

func (ProjectTeam) TableName() string {
	return "project_teams"
}

type CreateProjectReq struct {
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	Priority       string         `json:"priority"`
	StartDate      *time.Time     `json:"startDate"`
	DueDate        *time.Time     `json:"dueDate"`
	OrganizationId *uint64        `json:"organizationId"`
	DepartmentId   *uint64        `json:"departmentId"`
	ManagerId      *uint64        `json:"managerId"`
	Budget         *float64       `json:"budget"`
	Progress       int            `json:"progress"`
	Tags           []string       `json:"tags"`
	CustomFields   map[string]any `json:"customFields"`
}

type UpdateProjectReq struct {
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	Priority       *string        `json:"priority"`
	StartDate      *time.Time     `json:"startDate"`
	DueDate        *time.Time     `json:"dueDate"`
	OrganizationId *uint64        `json:"organizationId"`
	DepartmentId   *uint64        `json:"departmentId"`
	ManagerId      *uint64        `json:"managerId"`
	Budget         *float64       `json:"budget"`
	Progress       *int           `json:"progress"`
	Tags           []string       `json:"tags"`
	CustomFields   map[string]any `json:"customFields"`
}

type ChangeStatusReq struct {
	Status string `json:"status"`
}

type ProjectQuery struct {
	PageReq
	Status         string  `query:"status"`
	Priority       string  `query:"priority"`
	OrganizationId *uint64 `query:"organizationId"`
	DepartmentId   *uint64 `query:"departmentId"`
	ManagerId      *uint64 `query:"managerId"`
	UpdatedBy      *uint64 `query:"updatedBy"`
	// StartFrom and DueBefore use the (start_date, due_date) index
	StartFrom *time.Time `query:"startFrom"`
	DueBefore *time.Time `query:"dueBefore"`
}

type AssignTeamReq struct {
	TeamId uint64 `json:"teamId"`
	Role   string `json:"role"`
}
