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

import "time"

// ReportFilter scopes a report. Nil fields do not filter.
type ReportFilter struct {
	From           *time.Time `json:"from,omitempty" query:"from"`
	To             *time.Time `json:"to,omitempty" query:"to"`
	OrganizationId *uint64    `json:"organizationId,omitempty" query:"organizationId"`
	DepartmentId   *uint64    `json:"departmentId,omitempty" query:"departmentId"`
	ProjectId      *uint64    `json:"projectId,omitempty" query:"projectId"`
	UserId         *uint64    `json:"userId,omitempty" query:"userId"`
	Statuses       []string   `json:"statuses,omitempty" query:"statuses"`
	Priorities     []string   `json:"priorities,omitempty" query:"priorities"`
	Types          []string   `json:"types,omitempty" query:"types"`
}

// TaskFact is one task joined with the user it is assigned to (executor,
// falling back to owner) and that user's department.
type TaskFact struct {
	TaskId         uint64     `gorm:"column:task_id"`
	Title          string     `gorm:"column:title"`
	Status         string     `gorm:"column:status"`
	Priority       string     `gorm:"column:priority"`
	Type           string     `gorm:"column:type"`
	ProjectId      *uint64    `gorm:"column:project_id"`
	AssigneeId     uint64     `gorm:"column:assignee_id"`
	AssigneeName   string     `gorm:"column:assignee_name"`
	DepartmentId   *uint64    `gorm:"column:department_id"`
	DepartmentName *string    `gorm:"column:department_name"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
	DueDate        *time.Time `gorm:"column:due_date"`
	EstimatedHours *float64   `gorm:"column:estimated_hours"`
	SpentHours     float64    `gorm:"column:spent_hours"`
}

type ProjectFact struct {
	ProjectId   uint64     `gorm:"column:project_id"`
	Name        string     `gorm:"column:name"`
	Status      string     `gorm:"column:status"`
	Priority    string     `gorm:"column:priority"`
	Progress    int        `gorm:"column:progress"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	TaskTotal   int64      `gorm:"column:task_total"`
	TaskDone    int64      `gorm:"column:task_done"`
	SpentHours  float64    `gorm:"column:spent_hours"`
}
