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

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
	TaskCancelled  = "cancelled"

	TaskTypeTask    = "task"
	TaskTypeBug     = "bug"
	TaskTypeFeature = "feature"
	TaskTypeChore   = "chore"
)

var (
	TaskStatuses   = []string{TaskTodo, TaskInProgress, TaskReview, TaskDone, TaskCancelled}
	TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityUrgent}
	TaskTypes      = []string{TaskTypeTask, TaskTypeBug, TaskTypeFeature, TaskTypeChore}
)

type Task struct {
	BaseModel
	Title          string     `gorm:"column:title" json:"title"`
	Description    *string    `gorm:"column:description" json:"description,omitempty"`
	Status         string     `gorm:"column:status" json:"status"`
	Priority       string     `gorm:"column:priority" json:"priority"`
	Type           string     `gorm:"column:type" json:"type"`
	OwnerId        uint64     `gorm:"column:owner_id" json:"ownerId"`
	ExecutorId     *uint64    `gorm:"column:executor_id" json:"executorId,omitempty"`
	ProjectId      *uint64    `gorm:"column:project_id" json:"projectId,omitempty"`
	DueDate        *time.Time `gorm:"column:due_date" json:"dueDate,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	EstimatedHours *float64   `gorm:"column:estimated_hours" json:"estimatedHours,omitempty"`
	SpentHours     float64    `gorm:"column:spent_hours" json:"spentHours"`
}

func (Task) TableName() string {
	return "tasks"
}

type CreateTaskReq struct {
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Type           string     `json:"type"`
	OwnerId        uint64     `json:"ownerId"`
	ExecutorId     *uint64    `json:"executorId"`
	ProjectId      *uint64    `json:"projectId"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
}

type UpdateTaskReq struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	Type           *string    `json:"type"`
	ExecutorId     *uint64    `json:"executorId"`
	ProjectId      *uint64    `json:"projectId"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
	SpentHours     *float64   `json:"spentHours"`
}

type TaskQuery struct {
	PageReq
	Status     string  `query:"status"`
	Priority   string  `query:"priority"`
	Type       string  `query:"type"`
	OwnerId    *uint64 `query:"ownerId"`
	ExecutorId *uint64 `query:"executorId"`
	ProjectId  *uint64 `query:"projectId"`
}
