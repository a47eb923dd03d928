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

package service

import (
	"context"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
)

type TaskService struct {
	tx    Transactor
	tasks repo.ITaskRepository
}

func NewTaskService(tx Transactor, tasks repo.ITaskRepository) *TaskService {
	return &TaskService{tx: tx, tasks: tasks}
}

func (s *TaskService) Create(ctx context.Context, p *Principal, req *model.CreateTaskReq) (*model.Task, error) {
	if err := validateName("title", req.Title, 255); err != nil {
		return nil, err
	}
	t := &model.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         orDefault(req.Status, model.TaskTodo),
		Priority:       orDefault(req.Priority, model.PriorityMedium),
		Type:           orDefault(req.Type, model.TaskTypeTask),
		OwnerId:        req.OwnerId,
		ExecutorId:     req.ExecutorId,
		ProjectId:      req.ProjectId,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}
	if t.OwnerId == 0 {
		t.OwnerId = p.UserId
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if t.Status == model.TaskDone {
		at := now()
		t.CompletedAt = &at
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.tasks.Create(ctx, t), "task")
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func validateTask(t *model.Task) error {
	if err := oneOf("status", t.Status, model.TaskStatuses); err != nil {
		return err
	}
	if err := oneOf("priority", t.Priority, model.TaskPriorities); err != nil {
		return err
	}
	if err := oneOf("type", t.Type, model.TaskTypes); err != nil {
		return err
	}
	if t.EstimatedHours != nil && (!finite(*t.EstimatedHours) || *t.EstimatedHours < 0) {
		return errs.Unprocessable("estimatedHours must be a non-negative number")
	}
	return nil
}

func (s *TaskService) Get(ctx context.Context, id uint64) (*model.Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "task")
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, q *model.TaskQuery) (*model.ListResp[*model.Task], error) {
	q.Normalize()
	list, total, err := s.tasks.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "task")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

// Update applies a partial change. completed_at follows the status: set when
// the task becomes done, cleared when it leaves done.
func (s *TaskService) Update(ctx context.Context, id uint64, req *model.UpdateTaskReq) (*model.Task, error) {
	var t *model.Task
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		prev, err := s.tasks.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "task")
		}
		next := *prev
		updates := map[string]any{}
		if req.Title != nil {
			if err := validateName("title", *req.Title, 255); err != nil {
				return err
			}
			next.Title, updates["title"] = *req.Title, *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Status != nil {
			next.Status, updates["status"] = *req.Status, *req.Status
		}
		if req.Priority != nil {
			next.Priority, updates["priority"] = *req.Priority, *req.Priority
		}
		if req.Type != nil {
			next.Type, updates["type"] = *req.Type, *req.Type
		}
		if req.ExecutorId != nil {
			updates["executor_id"] = *req.ExecutorId
		}
		if req.ProjectId != nil {
			updates["project_id"] = *req.ProjectId
		}
		if req.DueDate != nil {
			updates["due_date"] = *req.DueDate
		}
		if req.EstimatedHours != nil {
			next.EstimatedHours, updates["estimated_hours"] = req.EstimatedHours, *req.EstimatedHours
		}
		if req.SpentHours != nil {
			if !finite(*req.SpentHours) || *req.SpentHours < 0 {
				return errs.Unprocessable("spentHours must be a non-negative number")
			}
			updates["spent_hours"] = *req.SpentHours
		}
		if err := validateTask(&next); err != nil {
			return err
		}

		switch {
		case next.Status == model.TaskDone && prev.Status != model.TaskDone:
			updates["completed_at"] = now()
		case next.Status != model.TaskDone && prev.Status == model.TaskDone:
			updates["completed_at"] = nil
		}
		updates["updated_at"] = NextUpdatedAt(prev.UpdatedAt)
		if err := s.tasks.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, "task")
		}
		t, err = s.tasks.Get(ctx, id)
		return errs.FromDB(err, "task")
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.tasks.Delete(ctx, id), "task")
	})
}
