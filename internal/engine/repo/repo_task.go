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

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type ITaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, id uint64) (*model.Task, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Task, error)
	List(ctx context.Context, q *model.TaskQuery) ([]*model.Task, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type TaskRepo struct {
	*CrudRepo[model.Task]
}

func NewTaskRepo(db database.IDatabase) ITaskRepository {
	return &TaskRepo{CrudRepo: NewCrudRepo[model.Task](db)}
}

func (r *TaskRepo) List(ctx context.Context, q *model.TaskQuery) ([]*model.Task, int64, error) {
	db := r.DB(ctx).Model(&model.Task{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		db = db.Where("priority = ?", q.Priority)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.OwnerId != nil {
		db = db.Where("owner_id = ?", *q.OwnerId)
	}
	if q.ExecutorId != nil {
		db = db.Where("executor_id = ?", *q.ExecutorId)
	}
	if q.ProjectId != nil {
		db = db.Where("project_id = ?", *q.ProjectId)
	}
	return paginate[model.Task](db, q.PageReq)
}
