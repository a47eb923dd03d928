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

type IProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id uint64) (*model.Project, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Project, error)
	List(ctx context.Context, q *model.ProjectQuery) ([]*model.Project, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error

	AddTeam(ctx context.Context, pt *model.ProjectTeam) error
	RemoveTeam(ctx context.Context, projectId, teamId uint64) error
	ListTeams(ctx context.Context, projectId uint64) ([]*model.ProjectTeam, error)
}

type ProjectRepo struct {
	*CrudRepo[model.Project]
}

func NewProjectRepo(db database.IDatabase) IProjectRepository {
	return &ProjectRepo{CrudRepo: NewCrudRepo[model.Project](db)}
}

func (r *ProjectRepo) List(ctx context.Context, q *model.ProjectQuery) ([]*model.Project, int64, error) {
	db := r.DB(ctx).Model(&model.Project{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		db = db.Where("priority = ?", q.Priority)
	}
	if q.OrganizationId != nil {
		db = db.Where("organization_id = ?", *q.OrganizationId)
	}
	if q.DepartmentId != nil {
		db = db.Where("department_id = ?", *q.DepartmentId)
	}
	if q.ManagerId != nil {
		db = db.Where("manager_id = ?", *q.ManagerId)
	}
	if q.UpdatedBy != nil {
		db = db.Where("updated_by = ?", *q.UpdatedBy)
	}
	if q.StartFrom != nil {
		db = db.Where("start_date >= ?", *q.StartFrom)
	}
	if q.DueBefore != nil {
		db = db.Where("due_date < ?", *q.DueBefore)
	}
	return paginate[model.Project](db, q.PageReq)
}

func (r *ProjectRepo) AddTeam(ctx context.Context, pt *model.ProjectTeam) error {
	return r.DB(ctx).Create(pt).Error
}

func (r *ProjectRepo) RemoveTeam(ctx context.Context, projectId, teamId uint64) error {
	res := r.DB(ctx).Where("project_id = ? AND team_id = ?", projectId, teamId).Delete(&model.ProjectTeam{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

func (r *ProjectRepo) ListTeams(ctx context.Context, projectId uint64) ([]*model.ProjectTeam, error) {
	var list []*model.ProjectTeam
	err := r.DB(ctx).Where("project_id = ?", projectId).Order("id").Find(&list).Error
	return list, err
}
