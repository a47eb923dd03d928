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
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/statemachine"
)

type ProjectService struct {
	tx       Transactor
	projects repo.IProjectRepository
	machine  *statemachine.StateMachine[statemachine.ProjectStatus]
}

func NewProjectService(tx Transactor, projects repo.IProjectRepository) *ProjectService {
	return &ProjectService{
		tx:       tx,
		projects: projects,
		machine:  statemachine.NewProjectStateMachine(),
	}
}

func (s *ProjectService) Create(ctx context.Context, p *Principal, req *model.CreateProjectReq) (*model.Project, error) {
	if err := validateName("name", req.Name, 255); err != nil {
		return nil, err
	}
	priority := orDefault(req.Priority, model.PriorityMedium)
	if err := oneOf("priority", priority, model.ProjectPriorities); err != nil {
		return nil, err
	}
	if err := validateProgress(req.Progress); err != nil {
		return nil, err
	}
	if req.StartDate != nil && req.DueDate != nil && req.DueDate.Before(*req.StartDate) {
		return nil, errs.Unprocessable("dueDate precedes startDate")
	}

	pr := &model.Project{
		Name:           req.Name,
		Description:    req.Description,
		Status:         statemachine.ProjectPlanning,
		Priority:       priority,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
		ManagerId:      req.ManagerId,
		Budget:         req.Budget,
		Progress:       req.Progress,
		Tags:           jsonSlice(req.Tags),
		CustomFields:   jsonMap(req.CustomFields),
		UpdatedBy:      &p.UserId,
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.projects.Create(ctx, pr), "project")
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("project created", "projectId", pr.ID, "by", p.UserId)
	return pr, nil
}

func (s *ProjectService) Get(ctx context.Context, id uint64) (*model.Project, error) {
	pr, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "project")
	}
	return pr, nil
}

func (s *ProjectService) List(ctx context.Context, q *model.ProjectQuery) (*model.ListResp[*model.Project], error) {
	q.Normalize()
	if q.Status != "" && !statemachine.ProjectStatus(q.Status).Valid() {
		return nil, errs.Validation("unknown project status %q", q.Status)
	}
	list, total, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "project")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *ProjectService) Update(ctx context.Context, p *Principal, id uint64, req *model.UpdateProjectReq) (*model.Project, error) {
	updates := map[string]any{}
	if req.Name != nil {
		if err := validateName("name", *req.Name, 255); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		if err := oneOf("priority", *req.Priority, model.ProjectPriorities); err != nil {
			return nil, err
		}
		updates["priority"] = *req.Priority
	}
	if req.Progress != nil {
		if err := validateProgress(*req.Progress); err != nil {
			return nil, err
		}
		updates["progress"] = *req.Progress
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.OrganizationId != nil {
		updates["organization_id"] = *req.OrganizationId
	}
	if req.DepartmentId != nil {
		updates["department_id"] = *req.DepartmentId
	}
	if req.ManagerId != nil {
		updates["manager_id"] = *req.ManagerId
	}
	if req.Budget != nil {
		if !finite(*req.Budget) || *req.Budget < 0 {
			return nil, errs.Unprocessable("budget must be a non-negative number")
		}
		updates["budget"] = *req.Budget
	}
	if req.Tags != nil {
		updates["tags"] = jsonSlice(req.Tags)
	}
	if req.CustomFields != nil {
		updates["custom_fields"] = jsonMap(req.CustomFields)
	}
	return s.mutate(ctx, p, id, func(prev *model.Project) (map[string]any, error) {
		start, due := prev.StartDate, prev.DueDate
		if req.StartDate != nil {
			start = req.StartDate
		}
		if req.DueDate != nil {
			due = req.DueDate
		}
		if start != nil && due != nil && due.Before(*start) {
			return nil, errs.Unprocessable("dueDate precedes startDate")
		}
		return updates, nil
	})
}

// ChangeStatus moves the project along its lifecycle. Entering completed
// stamps completed_at, reopening clears it.
func (s *ProjectService) ChangeStatus(ctx context.Context, p *Principal, id uint64, status string) (*model.Project, error) {
	to := statemachine.ProjectStatus(status)
	if !to.Valid() {
		return nil, errs.Validation("unknown project status %q", status)
	}
	return s.mutate(ctx, p, id, func(prev *model.Project) (map[string]any, error) {
		if err := s.machine.Transition(prev.Status, to); err != nil {
			return nil, errs.Wrap(errs.KindConflict, err, "illegal project status transition")
		}
		updates := map[string]any{"status": string(to)}
		switch {
		case to == statemachine.ProjectCompleted:
			updates["completed_at"] = now()
		case prev.Status == statemachine.ProjectCompleted && to == statemachine.ProjectActive:
			updates["completed_at"] = nil
		}
		return updates, nil
	})
}

// mutate locks the row, lets fn derive the column changes from the current
// state and stamps updated_at / updated_by.
func (s *ProjectService) mutate(ctx context.Context, p *Principal, id uint64, fn func(prev *model.Project) (map[string]any, error)) (*model.Project, error) {
	var pr *model.Project
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		prev, err := s.projects.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "project")
		}
		updates, err := fn(prev)
		if err != nil {
			return err
		}
		updates["updated_at"] = NextUpdatedAt(prev.UpdatedAt)
		updates["updated_by"] = p.UserId
		if err := s.projects.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, "project")
		}
		pr, err = s.projects.Get(ctx, id)
		return errs.FromDB(err, "project")
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (s *ProjectService) Delete(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.projects.Delete(ctx, id), "project")
	})
}

func (s *ProjectService) AssignTeam(ctx context.Context, projectId uint64, req *model.AssignTeamReq) (*model.ProjectTeam, error) {
	if req.TeamId == 0 {
		return nil, errs.Validation("teamId is required")
	}
	pt := &model.ProjectTeam{
		ProjectId: projectId,
		TeamId:    req.TeamId,
		Role:      orDefault(req.Role, "contributor"),
		IsActive:  true,
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.projects.Get(ctx, projectId); err != nil {
			return errs.FromDB(err, "project")
		}
		return errs.FromDB(s.projects.AddTeam(ctx, pt), "project team")
	})
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *ProjectService) RemoveTeam(ctx context.Context, projectId, teamId uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.projects.RemoveTeam(ctx, projectId, teamId), "project team")
	})
}

func (s *ProjectService) ListTeams(ctx context.Context, projectId uint64) ([]*model.ProjectTeam, error) {
	if _, err := s.projects.Get(ctx, projectId); err != nil {
		return nil, errs.FromDB(err, "project")
	}
	list, err := s.projects.ListTeams(ctx, projectId)
	if err != nil {
		return nil, errs.FromDB(err, "project team")
	}
	if list == nil {
		list = []*model.ProjectTeam{}
	}
	return list, nil
}
