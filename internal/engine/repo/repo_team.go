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
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type ITeamRepository interface {
	Create(ctx context.Context, t *model.Team) error
	Get(ctx context.Context, id uint64) (*model.Team, error)
	List(ctx context.Context, q *model.TeamQuery) ([]*model.Team, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error
	// DueForDisband lists active teams whose auto_disband_at has passed
	DueForDisband(ctx context.Context, now time.Time) ([]*model.Team, error)
}

type TeamRepo struct {
	*CrudRepo[model.Team]
}

func NewTeamRepo(db database.IDatabase) ITeamRepository {
	return &TeamRepo{CrudRepo: NewCrudRepo[model.Team](db)}
}

func (r *TeamRepo) List(ctx context.Context, q *model.TeamQuery) ([]*model.Team, int64, error) {
	db := r.DB(ctx).Model(&model.Team{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.OrganizationId != nil {
		db = db.Where("organization_id = ?", *q.OrganizationId)
	}
	if q.DepartmentId != nil {
		db = db.Where("department_id = ?", *q.DepartmentId)
	}
	if q.Name != "" {
		db = db.Where("name ILIKE ?", "%"+q.Name+"%")
	}
	return paginate[model.Team](db, q.PageReq)
}

func (r *TeamRepo) DueForDisband(ctx context.Context, now time.Time) ([]*model.Team, error) {
	var teams []*model.Team
	err := r.DB(ctx).
		Where("status = ? AND auto_disband_at IS NOT NULL AND auto_disband_at <= ?", model.TeamStatusActive, now).
		Order("id").
		Find(&teams).Error
	return teams, err
}

type ITeamMemberRepository interface {
	Create(ctx context.Context, m *model.TeamMember) error
	Get(ctx context.Context, id uint64) (*model.TeamMember, error)
	// GetActive returns the active membership of user in team
	GetActive(ctx context.Context, teamId, userId uint64) (*model.TeamMember, error)
	List(ctx context.Context, teamId uint64, q *model.MemberQuery) ([]*model.TeamMember, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	// DeactivateAll marks every active membership of team as left
	DeactivateAll(ctx context.Context, teamId uint64, at time.Time) error
}

type TeamMemberRepo struct {
	*CrudRepo[model.TeamMember]
}

func NewTeamMemberRepo(db database.IDatabase) ITeamMemberRepository {
	return &TeamMemberRepo{CrudRepo: NewCrudRepo[model.TeamMember](db)}
}

func (r *TeamMemberRepo) GetActive(ctx context.Context, teamId, userId uint64) (*model.TeamMember, error) {
	var m model.TeamMember
	err := r.DB(ctx).
		Where("team_id = ? AND user_id = ? AND is_active", teamId, userId).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *TeamMemberRepo) List(ctx context.Context, teamId uint64, q *model.MemberQuery) ([]*model.TeamMember, int64, error) {
	db := r.DB(ctx).Model(&model.TeamMember{}).Where("team_id = ?", teamId)
	if !q.IncludeInactive {
		db = db.Where("is_active")
	}
	return paginate[model.TeamMember](db, q.PageReq)
}

func (r *TeamMemberRepo) DeactivateAll(ctx context.Context, teamId uint64, at time.Time) error {
	return r.DB(ctx).Model(&model.TeamMember{}).
		Where("team_id = ? AND is_active", teamId).
		Updates(map[string]any{"is_active": false, "left_at": at, "updated_at": at}).Error
}
