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
)

var teamRoles = []string{model.TeamRoleOwner, model.TeamRoleAdmin, model.TeamRoleMember}

type TeamService struct {
	tx      Transactor
	teams   repo.ITeamRepository
	members repo.ITeamMemberRepository
}

func NewTeamService(tx Transactor, teams repo.ITeamRepository, members repo.ITeamMemberRepository) *TeamService {
	return &TeamService{tx: tx, teams: teams, members: members}
}

// Create stores the team and enrolls the caller as its owner.
func (s *TeamService) Create(ctx context.Context, p *Principal, req *model.CreateTeamReq) (*model.Team, error) {
	if err := validateName("name", req.Name, 255); err != nil {
		return nil, err
	}
	if req.AutoDisbandAt != nil && !req.AutoDisbandAt.After(now()) {
		return nil, errs.Unprocessable("autoDisbandAt must be in the future")
	}
	t := &model.Team{
		Name:           req.Name,
		Description:    req.Description,
		Status:         model.TeamStatusActive,
		IsPublic:       req.IsPublic,
		AutoDisbandAt:  req.AutoDisbandAt,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
		Tags:           jsonSlice(req.Tags),
		CustomFields:   jsonMap(req.CustomFields),
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.teams.Create(ctx, t); err != nil {
			return errs.FromDB(err, "team")
		}
		return errs.FromDB(s.members.Create(ctx, newMember(t.ID, p.UserId, model.TeamRoleOwner, nil)), "team member")
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("team created", "teamId", t.ID, "by", p.UserId)
	return t, nil
}

func newMember(teamId, userId uint64, role string, permissions map[string]any) *model.TeamMember {
	return &model.TeamMember{
		TeamId:               teamId,
		UserId:               userId,
		Role:                 role,
		Permissions:          jsonMap(permissions),
		IsActive:             true,
		NotificationsEnabled: true,
		SoundEnabled:         true,
		JoinedAt:             now(),
	}
}

func (s *TeamService) Get(ctx context.Context, id uint64) (*model.Team, error) {
	t, err := s.teams.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "team")
	}
	return t, nil
}

func (s *TeamService) List(ctx context.Context, q *model.TeamQuery) (*model.ListResp[*model.Team], error) {
	q.Normalize()
	list, total, err := s.teams.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "team")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *TeamService) Update(ctx context.Context, id uint64, req *model.UpdateTeamReq) (*model.Team, error) {
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
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.AutoDisbandAt != nil {
		updates["auto_disband_at"] = *req.AutoDisbandAt
	}
	if req.OrganizationId != nil {
		updates["organization_id"] = *req.OrganizationId
	}
	if req.DepartmentId != nil {
		updates["department_id"] = *req.DepartmentId
	}
	if req.Tags != nil {
		updates["tags"] = jsonSlice(req.Tags)
	}
	if req.CustomFields != nil {
		updates["custom_fields"] = jsonMap(req.CustomFields)
	}

	var t *model.Team
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		prev, err := s.teams.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, "team")
		}
		updates["updated_at"] = NextUpdatedAt(prev.UpdatedAt)
		if err := s.teams.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, "team")
		}
		t, err = s.teams.Get(ctx, id)
		return errs.FromDB(err, "team")
	})
	return t, err
}

func (s *TeamService) Delete(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.teams.Delete(ctx, id), "team")
	})
}

// Disband is the soft delete of a team: the row stays, every membership is
// closed.
func (s *TeamService) Disband(ctx context.Context, id uint64) (*model.Team, error) {
	var t *model.Team
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.teams.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, "team")
		}
		if t.Status == model.TeamStatusDisbanded {
			return errs.Conflict("team %d is already disbanded", id)
		}
		return s.disband(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TeamService) disband(ctx context.Context, t *model.Team) error {
	at := NextUpdatedAt(t.UpdatedAt)
	err := s.teams.Update(ctx, t.ID, map[string]any{
		"status":       model.TeamStatusDisbanded,
		"disbanded_at": at,
		"updated_at":   at,
	})
	if err != nil {
		return errs.FromDB(err, "team")
	}
	if err := s.members.DeactivateAll(ctx, t.ID, at); err != nil {
		return errs.FromDB(err, "team member")
	}
	t.Status, t.DisbandedAt, t.UpdatedAt = model.TeamStatusDisbanded, &at, at
	return nil
}

// SweepAutoDisband disbands active teams whose auto_disband_at has passed.
// Each team commits on its own so one failure does not hold back the rest.
func (s *TeamService) SweepAutoDisband(ctx context.Context) (int, error) {
	due, err := s.teams.DueForDisband(ctx, now())
	if err != nil {
		return 0, errs.FromDB(err, "team")
	}
	n := 0
	for _, t := range due {
		err := s.tx.Transaction(ctx, func(ctx context.Context) error {
			return s.disband(ctx, t)
		})
		if err != nil {
			log.WithContext(ctx).Errorw("auto disband failed", "teamId", t.ID, "error", err)
			continue
		}
		n++
	}
	if n > 0 {
		log.WithContext(ctx).Infow("teams auto disbanded", "count", n)
	}
	return n, nil
}

// AddMember enrolls a user. A user holds at most one active membership per
// team; rejoining after leaving creates a new row.
func (s *TeamService) AddMember(ctx context.Context, teamId uint64, req *model.AddMemberReq) (*model.TeamMember, error) {
	if req.UserId == 0 {
		return nil, errs.Validation("userId is required")
	}
	role := orDefault(req.Role, model.TeamRoleMember)
	if err := oneOf("role", role, teamRoles); err != nil {
		return nil, err
	}

	m := newMember(teamId, req.UserId, role, req.Permissions)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		t, err := s.teams.Get(ctx, teamId)
		if err != nil {
			return errs.FromDB(err, "team")
		}
		if t.Status != model.TeamStatusActive {
			return errs.Conflict("team %d is %s", teamId, t.Status)
		}
		switch _, err := s.members.GetActive(ctx, teamId, req.UserId); {
		case err == nil:
			return errs.Conflict("user %d is already an active member of team %d", req.UserId, teamId)
		case !isNotFound(err):
			return errs.FromDB(err, "team member")
		}
		return errs.FromDB(s.members.Create(ctx, m), "team member")
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *TeamService) Leave(ctx context.Context, teamId, userId uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		m, err := s.members.GetActive(ctx, teamId, userId)
		if err != nil {
			return errs.FromDB(err, "team member")
		}
		at := NextUpdatedAt(m.UpdatedAt)
		return errs.FromDB(s.members.Update(ctx, m.ID, map[string]any{
			"is_active":  false,
			"left_at":    at,
			"updated_at": at,
		}), "team member")
	})
}

func (s *TeamService) UpdateMember(ctx context.Context, teamId, memberId uint64, req *model.UpdateMemberReq) (*model.TeamMember, error) {
	updates := map[string]any{}
	if req.Role != nil {
		if err := oneOf("role", *req.Role, teamRoles); err != nil {
			return nil, err
		}
		updates["role"] = *req.Role
	}
	if req.Permissions != nil {
		updates["permissions"] = jsonMap(req.Permissions)
	}
	if req.IsMuted != nil {
		updates["is_muted"] = *req.IsMuted
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}
	if req.SoundEnabled != nil {
		updates["sound_enabled"] = *req.SoundEnabled
	}

	var m *model.TeamMember
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if m, err = s.member(ctx, teamId, memberId); err != nil {
			return err
		}
		updates["updated_at"] = NextUpdatedAt(m.UpdatedAt)
		if err := s.members.Update(ctx, memberId, updates); err != nil {
			return errs.FromDB(err, "team member")
		}
		m, err = s.members.Get(ctx, memberId)
		return errs.FromDB(err, "team member")
	})
	return m, err
}

const (
	TouchSeen = "seen"
	TouchRead = "read"
)

// Touch records that the member has seen or read the team feed.
func (s *TeamService) Touch(ctx context.Context, teamId, userId uint64, what string) error {
	var column string
	switch what {
	case TouchSeen:
		column = "last_seen_at"
	case TouchRead:
		column = "last_read_at"
	default:
		return errs.Validation("unknown touch %q", what)
	}
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		m, err := s.members.GetActive(ctx, teamId, userId)
		if err != nil {
			return errs.FromDB(err, "team member")
		}
		at := NextUpdatedAt(m.UpdatedAt)
		return errs.FromDB(s.members.Update(ctx, m.ID, map[string]any{column: at, "updated_at": at}), "team member")
	})
}

func (s *TeamService) ListMembers(ctx context.Context, teamId uint64, q *model.MemberQuery) (*model.ListResp[*model.TeamMember], error) {
	q.Normalize()
	if _, err := s.teams.Get(ctx, teamId); err != nil {
		return nil, errs.FromDB(err, "team")
	}
	list, total, err := s.members.List(ctx, teamId, q)
	if err != nil {
		return nil, errs.FromDB(err, "team member")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *TeamService) member(ctx context.Context, teamId, memberId uint64) (*model.TeamMember, error) {
	m, err := s.members.Get(ctx, memberId)
	if err != nil {
		return nil, errs.FromDB(err, "team member")
	}
	if m.TeamId != teamId {
		return nil, errs.NotFound("team member not found")
	}
	return m, nil
}
