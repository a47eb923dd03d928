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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
)

func activeTeam(id uint64) *model.Team {
	return &model.Team{BaseModel: model.BaseModel{ID: id}, Name: "core", Status: model.TeamStatusActive}
}

func TestTeamService_CreateEnrollsOwner(t *testing.T) {
	teams, members := &MockTeamRepo{}, &MockTeamMemberRepo{}
	teams.On("Create", mock.MatchedBy(inTx), mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Team).ID = 3 }).
		Return(nil)
	members.On("Create", mock.MatchedBy(inTx), mock.MatchedBy(func(m *model.TeamMember) bool {
		return m.TeamId == 3 && m.UserId == 7 && m.Role == model.TeamRoleOwner && m.IsActive
	})).Return(nil)

	tx := &fakeTx{}
	team, err := NewTeamService(tx, teams, members).Create(context.Background(), principal, &model.CreateTeamReq{Name: "core"})
	require.NoError(t, err)
	assert.Equal(t, model.TeamStatusActive, team.Status)
	assert.Equal(t, 1, tx.calls)
	members.AssertExpectations(t)
}

func TestTeamService_AddMemberConflict(t *testing.T) {
	teams, members := &MockTeamRepo{}, &MockTeamMemberRepo{}
	teams.On("Get", mock.Anything, uint64(1)).Return(activeTeam(1), nil)
	members.On("GetActive", mock.Anything, uint64(1), uint64(9)).Return(&model.TeamMember{IsActive: true}, nil)

	_, err := NewTeamService(&fakeTx{}, teams, members).AddMember(context.Background(), 1, &model.AddMemberReq{UserId: 9})
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	members.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTeamService_AddMemberAfterLeaving(t *testing.T) {
	teams, members := &MockTeamRepo{}, &MockTeamMemberRepo{}
	teams.On("Get", mock.Anything, uint64(1)).Return(activeTeam(1), nil)
	members.On("GetActive", mock.Anything, uint64(1), uint64(9)).Return(nil, errNotFoundForTest)
	members.On("Create", mock.Anything, mock.Anything).Return(nil)

	m, err := NewTeamService(&fakeTx{}, teams, members).AddMember(context.Background(), 1, &model.AddMemberReq{UserId: 9})
	require.NoError(t, err)
	assert.Equal(t, model.TeamRoleMember, m.Role)
	assert.NotNil(t, m.Permissions)
}

func TestTeamService_AddMemberToDisbandedTeam(t *testing.T) {
	team := activeTeam(1)
	team.Status = model.TeamStatusDisbanded
	teams := &MockTeamRepo{}
	teams.On("Get", mock.Anything, uint64(1)).Return(team, nil)

	_, err := NewTeamService(&fakeTx{}, teams, &MockTeamMemberRepo{}).AddMember(context.Background(), 1, &model.AddMemberReq{UserId: 9})
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestTeamService_Leave(t *testing.T) {
	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	members := &MockTeamMemberRepo{}
	members.On("GetActive", mock.Anything, uint64(1), uint64(9)).
		Return(&model.TeamMember{BaseModel: model.BaseModel{ID: 4}, IsActive: true}, nil)
	members.On("Update", mock.Anything, uint64(4), map[string]any{
		"is_active":  false,
		"left_at":    at,
		"updated_at": at,
	}).Return(nil)

	require.NoError(t, NewTeamService(&fakeTx{}, &MockTeamRepo{}, members).Leave(context.Background(), 1, 9))
	members.AssertExpectations(t)
}

func TestTeamService_Disband(t *testing.T) {
	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	teams, members := &MockTeamRepo{}, &MockTeamMemberRepo{}
	teams.On("Get", mock.Anything, uint64(1)).Return(activeTeam(1), nil)
	teams.On("Update", mock.Anything, uint64(1), mock.MatchedBy(func(u map[string]any) bool {
		return u["status"] == model.TeamStatusDisbanded && u["disbanded_at"] == at
	})).Return(nil)
	members.On("DeactivateAll", mock.Anything, uint64(1), at).Return(nil)

	team, err := NewTeamService(&fakeTx{}, teams, members).Disband(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.TeamStatusDisbanded, team.Status)
	assert.Equal(t, at, *team.DisbandedAt)

	disbanded := activeTeam(2)
	disbanded.Status = model.TeamStatusDisbanded
	teams.On("Get", mock.Anything, uint64(2)).Return(disbanded, nil)
	_, err = NewTeamService(&fakeTx{}, teams, members).Disband(context.Background(), 2)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestTeamService_SweepAutoDisband(t *testing.T) {
	teams, members := &MockTeamRepo{}, &MockTeamMemberRepo{}
	teams.On("DueForDisband", mock.Anything, mock.Anything).Return([]*model.Team{activeTeam(1), activeTeam(2)}, nil)
	teams.On("Update", mock.Anything, uint64(1), mock.Anything).Return(nil)
	teams.On("Update", mock.Anything, uint64(2), mock.Anything).Return(errNotFoundForTest)
	members.On("DeactivateAll", mock.Anything, uint64(1), mock.Anything).Return(nil)

	n, err := NewTeamService(&fakeTx{}, teams, members).SweepAutoDisband(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTeamService_Touch(t *testing.T) {
	members := &MockTeamMemberRepo{}
	members.On("GetActive", mock.Anything, uint64(1), uint64(9)).Return(&model.TeamMember{BaseModel: model.BaseModel{ID: 4}}, nil)
	members.On("Update", mock.Anything, uint64(4), mock.MatchedBy(func(u map[string]any) bool {
		_, ok := u["last_read_at"]
		return ok
	})).Return(nil)

	svc := NewTeamService(&fakeTx{}, &MockTeamRepo{}, members)
	require.NoError(t, svc.Touch(context.Background(), 1, 9, TouchRead))
	assert.Equal(t, errs.KindValidation, errs.KindOf(svc.Touch(context.Background(), 1, 9, "typed")))
}
