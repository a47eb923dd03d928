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
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/go-arcade/workhub/internal/engine/model"
)

type txKey struct{}

// fakeTx runs fn inline and marks the context so mocks can assert they were
// reached inside a transaction.
type fakeTx struct {
	calls int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	f.calls++
	return fn(context.WithValue(ctx, txKey{}, f.calls))
}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

func ret[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *MockUserRepo) Get(ctx context.Context, id uint64) (*model.User, error) {
	return ret[model.User](m.Called(ctx, id))
}
func (m *MockUserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	return ret[model.User](m.Called(ctx, login))
}
func (m *MockUserRepo) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) List(ctx context.Context, q *model.UserQuery) ([]*model.User, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}
func (m *MockUserRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type MockTeamRepo struct{ mock.Mock }

func (m *MockTeamRepo) Create(ctx context.Context, t *model.Team) error {
	return m.Called(ctx, t).Error(0)
}
func (m *MockTeamRepo) Get(ctx context.Context, id uint64) (*model.Team, error) {
	return ret[model.Team](m.Called(ctx, id))
}
func (m *MockTeamRepo) List(ctx context.Context, q *model.TeamQuery) ([]*model.Team, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Team), args.Get(1).(int64), args.Error(2)
}
func (m *MockTeamRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockTeamRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockTeamRepo) DueForDisband(ctx context.Context, now time.Time) ([]*model.Team, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*model.Team), args.Error(1)
}

type MockTeamMemberRepo struct{ mock.Mock }

func (m *MockTeamMemberRepo) Create(ctx context.Context, tm *model.TeamMember) error {
	return m.Called(ctx, tm).Error(0)
}
func (m *MockTeamMemberRepo) Get(ctx context.Context, id uint64) (*model.TeamMember, error) {
	return ret[model.TeamMember](m.Called(ctx, id))
}
func (m *MockTeamMemberRepo) GetActive(ctx context.Context, teamId, userId uint64) (*model.TeamMember, error) {
	return ret[model.TeamMember](m.Called(ctx, teamId, userId))
}
func (m *MockTeamMemberRepo) List(ctx context.Context, teamId uint64, q *model.MemberQuery) ([]*model.TeamMember, int64, error) {
	args := m.Called(ctx, teamId, q)
	return args.Get(0).([]*model.TeamMember), args.Get(1).(int64), args.Error(2)
}
func (m *MockTeamMemberRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockTeamMemberRepo) DeactivateAll(ctx context.Context, teamId uint64, at time.Time) error {
	return m.Called(ctx, teamId, at).Error(0)
}

type MockProjectRepo struct{ mock.Mock }

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProjectRepo) Get(ctx context.Context, id uint64) (*model.Project, error) {
	return ret[model.Project](m.Called(ctx, id))
}
func (m *MockProjectRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Project, error) {
	return ret[model.Project](m.Called(ctx, id))
}
func (m *MockProjectRepo) List(ctx context.Context, q *model.ProjectQuery) ([]*model.Project, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Project), args.Get(1).(int64), args.Error(2)
}
func (m *MockProjectRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockProjectRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProjectRepo) AddTeam(ctx context.Context, pt *model.ProjectTeam) error {
	return m.Called(ctx, pt).Error(0)
}
func (m *MockProjectRepo) RemoveTeam(ctx context.Context, projectId, teamId uint64) error {
	return m.Called(ctx, projectId, teamId).Error(0)
}
func (m *MockProjectRepo) ListTeams(ctx context.Context, projectId uint64) ([]*model.ProjectTeam, error) {
	args := m.Called(ctx, projectId)
	return args.Get(0).([]*model.ProjectTeam), args.Error(1)
}

type MockTaskRepo struct{ mock.Mock }

func (m *MockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	return m.Called(ctx, t).Error(0)
}
func (m *MockTaskRepo) Get(ctx context.Context, id uint64) (*model.Task, error) {
	return ret[model.Task](m.Called(ctx, id))
}
func (m *MockTaskRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Task, error) {
	return ret[model.Task](m.Called(ctx, id))
}
func (m *MockTaskRepo) List(ctx context.Context, q *model.TaskQuery) ([]*model.Task, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Task), args.Get(1).(int64), args.Error(2)
}
func (m *MockTaskRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockTaskRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type MockDocumentRepo struct{ mock.Mock }

func (m *MockDocumentRepo) Create(ctx context.Context, d *model.Document) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockDocumentRepo) Get(ctx context.Context, id uint64) (*model.Document, error) {
	return ret[model.Document](m.Called(ctx, id))
}
func (m *MockDocumentRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Document, error) {
	return ret[model.Document](m.Called(ctx, id))
}
func (m *MockDocumentRepo) GetLatest(ctx context.Context, seriesId string) (*model.Document, error) {
	return ret[model.Document](m.Called(ctx, seriesId))
}
func (m *MockDocumentRepo) List(ctx context.Context, q *model.DocumentQuery) ([]*model.Document, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*model.Document), args.Get(1).(int64), args.Error(2)
}
func (m *MockDocumentRepo) ListVersions(ctx context.Context, seriesId string) ([]*model.Document, error) {
	args := m.Called(ctx, seriesId)
	return args.Get(0).([]*model.Document), args.Error(1)
}
func (m *MockDocumentRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockDocumentRepo) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockDocumentRepo) DueForExpiry(ctx context.Context, now time.Time) ([]*model.Document, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*model.Document), args.Error(1)
}

type MockStatisticsRepo struct{ mock.Mock }

func (m *MockStatisticsRepo) Count(ctx context.Context, table string) (int64, error) {
	args := m.Called(ctx, table)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStatisticsRepo) CountBy(ctx context.Context, table, column string) (map[string]int64, error) {
	args := m.Called(ctx, table, column)
	return args.Get(0).(map[string]int64), args.Error(1)
}

// frozenNow pins the service clock for the duration of a test.
func frozenNow(t interface{ Cleanup(func()) }, at time.Time) {
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

var errNotFoundForTest = gorm.ErrRecordNotFound
