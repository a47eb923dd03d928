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
	"github.com/go-arcade/workhub/pkg/statemachine"
)

var principal = &Principal{UserId: 7, Username: "alice", Role: model.RoleManager}

func TestProjectService_CreateProgressBounds(t *testing.T) {
	tests := []struct {
		progress int
		wantErr  bool
	}{
		{0, false},
		{100, false},
		{-1, true},
		{101, true},
	}
	for _, tt := range tests {
		projects := &MockProjectRepo{}
		projects.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
		svc := NewProjectService(&fakeTx{}, projects)

		pr, err := svc.Create(context.Background(), principal, &model.CreateProjectReq{Name: "apollo", Progress: tt.progress})
		if tt.wantErr {
			require.Error(t, err, "progress %d", tt.progress)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
			assert.Equal(t, 4221, errs.CodeOf(err))
			projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			continue
		}
		require.NoError(t, err, "progress %d", tt.progress)
		assert.Equal(t, statemachine.ProjectPlanning, pr.Status)
		assert.Equal(t, model.PriorityMedium, pr.Priority)
		assert.Equal(t, uint64(7), *pr.UpdatedBy)
		assert.NotNil(t, pr.Tags)
		assert.NotNil(t, pr.CustomFields)
	}
}

func TestProjectService_CreateRejectsUnknownPriority(t *testing.T) {
	svc := NewProjectService(&fakeTx{}, &MockProjectRepo{})
	_, err := svc.Create(context.Background(), principal, &model.CreateProjectReq{Name: "apollo", Priority: "whenever"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestProjectService_ChangeStatus(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	tests := []struct {
		name      string
		from      statemachine.ProjectStatus
		to        string
		wantKind  errs.Kind
		completed any
	}{
		{name: "activate", from: statemachine.ProjectPlanning, to: "active"},
		{name: "complete stamps completed_at", from: statemachine.ProjectActive, to: "completed", completed: at},
		{name: "reopen clears completed_at", from: statemachine.ProjectCompleted, to: "active", completed: nil},
		{name: "planning cannot complete", from: statemachine.ProjectPlanning, to: "completed", wantKind: errs.KindConflict},
		{name: "archived is terminal", from: statemachine.ProjectArchived, to: "active", wantKind: errs.KindConflict},
		{name: "unknown status", from: statemachine.ProjectActive, to: "done", wantKind: errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &model.Project{BaseModel: model.BaseModel{ID: 1, UpdatedAt: at.Add(-time.Hour)}, Status: tt.from}
			projects := &MockProjectRepo{}
			projects.On("GetForUpdate", mock.Anything, uint64(1)).Return(prev, nil).Maybe()
			projects.On("Get", mock.Anything, uint64(1)).Return(prev, nil).Maybe()

			var updates map[string]any
			projects.On("Update", mock.Anything, uint64(1), mock.Anything).
				Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]any) }).
				Return(nil).Maybe()

			svc := NewProjectService(&fakeTx{}, projects)
			_, err := svc.ChangeStatus(context.Background(), principal, 1, tt.to)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
				assert.Nil(t, updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updates["status"])
			assert.Equal(t, uint64(7), updates["updated_by"])
			completed, ok := updates["completed_at"]
			if tt.name == "activate" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.completed, completed)
		})
	}
}

func TestProjectService_UpdatedAtStrictlyIncreases(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	// the stored row is ahead of the local clock
	prev := &model.Project{BaseModel: model.BaseModel{ID: 1, UpdatedAt: at.Add(time.Second)}, Status: statemachine.ProjectActive}
	projects := &MockProjectRepo{}
	projects.On("GetForUpdate", mock.Anything, uint64(1)).Return(prev, nil)
	projects.On("Get", mock.Anything, uint64(1)).Return(prev, nil)
	var updates map[string]any
	projects.On("Update", mock.Anything, uint64(1), mock.Anything).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]any) }).
		Return(nil)

	progress := 40
	_, err := NewProjectService(&fakeTx{}, projects).Update(context.Background(), principal, 1, &model.UpdateProjectReq{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, at.Add(time.Second+time.Microsecond), updates["updated_at"])
	assert.Equal(t, 40, updates["progress"])
}

func TestProjectService_UpdateRejectsProgress(t *testing.T) {
	for _, p := range []int{-1, 101} {
		_, err := NewProjectService(&fakeTx{}, &MockProjectRepo{}).Update(context.Background(), principal, 1, &model.UpdateProjectReq{Progress: &p})
		assert.Equal(t, 4221, errs.CodeOf(err))
	}
}

func TestProjectService_GetNotFound(t *testing.T) {
	projects := &MockProjectRepo{}
	projects.On("Get", mock.Anything, uint64(9)).Return(nil, errNotFoundForTest)
	_, err := NewProjectService(&fakeTx{}, projects).Get(context.Background(), 9)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}
