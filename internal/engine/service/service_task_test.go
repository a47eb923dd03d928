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

func TestTaskService_CreateDefaults(t *testing.T) {
	tasks := &MockTaskRepo{}
	tasks.On("Create", mock.Anything, mock.Anything).Return(nil)

	task, err := NewTaskService(&fakeTx{}, tasks).Create(context.Background(), principal, &model.CreateTaskReq{Title: "write docs"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.TaskTypeTask, task.Type)
	assert.Equal(t, uint64(7), task.OwnerId)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskService_CreateRejectsUnknownStatus(t *testing.T) {
	_, err := NewTaskService(&fakeTx{}, &MockTaskRepo{}).Create(context.Background(), principal, &model.CreateTaskReq{Title: "x", Status: "blocked"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestTaskService_CompletedAtFollowsStatus(t *testing.T) {
	at := time.Date(2025, 4, 4, 4, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	tests := []struct {
		from, to  string
		completed any
		touched   bool
	}{
		{model.TaskInProgress, model.TaskDone, at, true},
		{model.TaskDone, model.TaskInProgress, nil, true},
		{model.TaskTodo, model.TaskReview, nil, false},
	}
	for _, tt := range tests {
		prev := &model.Task{BaseModel: model.BaseModel{ID: 1}, Status: tt.from, Priority: model.PriorityLow, Type: model.TaskTypeBug}
		tasks := &MockTaskRepo{}
		tasks.On("GetForUpdate", mock.Anything, uint64(1)).Return(prev, nil)
		tasks.On("Get", mock.Anything, uint64(1)).Return(prev, nil)
		var updates map[string]any
		tasks.On("Update", mock.Anything, uint64(1), mock.Anything).
			Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]any) }).
			Return(nil)

		status := tt.to
		_, err := NewTaskService(&fakeTx{}, tasks).Update(context.Background(), 1, &model.UpdateTaskReq{Status: &status})
		require.NoError(t, err)
		got, ok := updates["completed_at"]
		assert.Equal(t, tt.touched, ok, "%s -> %s", tt.from, tt.to)
		if tt.touched {
			assert.Equal(t, tt.completed, got)
		}
	}
}

func TestTaskService_UpdateRejectsNegativeHours(t *testing.T) {
	tasks := &MockTaskRepo{}
	tasks.On("GetForUpdate", mock.Anything, uint64(1)).Return(&model.Task{Status: model.TaskTodo, Priority: model.PriorityLow, Type: model.TaskTypeTask}, nil)
	spent := -2.0
	_, err := NewTaskService(&fakeTx{}, tasks).Update(context.Background(), 1, &model.UpdateTaskReq{SpentHours: &spent})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
