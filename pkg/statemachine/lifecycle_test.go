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

package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStateMachine(t *testing.T) {
	sm := NewProjectStateMachine()
	tests := []struct {
		from, to ProjectStatus
		ok       bool
	}{
		{ProjectPlanning, ProjectActive, true},
		{ProjectPlanning, ProjectCancelled, true},
		{ProjectPlanning, ProjectCompleted, false},
		{ProjectActive, ProjectOnHold, true},
		{ProjectOnHold, ProjectActive, true},
		{ProjectOnHold, ProjectCompleted, false},
		{ProjectActive, ProjectCompleted, true},
		{ProjectCompleted, ProjectActive, true},
		{ProjectCompleted, ProjectArchived, true},
		{ProjectCancelled, ProjectArchived, true},
		{ProjectCancelled, ProjectActive, false},
		{ProjectArchived, ProjectActive, false},
		{ProjectArchived, ProjectPlanning, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := sm.Transition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
	assert.True(t, sm.IsTerminal(ProjectArchived))
	assert.Empty(t, sm.NextStates(ProjectArchived))
}

func TestProjectStatus_Valid(t *testing.T) {
	assert.True(t, ProjectOnHold.Valid())
	assert.False(t, ProjectStatus("paused").Valid())
}

func TestDocumentStateMachine(t *testing.T) {
	sm := NewDocumentStateMachine()
	path := []DocumentStatus{
		DocumentDraft, DocumentPendingReview, DocumentInReview,
		DocumentApproved, DocumentSigned, DocumentArchived,
	}
	for i := 1; i < len(path); i++ {
		assert.NoError(t, sm.Transition(path[i-1], path[i]))
	}

	assert.NoError(t, sm.Transition(DocumentInReview, DocumentRejected))
	assert.NoError(t, sm.Transition(DocumentRejected, DocumentDraft))
	assert.ErrorIs(t, sm.Transition(DocumentDraft, DocumentApproved), ErrInvalidTransition)
	assert.ErrorIs(t, sm.Transition(DocumentApproved, DocumentArchived), ErrInvalidTransition)
}

func TestDocumentStateMachine_Expiry(t *testing.T) {
	sm := NewDocumentStateMachine()
	for _, s := range DocumentStatuses {
		err := sm.Transition(s, DocumentExpired)
		switch s {
		case DocumentArchived, DocumentExpired:
			assert.ErrorIs(t, err, ErrInvalidTransition, s)
		default:
			assert.NoError(t, err, s)
		}
	}
	assert.NoError(t, sm.Transition(DocumentExpired, DocumentArchived))
	assert.ErrorIs(t, sm.Transition(DocumentExpired, DocumentDraft), ErrInvalidTransition)
}
