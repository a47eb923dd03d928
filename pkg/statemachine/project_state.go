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

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
	ProjectArchived  ProjectStatus = "archived"
)

var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled, ProjectArchived,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// NewProjectStateMachine builds the project lifecycle. cancelled only moves
// on to archived, archived is final.
func NewProjectStateMachine() *StateMachine[ProjectStatus] {
	sm := New[ProjectStatus]()
	sm.Allow(ProjectPlanning, ProjectActive, ProjectCancelled).
		Allow(ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled).
		Allow(ProjectOnHold, ProjectActive, ProjectCancelled).
		Allow(ProjectCompleted, ProjectActive, ProjectArchived). // reopen
		Allow(ProjectCancelled, ProjectArchived).
		Terminal(ProjectArchived)
	return sm
}
