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

package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TeamStatusActive    = "active"
	TeamStatusDisbanded = "disbanded"

	TeamRoleOwner  = "owner"
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"
)

type Team struct {
	BaseModel
	Name           string                      `gorm:"column:name" json:"name"`
	Description    *string                     `gorm:"column:description" json:"description,omitempty"`
	Status         string                      `gorm:"column:status" json:"status"`
	IsPublic       bool                        `gorm:"column:is_public" json:"isPublic"`
	AutoDisbandAt  *time.Time                  `gorm:"column:auto_disband_at" json:"autoDisbandAt,omitempty"`
	DisbandedAt    *time.Time                  `gorm:"column:disbanded_at" json:"disbandedAt,omitempty"`
	OrganizationId *uint64                     `gorm:"column:organization_id" json:"organizationId,omitempty"`
	DepartmentId   *uint64                     `gorm:"column:department_id" json:"departmentId,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	CustomFields   datatypes.JSONMap           `gorm:"column:custom_fields;type:jsonb" json:"customFields"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamMember carries the per-membership state. At most one active row exists
// per (team, user).
type TeamMember struct {
	BaseModel
	TeamId               uint64            `gorm:"column:team_id" json:"teamId"`
	UserId               uint64            `gorm:"column:user_id" json:"userId"`
	Role                 string            `gorm:"column:role" json:"role"`
	Permissions          datatypes.JSONMap `gorm:"column:permissions;type:jsonb" json:"permissions"`
	IsActive             bool              `gorm:"column:is_active" json:"isActive"`
	IsMuted              bool              `gorm:"column:is_muted" json:"isMuted"`
	NotificationsEnabled bool              `gorm:"column:notifications_enabled" json:"notificationsEnabled"`
	SoundEnabled         bool              `gorm:"column:sound_enabled" json:"soundEnabled"`
	JoinedAt             time.Time         `gorm:"column:joined_at" json:"joinedAt"`
	LeftAt               *time.Time        `gorm:"column:left_at" json:"leftAt,omitempty"`
	LastSeenAt           *time.Time        `gorm:"column:last_seen_at" json:"lastSeenAt,omitempty"`
	LastReadAt           *time.Time        `gorm:"column:last_read_at" json:"lastReadAt,omitempty"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

type CreateTeamReq struct {
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	IsPublic       bool           `json:"isPublic"`
	AutoDisbandAt  *time.Time     `json:"autoDisbandAt"`
	OrganizationId *uint64        `json:"organizationId"`
	DepartmentId   *uint64        `json:"departmentId"`
	Tags           []string       `json:"tags"`
	CustomFields   map[string]any `json:"customFields"`
}

type UpdateTeamReq struct {
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	IsPublic       *bool          `json:"isPublic"`
	AutoDisbandAt  *time.Time     `json:"autoDisbandAt"`
	OrganizationId *uint64        `json:"organizationId"`
	DepartmentId   *uint64        `json:"departmentId"`
	Tags           []string       `json:"tags"`
	CustomFields   map[string]any `json:"customFields"`
}

type TeamQuery struct {
	PageReq
	Status         string  `query:"status"`
	OrganizationId *uint64 `query:"organizationId"`
	DepartmentId   *uint64 `query:"departmentId"`
	Name           string  `query:"name"`
}

type AddMemberReq struct {
	UserId      uint64         `json:"userId"`
	Role        string         `json:"role"`
	Permissions map[string]any `json:"permissions"`
}

type UpdateMemberReq struct {
	Role                 *string        `json:"role"`
	Permissions          map[string]any `json:"permissions"`
	IsMuted              *bool          `json:"isMuted"`
	NotificationsEnabled *bool          `json:"notificationsEnabled"`
	SoundEnabled         *bool          `json:"soundEnabled"`
}

type MemberQuery struct {
	PageReq
	// IncludeInactive lists members that already left
	IncludeInactive bool `query:"includeInactive"`
}
