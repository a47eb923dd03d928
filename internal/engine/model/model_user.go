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

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

type User struct {
	BaseModel
	Username       string  `gorm:"column:username" json:"username"`
	Email          string  `gorm:"column:email" json:"email"`
	PasswordHash   string  `gorm:"column:password_hash" json:"-"`
	IsActive       bool    `gorm:"column:is_active" json:"isActive"`
	Role           string  `gorm:"column:role" json:"role"`
	FullName       *string `gorm:"column:full_name" json:"fullName,omitempty"`
	OrganizationId *uint64 `gorm:"column:organization_id" json:"organizationId,omitempty"`
	DepartmentId   *uint64 `gorm:"column:department_id" json:"departmentId,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type Organization struct {
	BaseModel
	Name        string  `gorm:"column:name" json:"name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
}

func (Organization) TableName() string {
	return "organizations"
}

type Department struct {
	BaseModel
	OrganizationId uint64 `gorm:"column:organization_id" json:"organizationId"`
	Name           string `gorm:"column:name" json:"name"`
}

func (Department) TableName() string {
	return "departments"
}

type RegisterReq struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"fullName"`
}

type LoginReq struct {
	// Username accepts either the username or the email
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginResp struct {
	User             *User  `json:"user"`
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	AccessExpiresAt  int64  `json:"accessExpiresAt"`
	RefreshExpiresAt int64  `json:"refreshExpiresAt"`
}

type CreateUserReq struct {
	RegisterReq
	Role           string  `json:"role"`
	OrganizationId *uint64 `json:"organizationId"`
	DepartmentId   *uint64 `json:"departmentId"`
}

type UpdateUserReq struct {
	Email          *string `json:"email"`
	FullName       *string `json:"fullName"`
	Password       *string `json:"password"`
	Role           *string `json:"role"`
	IsActive       *bool   `json:"isActive"`
	OrganizationId *uint64 `json:"organizationId"`
	DepartmentId   *uint64 `json:"departmentId"`
}

type UserQuery struct {
	PageReq
	Role           string  `query:"role"`
	IsActive       *bool   `query:"isActive"`
	OrganizationId *uint64 `query:"organizationId"`
	DepartmentId   *uint64 `query:"departmentId"`
	Keyword        string  `query:"keyword"`
}
