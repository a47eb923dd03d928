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

import "gorm.io/datatypes"

// Flow groups dashboards into an ordered container.
type Flow struct {
	BaseModel
	Name        string  `gorm:"column:name" json:"name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
}

func (Flow) TableName() string {
	return "flows"
}

type WidgetType struct {
	BaseModel
	Name        string  `gorm:"column:name" json:"name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
}

func (WidgetType) TableName() string {
	return "widget_types"
}

type Dashboard struct {
	BaseModel
	OwnerId     uint64  `gorm:"column:owner_id" json:"ownerId"`
	Title       string  `gorm:"column:title" json:"title"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
}

func (Dashboard) TableName() string {
	return "dashboards"
}

type DashboardData struct {
	BaseModel
	DashboardId uint64            `gorm:"column:dashboard_id" json:"dashboardId"`
	Key         string            `gorm:"column:key" json:"key"`
	Data        datatypes.JSONMap `gorm:"column:data;type:jsonb" json:"data"`
}

func (DashboardData) TableName() string {
	return "dashboard_datas"
}

type Widget struct {
	BaseModel
	DashboardId  uint64            `gorm:"column:dashboard_id" json:"dashboardId"`
	WidgetTypeId uint64            `gorm:"column:widget_type_id" json:"widgetTypeId"`
	Title        *string           `gorm:"column:title" json:"title,omitempty"`
	Config       datatypes.JSONMap `gorm:"column:config;type:jsonb" json:"config"`
	Position     int               `gorm:"column:position" json:"position"`
}

func (Widget) TableName() string {
	return "widgets"
}

type AccessDashboard struct {
	BaseModel
	DashboardId uint64 `gorm:"column:dashboard_id" json:"dashboardId"`
	UserId      uint64 `gorm:"column:user_id" json:"userId"`
	AccessLevel string `gorm:"column:access_level" json:"accessLevel"`
}

func (AccessDashboard) TableName() string {
	return "access_dashboards"
}

type FlowDashboard struct {
	BaseModel
	FlowId      uint64 `gorm:"column:flow_id" json:"flowId"`
	DashboardId uint64 `gorm:"column:dashboard_id" json:"dashboardId"`
	Position    int    `gorm:"column:position" json:"position"`
}

func (FlowDashboard) TableName() string {
	return "flow_dashboards"
}

// GroupUser is a named user grouping; UserGroup rows are its members.
type GroupUser struct {
	BaseModel
	Name    string `gorm:"column:name" json:"name"`
	OwnerId uint64 `gorm:"column:owner_id" json:"ownerId"`
}

func (GroupUser) TableName() string {
	return "group_users"
}

type UserGroup struct {
	BaseModel
	GroupId uint64 `gorm:"column:group_id" json:"groupId"`
	UserId  uint64 `gorm:"column:user_id" json:"userId"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
