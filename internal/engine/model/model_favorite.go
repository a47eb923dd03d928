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

type FavoriteFile struct {
	BaseModel
	UserId    uint64 `gorm:"column:user_id" json:"userId"`
	ProjectId uint64 `gorm:"column:project_id" json:"projectId"`
	Filename  string `gorm:"column:filename" json:"filename"`
}

func (FavoriteFile) TableName() string {
	return "favorite_files"
}

type AddFavoriteReq struct {
	ProjectId uint64 `json:"projectId"`
	Filename  string `json:"filename"`
}

type FavoriteQuery struct {
	PageReq
	ProjectId *uint64 `query:"projectId"`
}

type Statistics struct {
	Users         int64            `json:"users"`
	Teams         int64            `json:"teams"`
	Projects      int64            `json:"projects"`
	Tasks         int64            `json:"tasks"`
	Documents     int64            `json:"documents"`
	Kpis          int64            `json:"kpis"`
	TaskStatus    map[string]int64 `json:"taskStatus"`
	ProjectStatus map[string]int64 `json:"projectStatus"`
	DocStatus     map[string]int64 `json:"documentStatus"`
}
