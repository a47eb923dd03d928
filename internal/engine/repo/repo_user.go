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

package repo

import (
	"context"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type IUserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id uint64) (*model.User, error)
	// GetByLogin matches either the username or the email
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context, q *model.UserQuery) ([]*model.User, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type UserRepo struct {
	*CrudRepo[model.User]
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{CrudRepo: NewCrudRepo[model.User](db)}
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.DB(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepo) List(ctx context.Context, q *model.UserQuery) ([]*model.User, int64, error) {
	db := r.DB(ctx).Model(&model.User{})
	if q.Role != "" {
		db = db.Where("role = ?", q.Role)
	}
	if q.IsActive != nil {
		db = db.Where("is_active = ?", *q.IsActive)
	}
	if q.OrganizationId != nil {
		db = db.Where("organization_id = ?", *q.OrganizationId)
	}
	if q.DepartmentId != nil {
		db = db.Where("department_id = ?", *q.DepartmentId)
	}
	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		db = db.Where("username ILIKE ? OR email ILIKE ? OR full_name ILIKE ?", like, like, like)
	}
	return paginate[model.User](db, q.PageReq)
}
