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

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/log"
)

var userRoles = []string{model.RoleAdmin, model.RoleManager, model.RoleMember}

type UserService struct {
	tx    Transactor
	users repo.IUserRepository
}

func NewUserService(tx Transactor, users repo.IUserRepository) *UserService {
	return &UserService{tx: tx, users: users}
}

func (s *UserService) Create(ctx context.Context, p *Principal, req *model.CreateUserReq) (*model.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := validateIdentity(req.Username, req.Email); err != nil {
		return nil, err
	}
	role := orDefault(req.Role, model.RoleMember)
	if err := oneOf("role", role, userRoles); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   hash,
		IsActive:       true,
		Role:           role,
		FullName:       req.FullName,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.ExistsUsernameOrEmail(ctx, req.Username, req.Email)
		if err != nil {
			return errs.FromDB(err, "user")
		}
		if exists {
			return errs.Conflict("username or email already registered")
		}
		return errs.FromDB(s.users.Create(ctx, u), "user")
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("user created", "userId", u.ID, "by", p.UserId)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, q *model.UserQuery) (*model.ListResp[*model.User], error) {
	q.Normalize()
	list, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

// Update lets administrators change any account. Other callers may only
// edit their own profile and never their role or activation flag.
func (s *UserService) Update(ctx context.Context, p *Principal, id uint64, req *model.UpdateUserReq) (*model.User, error) {
	if !p.IsAdmin() {
		if p == nil || p.UserId != id {
			return nil, errs.Forbidden("cannot modify another user")
		}
		if req.Role != nil || req.IsActive != nil {
			return nil, errs.Forbidden("role and activation require the administrator role")
		}
	}

	updates := map[string]any{}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}
		updates["email"] = *req.Email
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if req.Role != nil {
		if err := oneOf("role", *req.Role, userRoles); err != nil {
			return nil, err
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.OrganizationId != nil {
		updates["organization_id"] = *req.OrganizationId
	}
	if req.DepartmentId != nil {
		updates["department_id"] = *req.DepartmentId
	}

	var u *model.User
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if len(updates) > 0 {
			if err := s.users.Update(ctx, id, updates); err != nil {
				return errs.FromDB(err, "user")
			}
		}
		var err error
		u, err = s.users.Get(ctx, id)
		return errs.FromDB(err, "user")
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes an account. Accounts still referenced by tasks or documents
// surface as a conflict.
func (s *UserService) Delete(ctx context.Context, p *Principal, id uint64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if p.UserId == id {
		return errs.Conflict("cannot delete the current account")
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.users.Delete(ctx, id), "user")
	})
	if err != nil {
		return err
	}
	log.WithContext(ctx).Infow("user deleted", "userId", id, "by", p.UserId)
	return nil
}
