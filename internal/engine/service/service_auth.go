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
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/http/jwt"
	"github.com/go-arcade/workhub/pkg/http/middleware"
	"github.com/go-arcade/workhub/pkg/log"
)

const minPasswordLength = 8

var validate = validator.New()

type AuthService struct {
	users repo.IUserRepository
	store cache.ICache
	auth  http.Auth
}

func NewAuthService(users repo.IUserRepository, store cache.ICache, httpConf *http.Http) *AuthService {
	return &AuthService{users: users, store: store, auth: httpConf.Auth}
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errs.Validation("password must have at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Wrap(errs.KindUnexpected, err, "hash password")
	}
	return string(hash), nil
}

func validateIdentity(username, email string) error {
	if err := validateName("username", username, 64); err != nil {
		return err
	}
	return validateEmail(email)
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errs.Validation("email %q is invalid", email)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterReq) (*model.User, error) {
	// 1. validate input
	if err := validateIdentity(req.Username, req.Email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// 2. uniqueness
	exists, err := s.users.ExistsUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, errs.FromDB(err, "user")
	}
	if exists {
		return nil, errs.Conflict("username or email already registered")
	}

	// 3. persist
	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         model.RoleMember,
		FullName:     req.FullName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errs.FromDB(err, "user")
	}
	log.WithContext(ctx).Infow("user registered", "userId", u.ID, "username", u.Username)
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginReq) (*model.LoginResp, error) {
	u, err := s.users.GetByLogin(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.Unauthenticated("invalid username or password")
		}
		return nil, errs.FromDB(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, errs.Unauthenticated("invalid username or password")
	}
	if !u.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}
	return s.issue(ctx, u)
}

// Refresh rotates the session: the old refresh token stops working once a
// new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResp, error) {
	claims, err := jwt.ParseToken(refreshToken, s.auth.SecretKey, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, errs.Unauthenticated("invalid refresh token")
	}
	key := middleware.SessionKey(s.auth.RedisKeyPrefix, claims.SessionId())
	if err := s.store.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.Unauthenticated("session has been revoked")
		}
		return nil, errs.Wrap(errs.KindUnexpected, err, "read session")
	}
	u, err := s.users.Get(ctx, claims.UserId)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.Unauthenticated("user no longer exists")
		}
		return nil, errs.FromDB(err, "user")
	}
	if !u.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}
	if err := s.store.Del(ctx, key).Err(); err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, "revoke session")
	}
	return s.issue(ctx, u)
}

func (s *AuthService) Logout(ctx context.Context, sessionId string) error {
	if err := s.store.Del(ctx, middleware.SessionKey(s.auth.RedisKeyPrefix, sessionId)).Err(); err != nil {
		return errs.Wrap(errs.KindUnexpected, err, "revoke session")
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, p *Principal) (*model.User, error) {
	u, err := s.users.Get(ctx, p.UserId)
	if err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*model.LoginResp, error) {
	pair, err := jwt.GenToken(jwt.AuthClaims{
		UserId:         u.ID,
		Username:       u.Username,
		Role:           u.Role,
		OrganizationId: u.OrganizationId,
		DepartmentId:   u.DepartmentId,
	}, []byte(s.auth.SecretKey), s.auth.AccessTTL(), s.auth.RefreshTTL())
	if err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, "issue token")
	}
	key := middleware.SessionKey(s.auth.RedisKeyPrefix, pair.SessionId)
	if err := s.store.Set(ctx, key, strconv.FormatUint(u.ID, 10), s.auth.RefreshTTL()).Err(); err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, "store session")
	}
	return &model.LoginResp{
		User:             u,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt.Unix(),
		RefreshExpiresAt: pair.RefreshExpiresAt.Unix(),
	}, nil
}
