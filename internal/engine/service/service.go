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
	"math"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/http/jwt"
)

// Transactor opens the request scoped transaction repositories pick up from
// the context. database.IDatabase implements it.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserId         uint64
	Username       string
	Role           string
	OrganizationId *uint64
	DepartmentId   *uint64
}

func PrincipalFromClaims(c *jwt.AuthClaims) *Principal {
	if c == nil {
		return nil
	}
	return &Principal{
		UserId:         c.UserId,
		Username:       c.Username,
		Role:           c.Role,
		OrganizationId: c.OrganizationId,
		DepartmentId:   c.DepartmentId,
	}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

func (p *Principal) HasRole(roles ...string) bool {
	return p != nil && slices.Contains(roles, p.Role)
}

func requireAdmin(p *Principal) error {
	if !p.IsAdmin() {
		return errs.Forbidden("administrator role required")
	}
	return nil
}

var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt returns a timestamp strictly after prev at the database's
// microsecond precision.
func NextUpdatedAt(prev time.Time) time.Time {
	t := now()
	if !t.After(prev) {
		t = prev.Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return t
}

func oneOf(field, v string, allowed []string) error {
	if !slices.Contains(allowed, v) {
		return errs.Validation("%s must be one of %v", field, allowed)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func jsonMap(m map[string]any) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}

func jsonSlice(s []string) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](s)
}

func validateProgress(p int) error {
	if p < 0 || p > 100 {
		return errs.Unprocessable("progress must be within [0, 100], got %d", p)
	}
	return nil
}

func validateName(field, v string, max int) error {
	if v == "" {
		return errs.Validation("%s is required", field)
	}
	if len(v) > max {
		return errs.Validation("%s exceeds %d characters", field, max)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
