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
	"math"
	"slices"
	"strconv"

	"gorm.io/datatypes"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
)

// Identified is a pointer to a row whose identity can be cleared before insert.
type Identified[T any] interface {
	*T
	ResetIdentity()
}

// Resource is plain CRUD over one table. fields maps the JSON names a client
// may filter or patch on to their columns.
type Resource[T any, PT Identified[T]] struct {
	tx      Transactor
	rows    *repo.CrudRepo[T]
	name    string
	fields  map[string]string
	prepare func(p *Principal, v PT)
}

func NewResource[T any, PT Identified[T]](tx Transactor, rows *repo.CrudRepo[T], name string, fields map[string]string, prepare func(*Principal, PT)) *Resource[T, PT] {
	return &Resource[T, PT]{tx: tx, rows: rows, name: name, fields: fields, prepare: prepare}
}

func (r *Resource[T, PT]) Name() string {
	return r.name
}

func (r *Resource[T, PT]) Create(ctx context.Context, p *Principal, v PT) (PT, error) {
	v.ResetIdentity()
	if r.prepare != nil {
		r.prepare(p, v)
	}
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(r.rows.Create(ctx, (*T)(v)), r.name)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Resource[T, PT]) Get(ctx context.Context, id uint64) (*T, error) {
	v, err := r.rows.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, r.name)
	}
	return v, nil
}

// List filters on the whitelisted fields found in query; other keys are
// ignored.
func (r *Resource[T, PT]) List(ctx context.Context, query map[string]string, page model.PageReq) (*model.ListResp[*T], error) {
	page.Normalize()
	filter := repo.Filter{}
	for key, raw := range query {
		column, ok := r.fields[key]
		if !ok {
			continue
		}
		filter[column] = scalar(raw)
	}
	list, total, err := r.rows.List(ctx, filter, page)
	if err != nil {
		return nil, errs.FromDB(err, r.name)
	}
	return model.NewListResp(list, total, page), nil
}

func (r *Resource[T, PT]) Update(ctx context.Context, id uint64, patch map[string]any) (*T, error) {
	updates := map[string]any{}
	for key, value := range patch {
		column, ok := r.fields[key]
		if !ok {
			continue
		}
		updates[column] = columnValue(value)
	}
	if len(updates) == 0 {
		return nil, errs.Validation("no updatable field in request, expected one of %v", r.fieldNames())
	}

	var v *T
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := r.rows.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, r.name)
		}
		var err error
		v, err = r.rows.Get(ctx, id)
		return errs.FromDB(err, r.name)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Resource[T, PT]) Delete(ctx context.Context, id uint64) error {
	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(r.rows.Delete(ctx, id), r.name)
	})
}

func (r *Resource[T, PT]) fieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func scalar(raw string) any {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// columnValue adapts decoded JSON to what the driver binds: whole numbers
// become integers and objects become jsonb.
func columnValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case map[string]any:
		return datatypes.JSONMap(x)
	}
	return v
}

// DashboardService exposes the dashboarding tables.
type DashboardService struct {
	Flows          *Resource[model.Flow, *model.Flow]
	WidgetTypes    *Resource[model.WidgetType, *model.WidgetType]
	Dashboards     *Resource[model.Dashboard, *model.Dashboard]
	DashboardDatas *Resource[model.DashboardData, *model.DashboardData]
	Widgets        *Resource[model.Widget, *model.Widget]
	Access         *Resource[model.AccessDashboard, *model.AccessDashboard]
	FlowDashboards *Resource[model.FlowDashboard, *model.FlowDashboard]
	Groups         *Resource[model.GroupUser, *model.GroupUser]
	GroupMembers   *Resource[model.UserGroup, *model.UserGroup]
}

func NewDashboardService(tx Transactor, r *repo.DashboardRepos) *DashboardService {
	named := map[string]string{"name": "name", "description": "description"}
	return &DashboardService{
		Flows:       NewResource(tx, r.Flows, "flow", named, nil),
		WidgetTypes: NewResource(tx, r.WidgetTypes, "widget type", named, nil),
		Dashboards: NewResource(tx, r.Dashboards, "dashboard",
			map[string]string{"ownerId": "owner_id", "title": "title", "description": "description"},
			func(p *Principal, d *model.Dashboard) {
				if d.OwnerId == 0 {
					d.OwnerId = p.UserId
				}
			}),
		DashboardDatas: NewResource(tx, r.DashboardDatas, "dashboard data",
			map[string]string{"dashboardId": "dashboard_id", "key": "key", "data": "data"},
			func(_ *Principal, d *model.DashboardData) { d.Data = jsonMap(d.Data) }),
		Widgets: NewResource(tx, r.Widgets, "widget",
			map[string]string{"dashboardId": "dashboard_id", "widgetTypeId": "widget_type_id", "title": "title", "config": "config", "position": "position"},
			func(_ *Principal, w *model.Widget) { w.Config = jsonMap(w.Config) }),
		Access: NewResource(tx, r.Access, "dashboard access",
			map[string]string{"dashboardId": "dashboard_id", "userId": "user_id", "accessLevel": "access_level"},
			func(_ *Principal, a *model.AccessDashboard) { a.AccessLevel = orDefault(a.AccessLevel, "view") }),
		FlowDashboards: NewResource(tx, r.FlowDashboards, "flow dashboard",
			map[string]string{"flowId": "flow_id", "dashboardId": "dashboard_id", "position": "position"}, nil),
		Groups: NewResource(tx, r.Groups, "user group",
			map[string]string{"name": "name", "ownerId": "owner_id"},
			func(p *Principal, g *model.GroupUser) {
				if g.OwnerId == 0 {
					g.OwnerId = p.UserId
				}
			}),
		GroupMembers: NewResource(tx, r.GroupMembers, "group member",
			map[string]string{"groupId": "group_id", "userId": "user_id"}, nil),
	}
}
