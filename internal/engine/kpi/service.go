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

package kpi

import (
	"context"
	"math"

	"gorm.io/datatypes"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cron"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/log"
)

// Service is the catalog surface of KPIs, their templates, schedules and
// notifications.
type Service struct {
	tx      service.Transactor
	kpis    repo.IKpiRepository
	support *repo.KpiSupportRepos
	engine  *Engine
	conf    config.KpiConfig
}

func NewService(tx service.Transactor, kpis repo.IKpiRepository, support *repo.KpiSupportRepos, engine *Engine, conf config.KpiConfig) *Service {
	conf.SetDefaults()
	return &Service{tx: tx, kpis: kpis, support: support, engine: engine, conf: conf}
}

type definition struct {
	name        string
	formula     string
	ds          model.DataSource
	band        float64
	epsilon     float64
	direction   string
	targetValue *float64
}

// validate checks a KPI or template definition. Formula problems are
// formula-invalid, everything else is a validation error.
func (d *definition) validate() error {
	if d.name == "" {
		return errs.Validation("name is required")
	}
	if len(d.name) > 255 {
		return errs.Validation("name exceeds 255 characters")
	}
	if d.direction != model.DirectionHigherIsBetter && d.direction != model.DirectionLowerIsBetter {
		return errs.Validation("direction must be one of [%s %s]", model.DirectionHigherIsBetter, model.DirectionLowerIsBetter)
	}
	if math.IsNaN(d.band) || d.band < 0 || d.band > 1 {
		return errs.Unprocessable("warningBand must be within [0, 1]")
	}
	if math.IsNaN(d.epsilon) || d.epsilon < 0 {
		return errs.Unprocessable("trendEpsilon must not be negative")
	}
	if d.targetValue != nil && (math.IsNaN(*d.targetValue) || math.IsInf(*d.targetValue, 0)) {
		return errs.Unprocessable("targetValue must be a finite number")
	}
	if err := repo.ValidateDataSource(d.ds); err != nil {
		return errs.Validation("dataSource: %v", err)
	}
	_, err := Compile(d.formula, d.ds)
	return err
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (s *Service) Create(ctx context.Context, p *service.Principal, req *model.CreateKpiReq) (*model.KPI, error) {
	k := &model.KPI{
		Name:           req.Name,
		Description:    req.Description,
		Formula:        req.Formula,
		DataSource:     datatypes.NewJSONType(req.DataSource),
		TargetValue:    req.TargetValue,
		WarningBand:    s.conf.DefaultWarningBand,
		Direction:      orDefault(req.Direction, model.DirectionHigherIsBetter),
		Unit:           req.Unit,
		Category:       req.Category,
		IsActive:       true,
		CreatedBy:      p.UserId,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
	}
	if req.WarningBand != nil {
		k.WarningBand = *req.WarningBand
	}
	if req.TrendEpsilon != nil {
		k.TrendEpsilon = *req.TrendEpsilon
	}
	if k.OrganizationId == nil {
		k.OrganizationId = p.OrganizationId
	}
	if k.DepartmentId == nil {
		k.DepartmentId = p.DepartmentId
	}
	if err := definitionOf(k).validate(); err != nil {
		return nil, err
	}
	if err := s.kpis.Create(ctx, k); err != nil {
		return nil, errs.FromDB(err, "kpi")
	}
	log.WithContext(ctx).Infow("kpi created", "kpi", k.ID, "name", k.Name, "by", p.UserId)
	return k, nil
}

func definitionOf(k *model.KPI) *definition {
	return &definition{
		name:        k.Name,
		formula:     k.Formula,
		ds:          k.DataSource.Data(),
		band:        k.WarningBand,
		epsilon:     k.TrendEpsilon,
		direction:   k.Direction,
		targetValue: k.TargetValue,
	}
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.KPI, error) {
	k, err := s.kpis.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "kpi")
	}
	return k, nil
}

func (s *Service) List(ctx context.Context, q *model.KpiQuery) (*model.ListResp[*model.KPI], error) {
	q.Normalize()
	list, total, err := s.kpis.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "kpi")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

// owner allows the creator of a KPI and administrators.
func owner(p *service.Principal, k *model.KPI) error {
	if p.IsAdmin() || (p != nil && p.UserId == k.CreatedBy) {
		return nil
	}
	return errs.Forbidden("only the creator or an administrator may change kpi %d", k.ID)
}

func (s *Service) Update(ctx context.Context, p *service.Principal, id uint64, req *model.UpdateKpiReq) (*model.KPI, error) {
	var out *model.KPI
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		k, err := s.kpis.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, "kpi")
		}
		if err := owner(p, k); err != nil {
			return err
		}

		// 1. merge the patch into the definition
		updates := map[string]any{}
		if req.Name != nil {
			k.Name, updates["name"] = *req.Name, *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Formula != nil {
			k.Formula, updates["formula"] = *req.Formula, *req.Formula
		}
		if req.DataSource != nil {
			k.DataSource = datatypes.NewJSONType(*req.DataSource)
			updates["data_source"] = k.DataSource
		}
		if req.TargetValue != nil {
			k.TargetValue, updates["target_value"] = req.TargetValue, *req.TargetValue
		}
		if req.WarningBand != nil {
			k.WarningBand, updates["warning_band"] = *req.WarningBand, *req.WarningBand
		}
		if req.TrendEpsilon != nil {
			k.TrendEpsilon, updates["trend_epsilon"] = *req.TrendEpsilon, *req.TrendEpsilon
		}
		if req.Direction != nil {
			k.Direction, updates["direction"] = *req.Direction, *req.Direction
		}
		if req.Unit != nil {
			updates["unit"] = *req.Unit
		}
		if req.Category != nil {
			updates["category"] = *req.Category
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}

		// 2. the merged definition must still be valid
		if err := definitionOf(k).validate(); err != nil {
			return err
		}
		updates["updated_at"] = service.NextUpdatedAt(k.UpdatedAt)
		if err := s.kpis.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, "kpi")
		}
		out, err = s.kpis.Get(ctx, id)
		return errs.FromDB(err, "kpi")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, p *service.Principal, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		k, err := s.kpis.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, "kpi")
		}
		if err := owner(p, k); err != nil {
			return err
		}
		return errs.FromDB(s.kpis.Delete(ctx, id), "kpi")
	})
}

func (s *Service) Calculate(ctx context.Context, req *model.CalculateReq) ([]*model.KPICalculation, error) {
	return s.engine.Calculate(ctx, req)
}

func (s *Service) Calculations(ctx context.Context, id uint64, page model.PageReq) (*model.ListResp[*model.KPICalculation], error) {
	if _, err := s.kpis.Get(ctx, id); err != nil {
		return nil, errs.FromDB(err, "kpi")
	}
	page.Normalize()
	list, total, err := s.kpis.ListCalculations(ctx, id, page)
	if err != nil {
		return nil, errs.FromDB(err, "kpi calculation")
	}
	return model.NewListResp(list, total, page), nil
}

func (s *Service) CreateTemplate(ctx context.Context, req *model.CreateKpiTemplateReq) (*model.KPITemplate, error) {
	t := &model.KPITemplate{
		Name:        req.Name,
		Description: req.Description,
		Formula:     req.Formula,
		DataSource:  datatypes.NewJSONType(req.DataSource),
		TargetValue: req.TargetValue,
		WarningBand: s.conf.DefaultWarningBand,
		Direction:   orDefault(req.Direction, model.DirectionHigherIsBetter),
		Unit:        req.Unit,
		Category:    req.Category,
	}
	if req.WarningBand != nil {
		t.WarningBand = *req.WarningBand
	}
	d := &definition{name: t.Name, formula: t.Formula, ds: req.DataSource, band: t.WarningBand, direction: t.Direction, targetValue: t.TargetValue}
	if err := d.validate(); err != nil {
		return nil, err
	}
	if err := s.support.Templates.Create(ctx, t); err != nil {
		return nil, errs.FromDB(err, "kpi template")
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, page model.PageReq) (*model.ListResp[*model.KPITemplate], error) {
	page.Normalize()
	list, total, err := s.support.Templates.List(ctx, nil, page)
	if err != nil {
		return nil, errs.FromDB(err, "kpi template")
	}
	return model.NewListResp(list, total, page), nil
}

func (s *Service) DeleteTemplate(ctx context.Context, p *service.Principal, id uint64) error {
	if !p.HasRole(model.RoleAdmin, model.RoleManager) {
		return errs.Forbidden("deleting kpi templates requires a manager")
	}
	return errs.FromDB(s.support.Templates.Delete(ctx, id), "kpi template")
}

// Instantiate creates a KPI from a template, overriding the given fields.
func (s *Service) Instantiate(ctx context.Context, p *service.Principal, templateId uint64, req *model.InstantiateKpiReq) (*model.KPI, error) {
	t, err := s.support.Templates.Get(ctx, templateId)
	if err != nil {
		return nil, errs.FromDB(err, "kpi template")
	}
	create := &model.CreateKpiReq{
		Name:           t.Name,
		Description:    t.Description,
		Formula:        t.Formula,
		DataSource:     t.DataSource.Data(),
		TargetValue:    t.TargetValue,
		WarningBand:    &t.WarningBand,
		Direction:      t.Direction,
		Unit:           t.Unit,
		Category:       t.Category,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
	}
	if req.Name != nil {
		create.Name = *req.Name
	}
	if req.TargetValue != nil {
		create.TargetValue = req.TargetValue
	}
	return s.Create(ctx, p, create)
}

func (s *Service) CreateSchedule(ctx context.Context, p *service.Principal, req *model.CreateScheduleReq) (*model.KPISchedule, error) {
	var out *model.KPISchedule
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		k, err := s.kpis.Get(ctx, req.KpiId)
		if err != nil {
			return errs.FromDB(err, "kpi")
		}
		if err := owner(p, k); err != nil {
			return err
		}
		if _, err := cron.Parse(req.CronExpression); err != nil {
			return errs.Validation("%v", err)
		}
		if req.TimeoutSeconds < 0 {
			return errs.Unprocessable("timeoutSeconds must not be negative")
		}
		out = &model.KPISchedule{
			KpiId:          req.KpiId,
			CronExpression: req.CronExpression,
			TimeoutSeconds: req.TimeoutSeconds,
			IsActive:       true,
		}
		if out.TimeoutSeconds == 0 {
			out.TimeoutSeconds = s.conf.DefaultTimeout
		}
		return errs.FromDB(s.support.Schedules.Create(ctx, out), "kpi schedule")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListSchedules(ctx context.Context, q *model.ScheduleQuery) (*model.ListResp[*model.KPISchedule], error) {
	q.Normalize()
	filter := repo.Filter{}
	if q.KpiId != nil {
		filter["kpi_id"] = *q.KpiId
	}
	list, total, err := s.support.Schedules.List(ctx, filter, q.PageReq)
	if err != nil {
		return nil, errs.FromDB(err, "kpi schedule")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *Service) DeleteSchedule(ctx context.Context, p *service.Principal, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		sched, err := s.support.Schedules.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, "kpi schedule")
		}
		k, err := s.kpis.Get(ctx, sched.KpiId)
		if err != nil {
			return errs.FromDB(err, "kpi")
		}
		if err := owner(p, k); err != nil {
			return err
		}
		return errs.FromDB(s.support.Schedules.Delete(ctx, id), "kpi schedule")
	})
}

func (s *Service) ListNotifications(ctx context.Context, q *model.NotificationQuery) (*model.ListResp[*model.KPINotification], error) {
	q.Normalize()
	filter := repo.Filter{}
	if q.KpiId != nil {
		filter["kpi_id"] = *q.KpiId
	}
	if q.Unread {
		filter["is_read"] = false
	}
	list, total, err := s.support.Notifications.List(ctx, filter, q.PageReq)
	if err != nil {
		return nil, errs.FromDB(err, "kpi notification")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.support.Notifications.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "kpi notification")
		}
		return errs.FromDB(s.support.Notifications.Update(ctx, id, map[string]any{
			"is_read":    true,
			"updated_at": service.NextUpdatedAt(n.UpdatedAt),
		}), "kpi notification")
	})
}
