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
	"time"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

type IKpiRepository interface {
	Create(ctx context.Context, k *model.KPI) error
	Get(ctx context.Context, id uint64) (*model.KPI, error)
	List(ctx context.Context, q *model.KpiQuery) ([]*model.KPI, int64, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error

	// LastCalculation returns the most recent calculation, or nil when the
	// KPI was never evaluated.
	LastCalculation(ctx context.Context, kpiId uint64) (*model.KPICalculation, error)
	AppendCalculation(ctx context.Context, c *model.KPICalculation) error
	ListCalculations(ctx context.Context, kpiId uint64, page model.PageReq) ([]*model.KPICalculation, int64, error)
	// MarkCalculated records the last calculation time and status on the KPI
	MarkCalculated(ctx context.Context, kpiId uint64, at time.Time, status string) error

	CreateNotification(ctx context.Context, n *model.KPINotification) error
	MarkDelivered(ctx context.Context, notificationId uint64, at time.Time) error

	ActiveSchedules(ctx context.Context) ([]*model.KPISchedule, error)
	TouchSchedule(ctx context.Context, scheduleId uint64, at time.Time) error
}

type KpiRepo struct {
	*CrudRepo[model.KPI]
}

func NewKpiRepo(db database.IDatabase) IKpiRepository {
	return &KpiRepo{CrudRepo: NewCrudRepo[model.KPI](db)}
}

func (r *KpiRepo) List(ctx context.Context, q *model.KpiQuery) ([]*model.KPI, int64, error) {
	db := r.DB(ctx).Model(&model.KPI{})
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.IsActive != nil {
		db = db.Where("is_active = ?", *q.IsActive)
	}
	if q.OrganizationId != nil {
		db = db.Where("organization_id = ?", *q.OrganizationId)
	}
	return paginate[model.KPI](db, q.PageReq)
}

func (r *KpiRepo) LastCalculation(ctx context.Context, kpiId uint64) (*model.KPICalculation, error) {
	var list []*model.KPICalculation
	err := database.ReadPrimary(r.DB(ctx)).
		Where("kpi_id = ?", kpiId).
		Order("calculated_at DESC, id DESC").
		Limit(1).
		Find(&list).Error
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *KpiRepo) AppendCalculation(ctx context.Context, c *model.KPICalculation) error {
	return r.DB(ctx).Create(c).Error
}

func (r *KpiRepo) ListCalculations(ctx context.Context, kpiId uint64, page model.PageReq) ([]*model.KPICalculation, int64, error) {
	db := r.DB(ctx).Model(&model.KPICalculation{}).Where("kpi_id = ?", kpiId)
	return paginate[model.KPICalculation](db, page)
}

func (r *KpiRepo) MarkCalculated(ctx context.Context, kpiId uint64, at time.Time, status string) error {
	return r.DB(ctx).Model(&model.KPI{}).
		Where("id = ?", kpiId).
		Updates(map[string]any{"last_calculation_at": at, "last_status": status}).Error
}

func (r *KpiRepo) CreateNotification(ctx context.Context, n *model.KPINotification) error {
	return r.DB(ctx).Create(n).Error
}

func (r *KpiRepo) MarkDelivered(ctx context.Context, notificationId uint64, at time.Time) error {
	return r.DB(ctx).Model(&model.KPINotification{}).
		Where("id = ?", notificationId).
		Updates(map[string]any{"delivered_at": at, "updated_at": at}).Error
}

func (r *KpiRepo) ActiveSchedules(ctx context.Context) ([]*model.KPISchedule, error) {
	var list []*model.KPISchedule
	err := r.DB(ctx).
		Joins("JOIN kpis ON kpis.id = kpi_schedules.kpi_id AND kpis.is_active").
		Where("kpi_schedules.is_active").
		Order("kpi_schedules.id").
		Find(&list).Error
	return list, err
}

func (r *KpiRepo) TouchSchedule(ctx context.Context, scheduleId uint64, at time.Time) error {
	return r.DB(ctx).Model(&model.KPISchedule{}).
		Where("id = ?", scheduleId).
		Update("last_run_at", at).Error
}
