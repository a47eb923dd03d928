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

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendStable  = "stable"
	TrendUnknown = "unknown"

	KpiStatusNormal   = "normal"
	KpiStatusWarning  = "warning"
	KpiStatusCritical = "critical"
	KpiStatusSuccess  = "success"
	KpiStatusError    = "error"

	DirectionHigherIsBetter = "higher_is_better"
	DirectionLowerIsBetter  = "lower_is_better"

	DataSourceTable  = "table"
	DataSourceStatic = "static"
)

// DataSource binds formula identifiers to input series. A table source reads
// whitelisted numeric columns, a static source carries the values inline.
type DataSource struct {
	Type       string               `json:"type"`
	Table      string               `json:"table,omitempty"`
	Columns    []string             `json:"columns,omitempty"`
	Filters    map[string]any       `json:"filters,omitempty"`
	TimeColumn string               `json:"timeColumn,omitempty"`
	Values     map[string][]float64 `json:"values,omitempty"`
}

// Identifiers returns the names a formula may reference, sorted.
func (d DataSource) Identifiers() []string {
	var names []string
	switch d.Type {
	case DataSourceStatic:
		for name := range d.Values {
			names = append(names, name)
		}
	default:
		names = append(names, d.Columns...)
	}
	sort.Strings(names)
	return names
}

type KPI struct {
	BaseModel
	Name              string                         `gorm:"column:name" json:"name"`
	Description       *string                        `gorm:"column:description" json:"description,omitempty"`
	Formula           string                         `gorm:"column:formula" json:"formula"`
	DataSource        datatypes.JSONType[DataSource] `gorm:"column:data_source;type:jsonb" json:"dataSource"`
	TargetValue       *float64                       `gorm:"column:target_value" json:"targetValue,omitempty"`
	WarningBand       float64                        `gorm:"column:warning_band" json:"warningBand"`
	TrendEpsilon      float64                        `gorm:"column:trend_epsilon" json:"trendEpsilon"`
	Direction         string                         `gorm:"column:direction" json:"direction"`
	Unit              *string                        `gorm:"column:unit" json:"unit,omitempty"`
	Category          *string                        `gorm:"column:category" json:"category,omitempty"`
	IsActive          bool                           `gorm:"column:is_active" json:"isActive"`
	CreatedBy         uint64                         `gorm:"column:created_by" json:"createdBy"`
	OrganizationId    *uint64                        `gorm:"column:organization_id" json:"organizationId,omitempty"`
	DepartmentId      *uint64                        `gorm:"column:department_id" json:"departmentId,omitempty"`
	LastCalculationAt *time.Time                     `gorm:"column:last_calculation_at" json:"lastCalculationAt,omitempty"`
	LastStatus        *string                        `gorm:"column:last_status" json:"lastStatus,omitempty"`
}

func (KPI) TableName() string {
	return "kpis"
}

type KPICalculation struct {
	BaseModel
	KpiId         uint64            `gorm:"column:kpi_id" json:"kpiId"`
	CalculationId string            `gorm:"column:calculation_id" json:"calculationId"`
	Value         *float64          `gorm:"column:value" json:"value"`
	TargetValue   *float64          `gorm:"column:target_value" json:"targetValue,omitempty"`
	PreviousValue *float64          `gorm:"column:previous_value" json:"previousValue,omitempty"`
	Trend         string            `gorm:"column:trend" json:"trend"`
	Status        string            `gorm:"column:status" json:"status"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
	Insights      datatypes.JSONMap `gorm:"column:insights;type:jsonb" json:"insights"`
	WindowStart   *time.Time        `gorm:"column:window_start" json:"windowStart,omitempty"`
	WindowEnd     *time.Time        `gorm:"column:window_end" json:"windowEnd,omitempty"`
	CalculatedAt  time.Time         `gorm:"column:calculated_at" json:"calculatedAt"`
}

func (KPICalculation) TableName() string {
	return "kpi_calculations"
}

type KPITemplate struct {
	BaseModel
	Name        string                         `gorm:"column:name" json:"name"`
	Description *string                        `gorm:"column:description" json:"description,omitempty"`
	Formula     string                         `gorm:"column:formula" json:"formula"`
	DataSource  datatypes.JSONType[DataSource] `gorm:"column:data_source;type:jsonb" json:"dataSource"`
	TargetValue *float64                       `gorm:"column:target_value" json:"targetValue,omitempty"`
	WarningBand float64                        `gorm:"column:warning_band" json:"warningBand"`
	Direction   string                         `gorm:"column:direction" json:"direction"`
	Unit        *string                        `gorm:"column:unit" json:"unit,omitempty"`
	Category    *string                        `gorm:"column:category" json:"category,omitempty"`
}

func (KPITemplate) TableName() string {
	return "kpi_templates"
}

type KPINotification struct {
	BaseModel
	KpiId          uint64     `gorm:"column:kpi_id" json:"kpiId"`
	CalculationId  string     `gorm:"column:calculation_id" json:"calculationId"`
	Status         string     `gorm:"column:status" json:"status"`
	PreviousStatus *string    `gorm:"column:previous_status" json:"previousStatus,omitempty"`
	Message        string     `gorm:"column:message" json:"message"`
	IsRead         bool       `gorm:"column:is_read" json:"isRead"`
	DeliveredAt    *time.Time `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
}

func (KPINotification) TableName() string {
	return "kpi_notifications"
}

type KPISchedule struct {
	BaseModel
	KpiId          uint64     `gorm:"column:kpi_id" json:"kpiId"`
	CronExpression string     `gorm:"column:cron_expression" json:"cronExpression"`
	TimeoutSeconds int        `gorm:"column:timeout_seconds" json:"timeoutSeconds"`
	IsActive       bool       `gorm:"column:is_active" json:"isActive"`
	LastRunAt      *time.Time `gorm:"column:last_run_at" json:"lastRunAt,omitempty"`
}

func (KPISchedule) TableName() string {
	return "kpi_schedules"
}

type CreateKpiReq struct {
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	Formula        string     `json:"formula"`
	DataSource     DataSource `json:"dataSource"`
	TargetValue    *float64   `json:"targetValue"`
	WarningBand    *float64   `json:"warningBand"`
	TrendEpsilon   *float64   `json:"trendEpsilon"`
	Direction      string     `json:"direction"`
	Unit           *string    `json:"unit"`
	Category       *string    `json:"category"`
	OrganizationId *uint64    `json:"organizationId"`
	DepartmentId   *uint64    `json:"departmentId"`
}

type UpdateKpiReq struct {
	Name         *string     `json:"name"`
	Description  *string     `json:"description"`
	Formula      *string     `json:"formula"`
	DataSource   *DataSource `json:"dataSource"`
	TargetValue  *float64    `json:"targetValue"`
	WarningBand  *float64    `json:"warningBand"`
	TrendEpsilon *float64    `json:"trendEpsilon"`
	Direction    *string     `json:"direction"`
	Unit         *string     `json:"unit"`
	Category     *string     `json:"category"`
	IsActive     *bool       `json:"isActive"`
}

type KpiQuery struct {
	PageReq
	Category       string  `query:"category"`
	IsActive       *bool   `query:"isActive"`
	OrganizationId *uint64 `query:"organizationId"`
}

// CalculateReq names the KPIs to evaluate over the window [From, To).
type CalculateReq struct {
	KpiIds []uint64   `json:"kpiIds"`
	From   *time.Time `json:"from"`
	To     *time.Time `json:"to"`
}

type InstantiateKpiReq struct {
	Name           *string  `json:"name"`
	TargetValue    *float64 `json:"targetValue"`
	OrganizationId *uint64  `json:"organizationId"`
	DepartmentId   *uint64  `json:"departmentId"`
}

type CreateScheduleReq struct {
	KpiId          uint64 `json:"kpiId"`
	CronExpression string `json:"cronExpression"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type CreateKpiTemplateReq struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Formula     string     `json:"formula"`
	DataSource  DataSource `json:"dataSource"`
	TargetValue *float64   `json:"targetValue"`
	WarningBand *float64   `json:"warningBand"`
	Direction   string     `json:"direction"`
	Unit        *string    `json:"unit"`
	Category    *string    `json:"category"`
}

type ScheduleQuery struct {
	PageReq
	KpiId *uint64 `query:"kpiId"`
}

type NotificationQuery struct {
	PageReq
	KpiId  *uint64 `query:"kpiId"`
	Unread bool    `query:"unread"`
}
