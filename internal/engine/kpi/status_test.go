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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arcade/workhub/internal/engine/model"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		value    float64
		previous *float64
		epsilon  float64
		want     string
	}{
		{80, nil, 0, model.TrendUnknown},
		{90, f64(80), 0, model.TrendUp},
		{90, f64(90), 0, model.TrendStable},
		{80, f64(90), 0, model.TrendDown},
		{90.5, f64(90), 0.5, model.TrendStable},
		{89.5, f64(90), 0.5, model.TrendStable},
		{90.6, f64(90), 0.5, model.TrendUp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Trend(tt.value, tt.previous, tt.epsilon), "value %v", tt.value)
	}
}

func TestStatus(t *testing.T) {
	target := f64(100)
	tests := []struct {
		name      string
		value     float64
		target    *float64
		direction string
		want      string
	}{
		{"no target", 5, nil, model.DirectionHigherIsBetter, model.KpiStatusNormal},
		{"met", 100, target, model.DirectionHigherIsBetter, model.KpiStatusSuccess},
		{"exceeded", 105, target, model.DirectionHigherIsBetter, model.KpiStatusSuccess},
		{"band edge is warning", 75, target, model.DirectionHigherIsBetter, model.KpiStatusWarning},
		{"inside band", 90, target, model.DirectionHigherIsBetter, model.KpiStatusWarning},
		{"past band", 74.99, target, model.DirectionHigherIsBetter, model.KpiStatusCritical},
		{"lower met", 90, target, model.DirectionLowerIsBetter, model.KpiStatusSuccess},
		{"lower band edge", 125, target, model.DirectionLowerIsBetter, model.KpiStatusWarning},
		{"lower past band", 125.01, target, model.DirectionLowerIsBetter, model.KpiStatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.value, tt.target, 0.25, tt.direction))
		})
	}
}

func TestInsights(t *testing.T) {
	got := insights(90, f64(80), f64(100))
	assert.Equal(t, 10.0, got["delta"])
	assert.Equal(t, 12.5, got["deltaPercent"])
	assert.Equal(t, 10.0, got["distanceToTarget"])
	assert.Equal(t, 90.0, got["attainmentPercent"])

	assert.Empty(t, insights(90, nil, nil))
}

func TestNotifiable(t *testing.T) {
	warning, critical := model.KpiStatusWarning, model.KpiStatusCritical
	assert.True(t, notifiable(nil, warning))
	assert.True(t, notifiable(&warning, critical))
	assert.False(t, notifiable(&warning, warning))
	assert.False(t, notifiable(&critical, model.KpiStatusSuccess))
	assert.False(t, notifiable(nil, model.KpiStatusError))
}
