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
	"math"

	"github.com/go-arcade/workhub/internal/engine/model"
)

// Trend compares value with the previous result. A difference within
// epsilon, inclusive, is stable.
func Trend(value float64, previous *float64, epsilon float64) string {
	if previous == nil {
		return model.TrendUnknown
	}
	d := value - *previous
	switch {
	case math.Abs(d) <= epsilon:
		return model.TrendStable
	case d > 0:
		return model.TrendUp
	default:
		return model.TrendDown
	}
}

// Status compares value with target. Values on the edge of the warning band
// are warnings; only values beyond it are critical.
func Status(value float64, target *float64, band float64, direction string) string {
	if target == nil {
		return model.KpiStatusNormal
	}
	t := *target
	slack := math.Abs(t) * band
	if direction == model.DirectionLowerIsBetter {
		switch {
		case value <= t:
			return model.KpiStatusSuccess
		case value <= t+slack:
			return model.KpiStatusWarning
		default:
			return model.KpiStatusCritical
		}
	}
	switch {
	case value >= t:
		return model.KpiStatusSuccess
	case value >= t-slack:
		return model.KpiStatusWarning
	default:
		return model.KpiStatusCritical
	}
}

func insights(value float64, previous, target *float64) map[string]any {
	out := map[string]any{}
	if previous != nil {
		out["delta"] = round4(value - *previous)
		if *previous != 0 {
			out["deltaPercent"] = round4(100 * (value - *previous) / math.Abs(*previous))
		}
	}
	if target != nil {
		out["distanceToTarget"] = round4(*target - value)
		if *target != 0 {
			out["attainmentPercent"] = round4(100 * value / *target)
		}
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// notifiable reports whether moving from previous to status raises a
// notification.
func notifiable(previous *string, status string) bool {
	if status != model.KpiStatusWarning && status != model.KpiStatusCritical {
		return false
	}
	return previous == nil || *previous != status
}
