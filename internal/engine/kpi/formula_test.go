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
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
)

var hoursSource = model.DataSource{
	Type:    model.DataSourceTable,
	Table:   "tasks",
	Columns: []string{"spent_hours", "estimated_hours"},
}

func TestCompile_Accepts(t *testing.T) {
	formulas := []string{
		"sum(spent_hours)",
		"sum(spent_hours) / len(spent_hours)",
		"round(mean(spent_hours) * 100) / 100",
		"max(spent_hours) > 10 ? 1 : 0",
		"median(estimated_hours) - min(spent_hours) ** 2",
		"abs(floor(sum(spent_hours)) - ceil(sum(estimated_hours)))",
		"not (len(spent_hours) == 0) and sum(spent_hours) >= 1",
	}
	for _, f := range formulas {
		t.Run(f, func(t *testing.T) {
			p, err := Compile(f, hoursSource)
			require.NoError(t, err)
			assert.Equal(t, f, p.Formula())
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	formulas := []string{
		"",
		"sum(spent_hours",
		"sum(budget)",
		"spent_hours.value",
		"spent_hours[0]",
		`"forty two"`,
		"{a: 1}",
		"[1, 2, 3]",
		"filter(spent_hours, # > 1)",
		"count(spent_hours, # > 1)",
		"now()",
		"system(spent_hours)",
		"1..3",
		"1 in spent_hours",
		"let y = 1; y",
		"$env",
		"sum(spent_hours) ?? 0",
	}
	for _, f := range formulas {
		t.Run(f, func(t *testing.T) {
			_, err := Compile(f, hoursSource)
			require.Error(t, err)
			assert.Equal(t, errs.KindFormulaInvalid, errs.KindOf(err))
		})
	}
}

func TestCompile_StaticIdentifiers(t *testing.T) {
	ds := model.DataSource{Type: model.DataSourceStatic, Values: map[string][]float64{"x": {1, 2}, "y": {3}}}
	p, err := Compile("sum(x) + sum(y)", ds)
	require.NoError(t, err)

	v, err := p.Run(ds.Values)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	_, err = Compile("sum(z)", ds)
	assert.Equal(t, errs.KindFormulaInvalid, errs.KindOf(err))

	_, err = Compile("1", model.DataSource{Type: model.DataSourceStatic})
	assert.Equal(t, errs.KindFormulaInvalid, errs.KindOf(err))
}

func TestProgram_Run(t *testing.T) {
	inputs := map[string][]float64{"spent_hours": {2, 4, 6}}

	p, err := Compile("len(spent_hours)", hoursSource)
	require.NoError(t, err)
	v, err := p.Run(inputs)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	p, err = Compile("mean(spent_hours)", hoursSource)
	require.NoError(t, err)
	v, err = p.Run(inputs)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	p, err = Compile("sum(estimated_hours)", hoursSource)
	require.NoError(t, err)
	v, err = p.Run(inputs)
	require.NoError(t, err, "missing series are empty")
	assert.Equal(t, 0.0, v)

	p, err = Compile("sum(spent_hours) / sum(estimated_hours)", hoursSource)
	require.NoError(t, err)
	_, err = p.Run(inputs)
	assert.Error(t, err, "division by zero is not a finite result")
}
