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
	"fmt"
	"math"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
)

// Functions a formula may call. Each takes a series or numbers.
var functions = []string{"sum", "mean", "median", "min", "max", "len", "abs", "round", "floor", "ceil"}

var (
	unaryOperators  = []string{"-", "+", "not", "!"}
	binaryOperators = []string{
		"+", "-", "*", "/", "%", "**", "^",
		"==", "!=", "<", ">", "<=", ">=",
		"and", "&&", "or", "||",
	}
)

// Program is a validated formula bound to the identifiers of its data source.
type Program struct {
	formula string
	idents  []string
	program *vm.Program
}

// Compile checks formula against the vocabulary and the identifiers of ds.
// Any failure is a formula-invalid error.
func Compile(formula string, ds model.DataSource) (*Program, error) {
	if formula == "" {
		return nil, errs.FormulaInvalid("formula is empty")
	}
	idents := ds.Identifiers()
	if len(idents) == 0 {
		return nil, errs.FormulaInvalid("data source declares no inputs")
	}

	tree, err := parser.Parse(formula)
	if err != nil {
		return nil, errs.FormulaInvalid("parse formula: %v", err)
	}
	w := &whitelist{idents: idents}
	ast.Walk(&tree.Node, w)
	if w.err != nil {
		return nil, errs.FormulaInvalid("%v", w.err)
	}

	program, err := expr.Compile(formula, expr.Env(env(idents, nil)))
	if err != nil {
		return nil, errs.FormulaInvalid("compile formula: %v", err)
	}
	return &Program{formula: formula, idents: idents, program: program}, nil
}

// whitelist records the first node outside the formula vocabulary.
type whitelist struct {
	idents []string
	err    error
}

func (w *whitelist) Visit(node *ast.Node) {
	if w.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.ConditionalNode:
	case *ast.IdentifierNode:
		if !slices.Contains(w.idents, n.Value) {
			w.err = fmt.Errorf("unknown identifier %q, declared inputs are %v", n.Value, w.idents)
		}
	case *ast.UnaryNode:
		if !slices.Contains(unaryOperators, n.Operator) {
			w.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.BinaryNode:
		if !slices.Contains(binaryOperators, n.Operator) {
			w.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.BuiltinNode:
		if !slices.Contains(functions, n.Name) {
			w.err = fmt.Errorf("function %s is not allowed", n.Name)
		}
	case *ast.CallNode:
		w.err = fmt.Errorf("function %s is not allowed", n.Callee)
	default:
		w.err = fmt.Errorf("expression %q is not allowed", n.String())
	}
}

// env binds every identifier to its series; missing series are empty.
func env(idents []string, inputs map[string][]float64) map[string]any {
	out := make(map[string]any, len(idents))
	for _, name := range idents {
		series := inputs[name]
		if series == nil {
			series = []float64{}
		}
		out[name] = series
	}
	return out
}

// Run evaluates the program over inputs. A result that is not a finite
// number is an error.
func (p *Program) Run(inputs map[string][]float64) (float64, error) {
	out, err := expr.Run(p.program, env(p.idents, inputs))
	if err != nil {
		return 0, err
	}
	var v float64
	switch x := out.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case bool:
		if x {
			v = 1
		}
	default:
		return 0, fmt.Errorf("formula returned %T, want a number", out)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("formula returned %v", v)
	}
	return v, nil
}

func (p *Program) Formula() string {
	return p.formula
}
