/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package filter

import (
	"github.com/cloudwego/loom/ir"
	"github.com/hashicorp/go-bexpr"
	"github.com/pkg/errors"
)

// TypeView is what type expressions are evaluated against.
type TypeView struct {
	Name       string
	Kind       string
	Interfaces []string
}

// MethodView is what method expressions are evaluated against.
type MethodView struct {
	Owner     string
	Name      string
	Signature string
	Static    bool
	Return    string
	Params    []string
}

type FieldView struct {
	Name   string
	Type   string
	Static bool
}

type CallView struct {
	Owner     string
	Name      string
	Signature string
	HasThis   bool
	Return    string
}

type NewView struct {
	Class string
}

func compile[T any, V any](expr string, view func(T) V) (Predicate[T], error) {
	eval, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter expression %q", expr)
	}
	return func(v T) (bool, error) {
		ok, err := eval.Evaluate(view(v))
		if err != nil {
			return false, errors.Wrapf(err, "evaluate %q", expr)
		}
		return ok, nil
	}, nil
}

// ExprTypes compiles a go-bexpr expression over TypeView, for example
//
//	Name matches "^Service" and "IDisposable" not in Interfaces
func ExprTypes(expr string) (Predicate[*ir.TypeDef], error) {
	return compile(expr, func(t *ir.TypeDef) TypeView {
		return TypeView{
			Name:       t.Name,
			Kind:       t.Kind.String(),
			Interfaces: append([]string{}, t.Interfaces...),
		}
	})
}

// ExprMethods compiles a go-bexpr expression over MethodView, for example
//
//	Name matches "^divide" and Static == true
func ExprMethods(expr string) (Predicate[*ir.MethodDef], error) {
	return compile(expr, func(m *ir.MethodDef) MethodView {
		ps := make([]string, len(m.Params))
		for i, p := range m.Params {
			ps[i] = string(p.Type)
		}
		ret := m.Return
		if ret.IsVoid() {
			ret = ir.Void
		}
		return MethodView{
			Owner:     m.Owner,
			Name:      m.Name,
			Signature: m.Signature(),
			Static:    m.Static,
			Return:    string(ret),
			Params:    ps,
		}
	})
}

func ExprFields(expr string) (Predicate[*ir.FieldDef], error) {
	return compile(expr, func(f *ir.FieldDef) FieldView {
		return FieldView{Name: f.Name, Type: string(f.Type), Static: f.Static}
	})
}

func ExprMethodCalls(expr string) (Predicate[ir.MethodRef], error) {
	return compile(expr, func(r ir.MethodRef) CallView {
		return CallView{
			Owner:     r.Owner,
			Name:      r.Name,
			Signature: r.Key(),
			HasThis:   r.HasThis,
			Return:    string(r.Return),
		}
	})
}

func ExprNewInstances(expr string) (Predicate[string], error) {
	return compile(expr, func(class string) NewView {
		return NewView{Class: class}
	})
}
