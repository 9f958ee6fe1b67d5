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

package ir

import (
	"strings"
)

// Type names a value type of the IR. Anything that is not one of the
// builtin names below refers to a class and is a reference type.
type Type string

const (
	Void         Type = "void"
	Int          Type = "int"
	Bool         Type = "bool"
	String       Type = "string"
	Object       Type = "object"
	Array        Type = "array"
	AnyException Type = "exception"
)

// IsVoid reports whether t denotes the absence of a value. The empty type
// is treated as void.
func (t Type) IsVoid() bool {
	return t == Void || t == ""
}

// Zero returns the default value of t as seen by the interpreter.
func (t Type) Zero() interface{} {
	switch t {
	case Int:
		return int64(0)
	case Bool:
		return false
	case String:
		return ""
	default:
		return nil
	}
}

type TypeKind int32

const (
	Class TypeKind = iota
	Struct
	Interface
)

func (k TypeKind) String() string {
	switch k {
	case Class:
		return "class"
	case Struct:
		return "struct"
	case Interface:
		return "interface"
	default:
		return "unknown"
	}
}

// MethodRef is an entry of the module reference table. Call instructions
// carry the index of a MethodRef as their token.
type MethodRef struct {
	Owner   string
	Name    string
	HasThis bool
	Params  []Type
	Return  Type
}

// Key identifies the reference inside a reference table.
func (r MethodRef) Key() string {
	var sb strings.Builder
	sb.WriteString(r.Owner)
	sb.WriteString("::")
	sb.WriteString(r.Name)
	sb.WriteByte('(')
	if r.HasThis {
		sb.WriteString("this")
		if len(r.Params) != 0 {
			sb.WriteByte(',')
		}
	}
	for i, p := range r.Params {
		if i != 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(string(p))
	}
	sb.WriteString("):")
	sb.WriteString(string(r.returns()))
	return sb.String()
}

// Arity is the number of stack values consumed by a call to r.
func (r MethodRef) Arity() int {
	if r.HasThis {
		return len(r.Params) + 1
	}
	return len(r.Params)
}

func (r MethodRef) returns() Type {
	if r.Return.IsVoid() {
		return Void
	}
	return r.Return
}

type Param struct {
	Name string
	Type Type
}

type FieldDef struct {
	Name   string
	Type   Type
	Static bool
}

type MethodDef struct {
	Owner  string
	Name   string
	Static bool
	Params []Param
	Return Type
	Body   *MethodBody
}

// Signature is the identity of the method handed to the runtime, e.g.
// "Calc::divide(int,int):int".
func (m *MethodDef) Signature() string {
	return m.Ref().Key()
}

// Ref returns the reference a call site would use to invoke m.
func (m *MethodDef) Ref() MethodRef {
	ps := make([]Type, len(m.Params))
	for i, p := range m.Params {
		ps[i] = p.Type
	}
	return MethodRef{
		Owner:   m.Owner,
		Name:    m.Name,
		HasThis: !m.Static,
		Params:  ps,
		Return:  m.Return,
	}
}

// NumArgs counts the argument slots of m, including the receiver.
func (m *MethodDef) NumArgs() int {
	if m.Static {
		return len(m.Params)
	}
	return len(m.Params) + 1
}

func (m *MethodDef) Clone() *MethodDef {
	ret := *m
	ret.Params = append([]Param(nil), m.Params...)
	if m.Body != nil {
		ret.Body = m.Body.Clone()
	}
	return &ret
}

type TypeDef struct {
	Name       string
	Kind       TypeKind
	Interfaces []string
	Fields     []*FieldDef
	Methods    []*MethodDef
}

func (t *TypeDef) Implements(iface string) bool {
	for _, v := range t.Interfaces {
		if v == iface {
			return true
		}
	}
	return false
}

func (t *TypeDef) Field(name string) *FieldDef {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (t *TypeDef) Method(name string) *MethodDef {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AddMethod appends m to t and takes ownership of it.
func (t *TypeDef) AddMethod(m *MethodDef) *MethodDef {
	m.Owner = t.Name
	t.Methods = append(t.Methods, m)
	return m
}

func (t *TypeDef) Clone() *TypeDef {
	ret := &TypeDef{
		Name:       t.Name,
		Kind:       t.Kind,
		Interfaces: append([]string(nil), t.Interfaces...),
	}
	for _, f := range t.Fields {
		fv := *f
		ret.Fields = append(ret.Fields, &fv)
	}
	for _, m := range t.Methods {
		ret.Methods = append(ret.Methods, m.Clone())
	}
	return ret
}

// Module is one compiled binary module: its types and the table of
// method references its code may call.
type Module struct {
	Name  string
	Refs  []MethodRef
	Types []*TypeDef
}

// Import registers ref in the reference table and returns its token. The
// same reference is only ever added once.
func (m *Module) Import(ref MethodRef) int {
	key := ref.Key()
	for i, r := range m.Refs {
		if r.Key() == key {
			return i
		}
	}
	m.Refs = append(m.Refs, ref)
	return len(m.Refs) - 1
}

func (m *Module) Type(name string) *TypeDef {
	for _, t := range m.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Resolve finds the method definition a reference points to, if the
// module defines it.
func (m *Module) Resolve(ref MethodRef) *MethodDef {
	t := m.Type(ref.Owner)
	if t == nil {
		return nil
	}
	for _, md := range t.Methods {
		if md.Name == ref.Name && md.Static != ref.HasThis && len(md.Params) == len(ref.Params) {
			return md
		}
	}
	return nil
}

func (m *Module) Clone() *Module {
	ret := &Module{Name: m.Name}
	for _, r := range m.Refs {
		r.Params = append([]Type(nil), r.Params...)
		ret.Refs = append(ret.Refs, r)
	}
	for _, t := range m.Types {
		ret.Types = append(ret.Types, t.Clone())
	}
	return ret
}
