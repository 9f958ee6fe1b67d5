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
	"fmt"
	"strings"
)

// Local is one slot of a method's locals table.
type Local struct {
	Name string
	Type Type
}

// Region is a protected region of a method body. Both ranges are
// half-open position ranges of the same body, and the ordering
//
//	TryStart <= TryEnd <= HandlerStart <= HandlerEnd
//
// always holds. Inner regions come before outer ones in the table.
type Region struct {
	TryStart     int
	TryEnd       int
	HandlerStart int
	HandlerEnd   int
	CatchType    Type
}

func (r Region) InTry(pc int) bool {
	return pc >= r.TryStart && pc < r.TryEnd
}

func (r Region) InHandler(pc int) bool {
	return pc >= r.HandlerStart && pc < r.HandlerEnd
}

// Catches reports whether an exception named typ is caught by r.
func (r Region) Catches(typ string) bool {
	return r.CatchType == AnyException || string(r.CatchType) == typ
}

func (r Region) String() string {
	return fmt.Sprintf(
		"try L_%04d..L_%04d catch(%s) L_%04d..L_%04d",
		r.TryStart,
		r.TryEnd,
		r.CatchType,
		r.HandlerStart,
		r.HandlerEnd,
	)
}

// MethodBody is the instruction sequence of one method together with its
// locals and protected regions.
type MethodBody struct {
	Instrs  []Instr
	Locals  []Local
	Regions []Region
}

// AddLocal appends a new slot and returns its index.
func (b *MethodBody) AddLocal(name string, t Type) int {
	b.Locals = append(b.Locals, Local{Name: name, Type: t})
	return len(b.Locals) - 1
}

func (b *MethodBody) Clone() *MethodBody {
	return &MethodBody{
		Instrs:  append([]Instr(nil), b.Instrs...),
		Locals:  append([]Local(nil), b.Locals...),
		Regions: append([]Region(nil), b.Regions...),
	}
}

// Disassemble renders the body in a human readable form.
func Disassemble(b *MethodBody) string {
	var sb strings.Builder
	for i, v := range b.Locals {
		fmt.Fprintf(&sb, ".local %d %s %s\n", i, v.Type, v.Name)
	}
	for _, r := range b.Regions {
		fmt.Fprintf(&sb, ".region %s\n", r)
	}
	for pc, ins := range b.Instrs {
		fmt.Fprintf(&sb, "L_%04d: %s\n", pc, ins)
	}
	return sb.String()
}
