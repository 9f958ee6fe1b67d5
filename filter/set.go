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
)

// Set holds one predicate per selection capability. A nil predicate means
// the capability was not provided.
type Set struct {
	Types        Predicate[*ir.TypeDef]
	Methods      Predicate[*ir.MethodDef]
	Fields       Predicate[*ir.FieldDef]
	MethodCalls  Predicate[ir.MethodRef]
	NewInstances Predicate[string]
}

// Merge fills the capabilities missing from self with those of other. The
// first set providing a capability wins.
func (self Set) Merge(other Set) Set {
	if self.Types == nil {
		self.Types = other.Types
	}
	if self.Methods == nil {
		self.Methods = other.Methods
	}
	if self.Fields == nil {
		self.Fields = other.Fields
	}
	if self.MethodCalls == nil {
		self.MethodCalls = other.MethodCalls
	}
	if self.NewInstances == nil {
		self.NewInstances = other.NewInstances
	}
	return self
}

// Resolve returns a complete set. Missing capabilities select everything,
// and the type predicate is always combined with DefaultTypes.
func (self Set) Resolve() Set {
	return Set{
		Types:        And(DefaultTypes(), self.Types),
		Methods:      orAll(self.Methods),
		Fields:       orAll(self.Fields),
		MethodCalls:  orAll(self.MethodCalls),
		NewInstances: orAll(self.NewInstances),
	}
}

func orAll[T any](fn Predicate[T]) Predicate[T] {
	if fn == nil {
		return All[T]()
	} else {
		return fn
	}
}
