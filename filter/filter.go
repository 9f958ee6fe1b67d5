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

// Predicate decides whether an element takes part in weaving. Predicates
// must not have side effects. A returned error aborts the weaving run.
type Predicate[T any] func(v T) (bool, error)

// All selects everything.
func All[T any]() Predicate[T] {
	return func(T) (bool, error) { return true, nil }
}

// Pure adapts a predicate that cannot fail.
func Pure[T any](fn func(v T) bool) Predicate[T] {
	return func(v T) (bool, error) { return fn(v), nil }
}

// And selects v only if every predicate selects it. Evaluation stops at the
// first predicate that rejects v or fails. nil predicates are ignored.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(v T) (bool, error) {
		for _, fn := range preds {
			if fn == nil {
				continue
			}
			if ok, err := fn(v); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// DefaultTypes selects reference types only. Value types and interfaces
// cannot carry woven code.
func DefaultTypes() Predicate[*ir.TypeDef] {
	return Pure(func(t *ir.TypeDef) bool { return t.Kind == ir.Class })
}
