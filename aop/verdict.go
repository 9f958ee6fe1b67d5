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

package aop

import (
	"fmt"
)

type VerdictKind uint8

const (
	// Rethrow propagates the original exception unchanged.
	Rethrow VerdictKind = iota

	// Suppressed swallows the exception of a method that returns a value.
	Suppressed

	// SuppressedVoid swallows the exception of a void method.
	SuppressedVoid
)

func (self VerdictKind) String() string {
	switch self {
	case Rethrow:
		return "Rethrow"
	case Suppressed:
		return "Suppressed"
	case SuppressedVoid:
		return "SuppressedVoid"
	default:
		return fmt.Sprintf("VerdictKind(%d)", uint8(self))
	}
}

// Verdict is the outcome of dispatching an exception context. Value is only
// meaningful for Suppressed verdicts with HasValue set, otherwise the
// intercepted method returns the zero value of its return type.
type Verdict struct {
	Kind     VerdictKind
	Value    interface{}
	HasValue bool
}

func (self Verdict) String() string {
	if self.Kind == Suppressed && self.HasValue {
		return fmt.Sprintf("Suppressed(%v)", self.Value)
	} else {
		return self.Kind.String()
	}
}

// verdictOf reads the decision recorded on ctx by a handler.
func verdictOf(ctx *ExceptionContext) Verdict {
	if !ctx.ShouldSkipRethrow() {
		return Verdict{Kind: Rethrow}
	} else if ctx.Invocation() == nil || ctx.Invocation().IsVoid() {
		return Verdict{Kind: SuppressedVoid}
	}
	v, ok := ctx.ReturnValue()
	return Verdict{Kind: Suppressed, Value: v, HasValue: ok}
}
