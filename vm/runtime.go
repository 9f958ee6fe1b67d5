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

package vm

import (
	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/internal/abi"
	"github.com/cloudwego/loom/ir"
)

// WithRegistry binds the runtime entry points called by woven code to the
// dispatch protocol of reg. A Machine created without it dispatches to an
// empty registry, so every exception is rethrown.
func WithRegistry(reg *aop.Registry) Option {
	return func(m *Machine) {
		m.Bind(abi.NewInvocationInfo, func(args []Value) (Value, error) {
			av, _ := args[3].([]Value)
			return aop.NewInvocationInfo(args[0], args[1].(string), args[2].(string), av), nil
		})
		m.Bind(abi.NewExceptionContext, func(args []Value) (Value, error) {
			exc, _ := args[0].(error)
			return aop.NewExceptionContext(exc, args[1].(*aop.InvocationInfo)), nil
		})
		m.Bind(abi.Dispatch, func(args []Value) (Value, error) {
			ctx := args[0].(*aop.ExceptionContext)
			ret := reg.Dispatch(ctx)

			/* the override must fit the declared return type */
			if ret.Kind == aop.Suppressed && ret.HasValue {
				if rt := ir.Type(ctx.Invocation().ReturnType()); !assignable(normalize(ret.Value), rt) {
					return nil, throwf(InvalidCastException, "cannot return %T from a method of type %s", ret.Value, rt)
				}
			}
			return ret, nil
		})
		m.Bind(abi.VerdictRethrow, func(args []Value) (Value, error) {
			return args[0].(aop.Verdict).Kind == aop.Rethrow, nil
		})
		m.Bind(abi.VerdictHasValue, func(args []Value) (Value, error) {
			v := args[0].(aop.Verdict)
			return v.Kind == aop.Suppressed && v.HasValue, nil
		})
		m.Bind(abi.VerdictValue, func(args []Value) (Value, error) {
			return normalize(args[0].(aop.Verdict).Value), nil
		})
	}
}
