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

// Handler decides what happens to an exception caught by woven code.
type Handler interface {
	// CanHandle must not have side effects.
	CanHandle(ctx *ExceptionContext) bool

	// Handle may set the override return value and the skip flag on ctx.
	Handle(ctx *ExceptionContext)
}

type funcHandler struct {
	can    func(*ExceptionContext) bool
	handle func(*ExceptionContext)
}

func (self funcHandler) CanHandle(ctx *ExceptionContext) bool { return self.can(ctx) }
func (self funcHandler) Handle(ctx *ExceptionContext)         { self.handle(ctx) }

// NewHandler adapts a pair of functions to a Handler. A nil can accepts
// every exception.
func NewHandler(can func(*ExceptionContext) bool, handle func(*ExceptionContext)) Handler {
	if handle == nil {
		panic("aop: nil handle function")
	}
	if can == nil {
		can = func(*ExceptionContext) bool { return true }
	}
	return funcHandler{can: can, handle: handle}
}

// Suppress returns a handler that swallows every exception accepted by can,
// making the intercepted call return v.
func Suppress(can func(*ExceptionContext) bool, v interface{}) Handler {
	return NewHandler(can, func(ctx *ExceptionContext) {
		ctx.SetReturnValue(v)
		ctx.SetShouldSkipRethrow(true)
	})
}
