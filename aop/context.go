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

// ExceptionContext describes an exception caught by woven code together
// with the call it escaped from. The selected handler records its decision
// on the context.
type ExceptionContext struct {
	exc      error
	info     *InvocationInfo
	value    interface{}
	hasValue bool
	skip     bool
}

func NewExceptionContext(exc error, info *InvocationInfo) *ExceptionContext {
	return &ExceptionContext{exc: exc, info: info}
}

func (self *ExceptionContext) Exception() error {
	return self.exc
}

func (self *ExceptionContext) Invocation() *InvocationInfo {
	return self.info
}

// ReturnValue returns the override return value, if one was set.
func (self *ExceptionContext) ReturnValue() (interface{}, bool) {
	return self.value, self.hasValue
}

// SetReturnValue sets the value the intercepted call returns when the
// exception is suppressed. It has no effect unless ShouldSkipRethrow is
// also set, and is ignored for void methods. A value that does not fit the
// declared return type makes the runtime throw an InvalidCastException
// instead.
func (self *ExceptionContext) SetReturnValue(v interface{}) {
	self.value = v
	self.hasValue = true
}

func (self *ExceptionContext) ShouldSkipRethrow() bool {
	return self.skip
}

func (self *ExceptionContext) SetShouldSkipRethrow(skip bool) {
	self.skip = skip
}
