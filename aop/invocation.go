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

// InvocationInfo is an immutable snapshot of one intercepted call.
type InvocationInfo struct {
	target     interface{}
	method     string
	returnType string
	args       []interface{}
}

// NewInvocationInfo captures a call. The argument list is copied, so later
// changes to args are not observed by the snapshot.
func NewInvocationInfo(target interface{}, method string, returnType string, args []interface{}) *InvocationInfo {
	return &InvocationInfo{
		target:     target,
		method:     method,
		returnType: returnType,
		args:       append([]interface{}(nil), args...),
	}
}

// Target is the receiver of the call, or nil for static methods.
func (self *InvocationInfo) Target() interface{} {
	return self.target
}

// Method is the signature of the intercepted method.
func (self *InvocationInfo) Method() string {
	return self.method
}

func (self *InvocationInfo) ReturnType() string {
	return self.returnType
}

// IsVoid reports whether the intercepted method returns no value.
func (self *InvocationInfo) IsVoid() bool {
	return self.returnType == "" || self.returnType == "void"
}

func (self *InvocationInfo) NumArgs() int {
	return len(self.args)
}

func (self *InvocationInfo) Arg(i int) interface{} {
	return self.args[i]
}

// Arguments returns a copy of the captured arguments.
func (self *InvocationInfo) Arguments() []interface{} {
	return append([]interface{}(nil), self.args...)
}
