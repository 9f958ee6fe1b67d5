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
	"github.com/cloudwego/loom/ir"
)

type _InvalidProgram struct {
	reason string
}

type _Frame struct {
	m      *ir.MethodDef
	pc     int
	done   bool
	ret    Value
	args   []Value
	locals []Value
	stack  []Value
	caught map[int]error
	depth  int
}

func newFrame(m *ir.MethodDef, args []Value, depth int) *_Frame {
	fr := &_Frame{
		m:      m,
		args:   args,
		depth:  depth,
		locals: make([]Value, len(m.Body.Locals)),
		stack:  make([]Value, 0, 8),
	}
	for i, v := range m.Body.Locals {
		fr.locals[i] = v.Type.Zero()
	}
	return fr
}

func (self *_Frame) push(v Value) {
	self.stack = append(self.stack, v)
}

func (self *_Frame) pop() Value {
	n := len(self.stack)
	if n == 0 {
		panic(_InvalidProgram{"evaluation stack underflow"})
	}
	v := self.stack[n-1]
	self.stack = self.stack[:n-1]
	return v
}

// popn pops n values and returns them in push order.
func (self *_Frame) popn(n int) []Value {
	if len(self.stack) < n {
		panic(_InvalidProgram{"evaluation stack underflow"})
	}
	ret := make([]Value, n)
	copy(ret, self.stack[len(self.stack)-n:])
	self.stack = self.stack[:len(self.stack)-n]
	return ret
}

// catch transfers control to the innermost handler protecting pc that
// accepts exc, and reports whether there was one.
func (self *_Frame) catch(pc int, exc error) bool {
	typ := ExceptionType(exc)
	for i, r := range self.m.Body.Regions {
		if r.InTry(pc) && r.Catches(typ) {
			if self.caught == nil {
				self.caught = make(map[int]error)
			}
			self.caught[i] = exc
			self.stack = append(self.stack[:0], exc)
			self.pc = r.HandlerStart
			return true
		}
	}
	return false
}

// handling returns the exception being handled by the innermost handler
// that contains pc.
func (self *_Frame) handling(pc int) error {
	for i, r := range self.m.Body.Regions {
		if r.InHandler(pc) {
			return self.caught[i]
		}
	}
	return nil
}
