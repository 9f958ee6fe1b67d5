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
	"fmt"

	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/ir"
)

const (
	_DefaultMaxDepth = 1024
)

// Extern implements a referenced method outside of the running module. A
// returned error is thrown at the call site.
type Extern func(args []Value) (Value, error)

// Machine interprets the methods of one module.
type Machine struct {
	mod      *ir.Module
	externs  map[string]Extern
	maxDepth int
}

type Option func(*Machine)

// WithMaxDepth bounds the depth of nested calls. Exceeding it throws a
// StackOverflowException.
func WithMaxDepth(depth int) Option {
	if depth <= 0 {
		panic(fmt.Sprintf("vm: invalid call depth: %d", depth))
	} else {
		return func(m *Machine) { m.maxDepth = depth }
	}
}

func New(mod *ir.Module, options ...Option) *Machine {
	ret := &Machine{
		mod:      mod,
		externs:  make(map[string]Extern),
		maxDepth: _DefaultMaxDepth,
	}
	WithRegistry(aop.NewRegistry())(ret)
	for _, fn := range options {
		fn(ret)
	}
	return ret
}

// Bind implements calls to ref with fn. Bound externs take precedence over
// methods defined by the module.
func (self *Machine) Bind(ref ir.MethodRef, fn Extern) {
	self.externs[ref.Key()] = fn
}

// Invoke calls the method name of type owner. this is ignored for static
// methods. An exception escaping the method is returned as the error.
func (self *Machine) Invoke(owner string, name string, this Value, args ...Value) (Value, error) {
	t := self.mod.Type(owner)
	if t == nil {
		return nil, throwf(MissingMethodException, "type %s not found", owner)
	}
	m := t.Method(name)
	if m == nil {
		return nil, throwf(MissingMethodException, "method %s::%s not found", owner, name)
	} else if len(args) != len(m.Params) {
		return nil, throwf(MissingMethodException, "%s takes %d arguments, got %d", m.Signature(), len(m.Params), len(args))
	}

	/* the receiver is argument 0 of instance methods */
	av := make([]Value, 0, m.NumArgs())
	if !m.Static {
		av = append(av, this)
	}
	for _, v := range args {
		av = append(av, normalize(v))
	}
	return self.invoke(m, av, 0)
}

func (self *Machine) invoke(m *ir.MethodDef, args []Value, depth int) (Value, error) {
	if depth >= self.maxDepth {
		return nil, throwf(StackOverflowException, "call depth exceeds %d", self.maxDepth)
	} else if m.Body == nil {
		return nil, throwf(MissingMethodException, "%s has no body", m.Signature())
	} else {
		return self.run(newFrame(m, args, depth))
	}
}

func (self *Machine) call(ref ir.MethodRef, args []Value, depth int) (Value, error) {
	if fn, ok := self.externs[ref.Key()]; ok {
		return callExtern(fn, args)
	} else if m := self.mod.Resolve(ref); m != nil {
		return self.invoke(m, args, depth)
	} else {
		return nil, throwf(MissingMethodException, "%s is not bound", ref.Key())
	}
}

// callExtern runs fn, a panic inside fn is thrown at the call site.
func callExtern(fn Extern, args []Value) (ret Value, err error) {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(error); ok {
				ret, err = nil, e
			} else {
				ret, err = nil, throwf(UnhandledPanicException, "%v", v)
			}
		}
	}()
	ret, err = fn(args)
	return normalize(ret), err
}
