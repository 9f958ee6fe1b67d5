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
	"sort"
	"sync"
	"sync/atomic"
)

var (
	DispatchCount uint64 = 0
	SuppressCount uint64 = 0
)

type registryItem struct {
	priority int
	handler  Handler
}

// Registry holds the handlers consulted by woven code. Lookups never
// block: writers build a new handler list under a lock and publish it
// atomically.
//
// Handlers are ordered by priority, highest first. Handlers of equal
// priority keep their registration order. GetHandler returns the first
// handler in this order that can handle the context.
type Registry struct {
	mu    sync.Mutex
	items atomic.Pointer[[]registryItem]
}

func NewRegistry() *Registry {
	return new(Registry)
}

func (self *Registry) load() []registryItem {
	if self == nil {
		return nil
	} else if p := self.items.Load(); p == nil {
		return nil
	} else {
		return *p
	}
}

// Register adds h with priority 0.
func (self *Registry) Register(h Handler) {
	self.RegisterPriority(h, 0)
}

func (self *Registry) RegisterPriority(h Handler, priority int) {
	if h == nil {
		panic("aop: register nil handler")
	}
	self.mu.Lock()
	defer self.mu.Unlock()

	/* copy on write */
	old := self.load()
	buf := make([]registryItem, len(old), len(old)+1)
	copy(buf, old)
	buf = append(buf, registryItem{priority: priority, handler: h})

	/* highest priority first, registration order otherwise */
	sort.SliceStable(buf, func(i, j int) bool {
		return buf[i].priority > buf[j].priority
	})
	self.items.Store(&buf)
}

// Len returns the number of registered handlers.
func (self *Registry) Len() int {
	return len(self.load())
}

// GetHandler returns the handler selected for ctx, or nil if none of the
// registered handlers accepts it.
func (self *Registry) GetHandler(ctx *ExceptionContext) Handler {
	for _, it := range self.load() {
		if it.handler.CanHandle(ctx) {
			return it.handler
		}
	}
	return nil
}

// Dispatch runs the interception protocol for ctx and returns the verdict
// woven code acts on. A panicking handler is not recovered.
func (self *Registry) Dispatch(ctx *ExceptionContext) Verdict {
	atomic.AddUint64(&DispatchCount, 1)
	h := self.GetHandler(ctx)

	/* no handler, or the handler declines */
	if h == nil || !h.CanHandle(ctx) {
		return Verdict{Kind: Rethrow}
	}

	/* let the handler decide */
	h.Handle(ctx)
	ret := verdictOf(ctx)
	if ret.Kind != Rethrow {
		atomic.AddUint64(&SuppressCount, 1)
	}
	return ret
}
