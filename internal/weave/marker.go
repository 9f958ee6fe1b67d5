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

package weave

import (
	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/ir"
)

// Mark attaches the instrumentation marker to t, each part of it only if
// it is not there yet. Mark reports whether t was changed.
func Mark(t *ir.TypeDef) bool {
	changed := false
	if !t.Implements(aop.ModifiableType) {
		t.Interfaces = append(t.Interfaces, aop.ModifiableType)
		changed = true
	}
	if t.Field(aop.InterceptionDisabled) == nil {
		t.Fields = append(t.Fields, &ir.FieldDef{Name: aop.InterceptionDisabled, Type: ir.Bool})
		changed = true
	}
	return changed
}

// IsMarked reports whether t carries the complete marker.
func IsMarked(t *ir.TypeDef) bool {
	return t.Implements(aop.ModifiableType) && t.Field(aop.InterceptionDisabled) != nil
}
