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
	"testing"

	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/ir"
	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	cls := &ir.TypeDef{Name: "Calc", Kind: ir.Class}
	assert.True(t, Mark(cls))
	assert.False(t, Mark(cls))
	assert.True(t, IsMarked(cls))
	assert.Equal(t, []string{aop.ModifiableType}, cls.Interfaces)
	assert.Len(t, cls.Fields, 1)
	assert.Equal(t, ir.Bool, cls.Field(aop.InterceptionDisabled).Type)

	/* a partial marker is completed */
	half := &ir.TypeDef{Name: "Half", Interfaces: []string{aop.ModifiableType}}
	assert.False(t, IsMarked(half))
	assert.True(t, Mark(half))
	assert.Equal(t, 2, countMarkers(half))
}
