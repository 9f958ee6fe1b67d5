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

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_ForwardAndBackward(t *testing.T) {
	p := CreateBuilder()
	p.Label("loop")
	p.Emit(Ldarg(0))
	p.Jump(OP_brtrue, "done")
	p.Jump(OP_br, "loop")
	p.Label("done")
	p.Emit(Op(OP_ret))
	ins := p.Build()
	require.Len(t, ins, 4)
	assert.Equal(t, 3, ins[1].Target())
	assert.Equal(t, 0, ins[2].Target())
}

func TestBuilder_Pos(t *testing.T) {
	p := CreateBuilder()
	p.Emit(Nop())
	p.Label("here")
	assert.Equal(t, 1, p.Pos("here"))
	assert.Panics(t, func() { p.Pos("nowhere") })
}

func TestBuilder_Misuse(t *testing.T) {
	assert.PanicsWithValue(t, "labels are not fully resolved: missing", func() {
		p := CreateBuilder()
		p.Jump(OP_br, "missing")
		p.Build()
	})
	assert.Panics(t, func() {
		p := CreateBuilder()
		p.Label("x")
		p.Label("x")
	})
	assert.Panics(t, func() {
		CreateBuilder().Jump(OP_add, "x")
	})
}

func TestBuilder_Reuse(t *testing.T) {
	p := CreateBuilder()
	p.Jump(OP_br, "a")
	p.Label("a")
	p.Emit(Op(OP_ret))
	first := p.Build()

	/* a pooled builder must come back clean */
	q := CreateBuilder()
	assert.Equal(t, 0, q.PC())
	q.Label("a")
	q.Emit(Op(OP_ret))
	assert.Len(t, q.Build(), 1)
	assert.Equal(t, []Instr{Jump(OP_br, 1), Op(OP_ret)}, first)
}
