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

func newCalc() (*Module, *MethodDef) {
	mod := &Module{Name: "calc"}
	cls := &TypeDef{Name: "Calc", Kind: Class}
	mod.Types = append(mod.Types, cls)
	m := cls.AddMethod(&MethodDef{
		Name:   "divide",
		Static: true,
		Params: []Param{{"a", Int}, {"b", Int}},
		Return: Int,
		Body: &MethodBody{
			Instrs: []Instr{Ldarg(0), Ldarg(1), Op(OP_div), Op(OP_ret)},
		},
	})
	return mod, m
}

func requireInvalid(t *testing.T, err error, pc int) InvalidBodyError {
	require.Error(t, err)
	e, ok := err.(InvalidBodyError)
	require.True(t, ok, "unexpected error: %v", err)
	assert.Equal(t, pc, e.PC)
	return e
}

func TestVerify_Valid(t *testing.T) {
	mod, m := newCalc()
	require.NoError(t, Verify(mod, m))
}

func TestVerify_Operands(t *testing.T) {
	mod, m := newCalc()
	m.Body.Instrs[1] = Ldarg(2)
	e := requireInvalid(t, Verify(mod, m), 1)
	assert.Contains(t, e.Reason, "argument 2")

	mod, m = newCalc()
	m.Body.Instrs = []Instr{Jump(OP_br, 9)}
	requireInvalid(t, Verify(mod, m), 0)

	mod, m = newCalc()
	m.Body.Instrs = []Instr{Ldloc(0), Op(OP_ret)}
	requireInvalid(t, Verify(mod, m), 0)

	mod, m = newCalc()
	m.Body.Instrs = []Instr{Call(0), Op(OP_ret)}
	requireInvalid(t, Verify(mod, m), 0)
}

func TestVerify_Stack(t *testing.T) {
	mod, m := newCalc()
	m.Body.Instrs = []Instr{Ldarg(0), Op(OP_div), Op(OP_ret)}
	e := requireInvalid(t, Verify(mod, m), 1)
	assert.Contains(t, e.Reason, "underflow")

	mod, m = newCalc()
	m.Body.Instrs = []Instr{Ldarg(0), Ldarg(1), Op(OP_ret)}
	requireInvalid(t, Verify(mod, m), 2)

	mod, m = newCalc()
	m.Body.Instrs = []Instr{Ldarg(0), Ldarg(1), Op(OP_div), Op(OP_pop)}
	e = requireInvalid(t, Verify(mod, m), 3)
	assert.Contains(t, e.Reason, "falls off")

	/* both arms of a branch must agree on the depth */
	mod, m = newCalc()
	m.Body.Instrs = []Instr{
		Ldarg(0),
		Jump(OP_brtrue, 3),
		Ldc(1),
		Ldc(2),
		Op(OP_ret),
	}
	requireInvalid(t, Verify(mod, m), 3)
}

func TestVerify_Regions(t *testing.T) {
	mod, m := newCalc()
	m.Body.Locals = []Local{{"exc", AnyException}}
	m.Body.Instrs = []Instr{
		Ldarg(0),
		Ldarg(1),
		Op(OP_div),
		Op(OP_ret),
		Stloc(0),
		Ldc(-1),
		Op(OP_ret),
	}
	m.Body.Regions = []Region{{0, 4, 4, 7, AnyException}}
	require.NoError(t, Verify(mod, m))

	m.Body.Regions = []Region{{0, 5, 4, 7, AnyException}}
	requireInvalid(t, Verify(mod, m), -1)

	m.Body.Regions = []Region{{0, 4, 4, 8, AnyException}}
	requireInvalid(t, Verify(mod, m), -1)
}

func TestVerify_Rethrow(t *testing.T) {
	mod, m := newCalc()
	m.Body.Instrs = []Instr{Op(OP_rethrow)}
	e := requireInvalid(t, Verify(mod, m), 0)
	assert.Contains(t, e.Reason, "outside of a handler")
}

func TestVerify_NoBody(t *testing.T) {
	mod, m := newCalc()
	m.Body = nil
	requireInvalid(t, Verify(mod, m), -1)
	m.Body = new(MethodBody)
	requireInvalid(t, Verify(mod, m), -1)
}
