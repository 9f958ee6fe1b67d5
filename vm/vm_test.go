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
	"errors"
	"testing"

	"github.com/cloudwego/loom/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newError = ir.MethodRef{Owner: "Errors", Name: "New", Params: []ir.Type{ir.String}, Return: ir.AnyException}

func newModule(methods ...*ir.MethodDef) *ir.Module {
	mod := &ir.Module{Name: "test"}
	cls := &ir.TypeDef{Name: "T", Kind: ir.Class, Fields: []*ir.FieldDef{{Name: "n", Type: ir.Int}}}
	for _, m := range methods {
		cls.AddMethod(m)
	}
	mod.Types = append(mod.Types, cls)
	return mod
}

func program(fn func(p *ir.Builder)) *ir.MethodBody {
	p := ir.CreateBuilder()
	fn(p)
	return &ir.MethodBody{Instrs: p.Build()}
}

func divide() *ir.MethodDef {
	return &ir.MethodDef{
		Name:   "divide",
		Static: true,
		Params: []ir.Param{{Name: "a", Type: ir.Int}, {Name: "b", Type: ir.Int}},
		Return: ir.Int,
		Body: program(func(p *ir.Builder) {
			p.Emit(ir.Ldarg(0))
			p.Emit(ir.Ldarg(1))
			p.Emit(ir.Op(ir.OP_div))
			p.Emit(ir.Op(ir.OP_ret))
		}),
	}
}

func requireException(t *testing.T, err error, typ string) *Exception {
	require.Error(t, err)
	var exc *Exception
	require.True(t, errors.As(err, &exc), "not an exception: %v", err)
	assert.Equal(t, typ, exc.Type)
	return exc
}

func TestMachine_Arithmetic(t *testing.T) {
	m := New(newModule(divide()))
	ret, err := m.Invoke("T", "divide", nil, 12, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ret)

	_, err = m.Invoke("T", "divide", nil, 4, 0)
	exc := requireException(t, err, DivideByZeroException)
	assert.Equal(t, "DivideByZeroException: Attempted to divide by zero.", exc.Error())
}

func TestMachine_Loop(t *testing.T) {
	sum := &ir.MethodDef{
		Name:   "sum",
		Static: true,
		Params: []ir.Param{{Name: "n", Type: ir.Int}},
		Return: ir.Int,
	}
	sum.Body = program(func(p *ir.Builder) {
		p.Label("loop")
		p.Emit(ir.Ldarg(0))
		p.Emit(ir.Ldc(0))
		p.Emit(ir.Op(ir.OP_cgt))
		p.Jump(ir.OP_brfalse, "done")
		p.Emit(ir.Ldloc(0))
		p.Emit(ir.Ldarg(0))
		p.Emit(ir.Op(ir.OP_add))
		p.Emit(ir.Stloc(0))
		p.Emit(ir.Ldarg(0))
		p.Emit(ir.Ldc(1))
		p.Emit(ir.Op(ir.OP_sub))
		p.Emit(ir.Starg(0))
		p.Jump(ir.OP_br, "loop")
		p.Label("done")
		p.Emit(ir.Ldloc(0))
		p.Emit(ir.Op(ir.OP_ret))
	})
	sum.Body.AddLocal("acc", ir.Int)
	mod := newModule(sum)
	require.NoError(t, ir.Verify(mod, sum))

	ret, err := New(mod).Invoke("T", "sum", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(55), ret)
}

func TestMachine_Objects(t *testing.T) {
	incr := &ir.MethodDef{
		Name:   "incr",
		Return: ir.Int,
		Body: program(func(p *ir.Builder) {
			p.Emit(ir.Ldarg(0))
			p.Emit(ir.Ldarg(0))
			p.Emit(ir.Ldfld("n"))
			p.Emit(ir.Ldc(1))
			p.Emit(ir.Op(ir.OP_add))
			p.Emit(ir.Stfld("n"))
			p.Emit(ir.Ldarg(0))
			p.Emit(ir.Ldfld("n"))
			p.Emit(ir.Op(ir.OP_ret))
		}),
	}
	create := &ir.MethodDef{
		Name:   "make",
		Static: true,
		Return: ir.Type("T"),
		Body: program(func(p *ir.Builder) {
			p.Emit(ir.Newobj("T"))
			p.Emit(ir.Op(ir.OP_ret))
		}),
	}
	m := New(newModule(incr, create))
	obj, err := m.Invoke("T", "make", nil)
	require.NoError(t, err)
	require.IsType(t, &Object{}, obj)
	assert.Equal(t, int64(0), obj.(*Object).Fields["n"])

	ret, err := m.Invoke("T", "incr", obj)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ret)

	_, err = m.Invoke("T", "incr", nil)
	requireException(t, err, NullReferenceException)
}

func TestMachine_Catch(t *testing.T) {
	safe := &ir.MethodDef{
		Name:   "safe",
		Static: true,
		Params: []ir.Param{{Name: "a", Type: ir.Int}, {Name: "b", Type: ir.Int}},
		Return: ir.Int,
		Body: &ir.MethodBody{
			Instrs: []ir.Instr{
				ir.Ldarg(0),
				ir.Ldarg(1),
				ir.Op(ir.OP_div),
				ir.Stloc(0),
				ir.Jump(ir.OP_leave, 9),
				ir.Op(ir.OP_pop),
				ir.Ldc(-1),
				ir.Stloc(0),
				ir.Jump(ir.OP_leave, 9),
				ir.Ldloc(0),
				ir.Op(ir.OP_ret),
			},
			Locals:  []ir.Local{{Name: "r", Type: ir.Int}},
			Regions: []ir.Region{{TryStart: 0, TryEnd: 5, HandlerStart: 5, HandlerEnd: 9, CatchType: DivideByZeroException}},
		},
	}
	mod := newModule(safe)
	require.NoError(t, ir.Verify(mod, safe), ir.Disassemble(safe.Body))

	m := New(mod)
	ret, err := m.Invoke("T", "safe", nil, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ret)
	ret, err = m.Invoke("T", "safe", nil, 9, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), ret)

	/* a handler for another type does not catch */
	safe.Body.Regions[0].CatchType = NullReferenceException
	_, err = m.Invoke("T", "safe", nil, 9, 0)
	requireException(t, err, DivideByZeroException)
}

func TestMachine_Rethrow(t *testing.T) {
	fail := &ir.MethodDef{
		Name:   "fail",
		Static: true,
		Return: ir.Void,
		Body: &ir.MethodBody{
			Instrs: []ir.Instr{
				ir.Ldstr("bad argument"),
				ir.Call(0),
				ir.Op(ir.OP_throw),
				ir.Op(ir.OP_pop),
				ir.Op(ir.OP_rethrow),
			},
			Regions: []ir.Region{{TryStart: 0, TryEnd: 3, HandlerStart: 3, HandlerEnd: 5, CatchType: ir.AnyException}},
		},
	}
	mod := newModule(fail)
	mod.Import(newError)
	require.NoError(t, ir.Verify(mod, fail))

	m := New(mod)
	orig := &Exception{Type: "ArgumentException", Message: "bad argument"}
	m.Bind(newError, func(args []Value) (Value, error) {
		assert.Equal(t, "bad argument", args[0])
		return orig, nil
	})
	_, err := m.Invoke("T", "fail", nil)
	assert.Same(t, orig, err)
}

func TestMachine_ExternErrors(t *testing.T) {
	call := &ir.MethodDef{
		Name:   "call",
		Static: true,
		Return: ir.AnyException,
		Body: &ir.MethodBody{
			Instrs: []ir.Instr{ir.Ldstr("x"), ir.Call(0), ir.Op(ir.OP_ret)},
		},
	}
	mod := newModule(call)
	mod.Import(newError)

	m := New(mod)
	_, err := m.Invoke("T", "call", nil)
	requireException(t, err, MissingMethodException)

	m.Bind(newError, func([]Value) (Value, error) { panic("boom") })
	_, err = m.Invoke("T", "call", nil)
	exc := requireException(t, err, UnhandledPanicException)
	assert.Equal(t, "boom", exc.Message)

	thrown := errors.New("plain error")
	m.Bind(newError, func([]Value) (Value, error) { return nil, thrown })
	_, err = m.Invoke("T", "call", nil)
	assert.Equal(t, thrown, err)
	assert.Equal(t, "Exception", ExceptionType(err))
}

func TestMachine_StackOverflow(t *testing.T) {
	rec := &ir.MethodDef{Name: "rec", Static: true, Return: ir.Void}
	mod := newModule(rec)
	tok := mod.Import(rec.Ref())
	rec.Body = &ir.MethodBody{Instrs: []ir.Instr{ir.Call(tok), ir.Op(ir.OP_ret)}}

	_, err := New(mod, WithMaxDepth(16)).Invoke("T", "rec", nil)
	requireException(t, err, StackOverflowException)
}

func TestMachine_Invoke(t *testing.T) {
	m := New(newModule(divide()))
	_, err := m.Invoke("Nope", "divide", nil)
	requireException(t, err, MissingMethodException)
	_, err = m.Invoke("T", "nope", nil)
	requireException(t, err, MissingMethodException)
	_, err = m.Invoke("T", "divide", nil, 1)
	requireException(t, err, MissingMethodException)
	assert.Panics(t, func() { WithMaxDepth(0) })
}

func TestMachine_InvalidProgram(t *testing.T) {
	bad := &ir.MethodDef{
		Name:   "bad",
		Static: true,
		Return: ir.Int,
		Body:   &ir.MethodBody{Instrs: []ir.Instr{ir.Op(ir.OP_add), ir.Op(ir.OP_ret)}},
	}
	_, err := New(newModule(bad)).Invoke("T", "bad", nil)
	requireException(t, err, InvalidProgramException)
}

func TestMachine_DispatchTable(t *testing.T) {
	for op := ir.OP_nop; op <= ir.OP_ret; op++ {
		require.Less(t, int(op), len(dispatchTab), op.String())
		assert.NotNil(t, dispatchTab[op], op.String())
	}
}

func TestAssignable(t *testing.T) {
	assert.True(t, assignable(int64(1), ir.Int))
	assert.False(t, assignable("oops", ir.Int))
	assert.False(t, assignable(nil, ir.Int))
	assert.True(t, assignable(true, ir.Bool))
	assert.True(t, assignable("s", ir.String))
	assert.True(t, assignable(nil, ir.Array))
	assert.True(t, assignable([]Value{int64(1)}, ir.Array))
	assert.True(t, assignable(errors.New("x"), ir.AnyException))
	assert.False(t, assignable(int64(1), ir.AnyException))
	assert.True(t, assignable(int64(1), ir.Object))
	assert.True(t, assignable(&Object{Class: "T"}, ir.Type("T")))
	assert.False(t, assignable("T", ir.Type("T")))
}
