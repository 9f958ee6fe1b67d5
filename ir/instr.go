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
	"fmt"
	"strconv"
)

type OpCode uint8

const (
	OP_nop     OpCode = iota // no operation
	OP_ldc                   // Iv -> push
	OP_ldstr                 // Sv -> push
	OP_ldnull                // nil -> push
	OP_ldzero                // zero(Type(Sv)) -> push
	OP_ldarg                 // arg[Iv] -> push
	OP_starg                 // pop -> arg[Iv]
	OP_ldloc                 // loc[Iv] -> push
	OP_stloc                 // pop -> loc[Iv]
	OP_dup                   // x -> x, x
	OP_pop                   // x ->
	OP_add                   // a, b -> a + b
	OP_sub                   // a, b -> a - b
	OP_mul                   // a, b -> a * b
	OP_div                   // a, b -> a / b
	OP_rem                   // a, b -> a % b
	OP_ceq                   // a, b -> a == b
	OP_clt                   // a, b -> a < b
	OP_cgt                   // a, b -> a > b
	OP_br                    // Iv -> PC
	OP_brtrue                // if (pop) Iv -> PC
	OP_brfalse               // if (!pop) Iv -> PC
	OP_leave                 // clear stack; Iv -> PC
	OP_newarr                // pop Iv values -> push array
	OP_newobj                // new object of class Sv -> push
	OP_ldfld                 // obj -> obj.Sv
	OP_stfld                 // obj, v -> obj.Sv = v
	OP_call                  // call Refs[Iv]
	OP_throw                 // pop -> raise
	OP_rethrow               // re-raise the exception being handled
	OP_ret                   // return (pop if non-void)
	_OP_max
)

var opNames = [...]string{
	OP_nop:     "nop",
	OP_ldc:     "ldc",
	OP_ldstr:   "ldstr",
	OP_ldnull:  "ldnull",
	OP_ldzero:  "ldzero",
	OP_ldarg:   "ldarg",
	OP_starg:   "starg",
	OP_ldloc:   "ldloc",
	OP_stloc:   "stloc",
	OP_dup:     "dup",
	OP_pop:     "pop",
	OP_add:     "add",
	OP_sub:     "sub",
	OP_mul:     "mul",
	OP_div:     "div",
	OP_rem:     "rem",
	OP_ceq:     "ceq",
	OP_clt:     "clt",
	OP_cgt:     "cgt",
	OP_br:      "br",
	OP_brtrue:  "brtrue",
	OP_brfalse: "brfalse",
	OP_leave:   "leave",
	OP_newarr:  "newarr",
	OP_newobj:  "newobj",
	OP_ldfld:   "ldfld",
	OP_stfld:   "stfld",
	OP_call:    "call",
	OP_throw:   "throw",
	OP_rethrow: "rethrow",
	OP_ret:     "ret",
}

func (self OpCode) String() string {
	if self < _OP_max {
		return opNames[self]
	} else {
		return "OpCode(" + strconv.Itoa(int(self)) + ")"
	}
}

// IsBranch reports whether Iv of the instruction holds a target position.
func (self OpCode) IsBranch() bool {
	return self >= OP_br && self <= OP_leave
}

// IsTerminal reports whether control never falls through to the next instruction.
func (self OpCode) IsTerminal() bool {
	switch self {
	case OP_br, OP_leave, OP_throw, OP_rethrow, OP_ret:
		return true
	default:
		return false
	}
}

// Instr is one instruction of a method body. Every structural reference
// (branch target, local, argument, reference token) is an index.
type Instr struct {
	Op OpCode
	Iv int64
	Sv string
}

func (self Instr) Target() int {
	return int(self.Iv)
}

func (self Instr) String() string {
	switch self.Op {
	case OP_ldc, OP_ldarg, OP_starg, OP_ldloc, OP_stloc, OP_newarr, OP_call:
		return fmt.Sprintf("%-8s%d", self.Op, self.Iv)
	case OP_br, OP_brtrue, OP_brfalse, OP_leave:
		return fmt.Sprintf("%-8sL_%04d", self.Op, self.Iv)
	case OP_ldstr:
		return fmt.Sprintf("%-8s%q", self.Op, self.Sv)
	case OP_ldzero, OP_newobj, OP_ldfld, OP_stfld:
		return fmt.Sprintf("%-8s%s", self.Op, self.Sv)
	default:
		return self.Op.String()
	}
}

func Nop() Instr                   { return Instr{Op: OP_nop} }
func Ldc(v int64) Instr            { return Instr{Op: OP_ldc, Iv: v} }
func Ldstr(v string) Instr         { return Instr{Op: OP_ldstr, Sv: v} }
func Ldnull() Instr                { return Instr{Op: OP_ldnull} }
func Ldzero(t Type) Instr          { return Instr{Op: OP_ldzero, Sv: string(t)} }
func Ldarg(i int) Instr            { return Instr{Op: OP_ldarg, Iv: int64(i)} }
func Starg(i int) Instr            { return Instr{Op: OP_starg, Iv: int64(i)} }
func Ldloc(i int) Instr            { return Instr{Op: OP_ldloc, Iv: int64(i)} }
func Stloc(i int) Instr            { return Instr{Op: OP_stloc, Iv: int64(i)} }
func Call(tok int) Instr           { return Instr{Op: OP_call, Iv: int64(tok)} }
func Newarr(n int) Instr           { return Instr{Op: OP_newarr, Iv: int64(n)} }
func Newobj(class string) Instr    { return Instr{Op: OP_newobj, Sv: class} }
func Ldfld(name string) Instr      { return Instr{Op: OP_ldfld, Sv: name} }
func Stfld(name string) Instr      { return Instr{Op: OP_stfld, Sv: name} }
func Jump(op OpCode, to int) Instr { return Instr{Op: op, Iv: int64(to)} }
func Op(op OpCode) Instr           { return Instr{Op: op} }
