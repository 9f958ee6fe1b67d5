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

	"github.com/cloudwego/loom/ir"
)

type _Handler func(vm *Machine, fr *_Frame, ins ir.Instr) error

var dispatchTab []_Handler

func init() {
	dispatchTab = []_Handler{
		ir.OP_nop:     (*Machine).exec_OP_nop,
		ir.OP_ldc:     (*Machine).exec_OP_ldc,
		ir.OP_ldstr:   (*Machine).exec_OP_ldstr,
		ir.OP_ldnull:  (*Machine).exec_OP_ldnull,
		ir.OP_ldzero:  (*Machine).exec_OP_ldzero,
		ir.OP_ldarg:   (*Machine).exec_OP_ldarg,
		ir.OP_starg:   (*Machine).exec_OP_starg,
		ir.OP_ldloc:   (*Machine).exec_OP_ldloc,
		ir.OP_stloc:   (*Machine).exec_OP_stloc,
		ir.OP_dup:     (*Machine).exec_OP_dup,
		ir.OP_pop:     (*Machine).exec_OP_pop,
		ir.OP_add:     (*Machine).exec_OP_add,
		ir.OP_sub:     (*Machine).exec_OP_sub,
		ir.OP_mul:     (*Machine).exec_OP_mul,
		ir.OP_div:     (*Machine).exec_OP_div,
		ir.OP_rem:     (*Machine).exec_OP_rem,
		ir.OP_ceq:     (*Machine).exec_OP_ceq,
		ir.OP_clt:     (*Machine).exec_OP_clt,
		ir.OP_cgt:     (*Machine).exec_OP_cgt,
		ir.OP_br:      (*Machine).exec_OP_br,
		ir.OP_brtrue:  (*Machine).exec_OP_brtrue,
		ir.OP_brfalse: (*Machine).exec_OP_brfalse,
		ir.OP_leave:   (*Machine).exec_OP_leave,
		ir.OP_newarr:  (*Machine).exec_OP_newarr,
		ir.OP_newobj:  (*Machine).exec_OP_newobj,
		ir.OP_ldfld:   (*Machine).exec_OP_ldfld,
		ir.OP_stfld:   (*Machine).exec_OP_stfld,
		ir.OP_call:    (*Machine).exec_OP_call,
		ir.OP_throw:   (*Machine).exec_OP_throw,
		ir.OP_rethrow: (*Machine).exec_OP_rethrow,
		ir.OP_ret:     (*Machine).exec_OP_ret,
	}
}

func (self *Machine) exec_OP_nop(_ *_Frame, _ ir.Instr) error {
	return nil
}

func (self *Machine) exec_OP_ldc(fr *_Frame, ins ir.Instr) error {
	fr.push(ins.Iv)
	return nil
}

func (self *Machine) exec_OP_ldstr(fr *_Frame, ins ir.Instr) error {
	fr.push(ins.Sv)
	return nil
}

func (self *Machine) exec_OP_ldnull(fr *_Frame, _ ir.Instr) error {
	fr.push(nil)
	return nil
}

func (self *Machine) exec_OP_ldzero(fr *_Frame, ins ir.Instr) error {
	fr.push(ir.Type(ins.Sv).Zero())
	return nil
}

func (self *Machine) exec_OP_ldarg(fr *_Frame, ins ir.Instr) error {
	fr.push(fr.args[ins.Iv])
	return nil
}

func (self *Machine) exec_OP_starg(fr *_Frame, ins ir.Instr) error {
	fr.args[ins.Iv] = fr.pop()
	return nil
}

func (self *Machine) exec_OP_ldloc(fr *_Frame, ins ir.Instr) error {
	fr.push(fr.locals[ins.Iv])
	return nil
}

func (self *Machine) exec_OP_stloc(fr *_Frame, ins ir.Instr) error {
	fr.locals[ins.Iv] = fr.pop()
	return nil
}

func (self *Machine) exec_OP_dup(fr *_Frame, _ ir.Instr) error {
	v := fr.pop()
	fr.push(v)
	fr.push(v)
	return nil
}

func (self *Machine) exec_OP_pop(fr *_Frame, _ ir.Instr) error {
	fr.pop()
	return nil
}

func (self *Machine) binary(fr *_Frame, fn func(x int64, y int64) (Value, error)) error {
	y, err := asInt(fr.pop())
	if err != nil {
		return err
	}
	x, err := asInt(fr.pop())
	if err != nil {
		return err
	}
	v, err := fn(x, y)
	if err != nil {
		return err
	}
	fr.push(v)
	return nil
}

func (self *Machine) exec_OP_add(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) { return x + y, nil })
}

func (self *Machine) exec_OP_sub(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) { return x - y, nil })
}

func (self *Machine) exec_OP_mul(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) { return x * y, nil })
}

func (self *Machine) exec_OP_div(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) {
		if y == 0 {
			return nil, throwf(DivideByZeroException, "Attempted to divide by zero.")
		}
		return x / y, nil
	})
}

func (self *Machine) exec_OP_rem(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) {
		if y == 0 {
			return nil, throwf(DivideByZeroException, "Attempted to divide by zero.")
		}
		return x % y, nil
	})
}

func (self *Machine) exec_OP_ceq(fr *_Frame, _ ir.Instr) error {
	y := fr.pop()
	x := fr.pop()
	fr.push(equals(normalize(x), normalize(y)))
	return nil
}

func (self *Machine) exec_OP_clt(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) { return x < y, nil })
}

func (self *Machine) exec_OP_cgt(fr *_Frame, _ ir.Instr) error {
	return self.binary(fr, func(x int64, y int64) (Value, error) { return x > y, nil })
}

func (self *Machine) exec_OP_br(fr *_Frame, ins ir.Instr) error {
	fr.pc = ins.Target()
	return nil
}

func (self *Machine) exec_OP_brtrue(fr *_Frame, ins ir.Instr) error {
	if truthy(fr.pop()) {
		fr.pc = ins.Target()
	}
	return nil
}

func (self *Machine) exec_OP_brfalse(fr *_Frame, ins ir.Instr) error {
	if !truthy(fr.pop()) {
		fr.pc = ins.Target()
	}
	return nil
}

func (self *Machine) exec_OP_leave(fr *_Frame, ins ir.Instr) error {
	fr.stack = fr.stack[:0]
	fr.pc = ins.Target()
	return nil
}

func (self *Machine) exec_OP_newarr(fr *_Frame, ins ir.Instr) error {
	fr.push(fr.popn(int(ins.Iv)))
	return nil
}

func (self *Machine) exec_OP_newobj(fr *_Frame, ins ir.Instr) error {
	fr.push(newObject(self.mod.Type(ins.Sv), ins.Sv))
	return nil
}

func (self *Machine) object(v Value, field string) (*Object, error) {
	switch obj := v.(type) {
	case nil:
		return nil, throwf(NullReferenceException, "access to field %s of a null reference", field)
	case *Object:
		return obj, nil
	default:
		return nil, throwf(InvalidCastException, "%T has no field %s", v, field)
	}
}

func (self *Machine) exec_OP_ldfld(fr *_Frame, ins ir.Instr) error {
	if obj, err := self.object(fr.pop(), ins.Sv); err != nil {
		return err
	} else {
		fr.push(obj.Fields[ins.Sv])
		return nil
	}
}

func (self *Machine) exec_OP_stfld(fr *_Frame, ins ir.Instr) error {
	v := fr.pop()
	if obj, err := self.object(fr.pop(), ins.Sv); err != nil {
		return err
	} else {
		obj.Fields[ins.Sv] = v
		return nil
	}
}

func (self *Machine) exec_OP_call(fr *_Frame, ins ir.Instr) error {
	ref := self.mod.Refs[ins.Iv]
	ret, err := self.call(ref, fr.popn(ref.Arity()), fr.depth+1)
	if err != nil {
		return err
	}
	if !ref.Return.IsVoid() {
		fr.push(ret)
	}
	return nil
}

func (self *Machine) exec_OP_throw(fr *_Frame, _ ir.Instr) error {
	switch v := fr.pop().(type) {
	case nil:
		return throwf(NullReferenceException, "throw of a null reference")
	case error:
		return v
	default:
		return throwf(InvalidCastException, "%T is not an exception", v)
	}
}

func (self *Machine) exec_OP_rethrow(fr *_Frame, _ ir.Instr) error {
	if exc := fr.handling(fr.pc - 1); exc != nil {
		return exc
	} else {
		panic(_InvalidProgram{"rethrow outside of a handler"})
	}
}

func (self *Machine) exec_OP_ret(fr *_Frame, _ ir.Instr) error {
	if !fr.m.Return.IsVoid() {
		fr.ret = fr.pop()
	}
	fr.done = true
	return nil
}

// run executes fr until it returns or an exception escapes it.
func (self *Machine) run(fr *_Frame) (ret Value, err error) {
	body := fr.m.Body
	defer func() {
		if v := recover(); v != nil {
			if ip, ok := v.(_InvalidProgram); ok {
				err = throwf(InvalidProgramException, "%s at L_%04d in %s", ip.reason, fr.pc-1, fr.m.Signature())
			} else {
				panic(v)
			}
		}
	}()

	/* run until return */
	for !fr.done {
		if fr.pc < 0 || fr.pc >= len(body.Instrs) {
			panic(_InvalidProgram{"control fell off the end of the body"})
		}

		/* fetch and decode */
		ins := body.Instrs[fr.pc]
		if int(ins.Op) >= len(dispatchTab) || dispatchTab[ins.Op] == nil {
			panic(_InvalidProgram{fmt.Sprintf("illegal opcode %#02x", uint8(ins.Op))})
		}

		/* execute, and look for a handler if it throws */
		pc := fr.pc
		fr.pc++
		if exc := dispatchTab[ins.Op](self, fr, ins); exc != nil && !fr.catch(pc, exc) {
			return nil, exc
		}
	}
	return fr.ret, nil
}
