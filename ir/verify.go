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

	"github.com/oleiade/lane"
)

type _Flow struct {
	pc int
	sp int
}

// Verify checks the structural invariants of the body of m: operands in
// range, well-ordered protected regions, consistent evaluation stack depth
// on every path, and no path falling off the end of the body.
func Verify(mod *Module, m *MethodDef) error {
	if m.Body == nil {
		return InvalidBodyError{Method: m.Signature(), PC: -1, Reason: "method has no body"}
	} else if len(m.Body.Instrs) == 0 {
		return InvalidBodyError{Method: m.Signature(), PC: -1, Reason: "empty instruction sequence"}
	}

	/* regions first, the stack walk relies on them */
	n := len(m.Body.Instrs)
	for i, r := range m.Body.Regions {
		if r.TryStart < 0 || r.TryStart >= r.TryEnd || r.TryEnd > r.HandlerStart || r.HandlerStart >= r.HandlerEnd || r.HandlerEnd > n {
			return InvalidBodyError{Method: m.Signature(), PC: -1, Reason: fmt.Sprintf("region %d is malformed: %s", i, r)}
		}
	}

	/* check every operand */
	for pc, ins := range m.Body.Instrs {
		if err := verifyOperand(mod, m, pc, ins); err != "" {
			return InvalidBodyError{Method: m.Signature(), PC: pc, Reason: err}
		}
	}

	/* walk the control flow */
	return verifyStack(mod, m)
}

func verifyOperand(mod *Module, m *MethodDef, pc int, ins Instr) string {
	body := m.Body
	switch ins.Op {
	case OP_br, OP_brtrue, OP_brfalse, OP_leave:
		if ins.Iv < 0 || ins.Iv >= int64(len(body.Instrs)) {
			return fmt.Sprintf("branch target L_%04d out of range", ins.Iv)
		}
	case OP_ldloc, OP_stloc:
		if ins.Iv < 0 || ins.Iv >= int64(len(body.Locals)) {
			return fmt.Sprintf("local %d out of range", ins.Iv)
		}
	case OP_ldarg, OP_starg:
		if ins.Iv < 0 || ins.Iv >= int64(m.NumArgs()) {
			return fmt.Sprintf("argument %d out of range", ins.Iv)
		}
	case OP_call:
		if mod == nil || ins.Iv < 0 || ins.Iv >= int64(len(mod.Refs)) {
			return fmt.Sprintf("reference token %d out of range", ins.Iv)
		}
	case OP_newarr:
		if ins.Iv < 0 {
			return "negative array length"
		}
	case OP_ldzero, OP_newobj, OP_ldfld, OP_stfld:
		if ins.Sv == "" {
			return ins.Op.String() + " requires an operand"
		}
	case OP_rethrow:
		for _, r := range body.Regions {
			if r.InHandler(pc) {
				return ""
			}
		}
		return "rethrow outside of a handler"
	default:
		if ins.Op >= _OP_max {
			return "invalid opcode " + ins.Op.String()
		}
	}
	return ""
}

func stackEffect(mod *Module, m *MethodDef, ins Instr) (pop int, push int) {
	switch ins.Op {
	case OP_nop, OP_br, OP_leave, OP_rethrow:
		return 0, 0
	case OP_ldc, OP_ldstr, OP_ldnull, OP_ldzero, OP_ldarg, OP_ldloc, OP_newobj:
		return 0, 1
	case OP_starg, OP_stloc, OP_pop, OP_brtrue, OP_brfalse, OP_throw:
		return 1, 0
	case OP_dup:
		return 1, 2
	case OP_add, OP_sub, OP_mul, OP_div, OP_rem, OP_ceq, OP_clt, OP_cgt:
		return 2, 1
	case OP_newarr:
		return int(ins.Iv), 1
	case OP_ldfld:
		return 1, 1
	case OP_stfld:
		return 2, 0
	case OP_call:
		ref := mod.Refs[ins.Iv]
		if ref.Return.IsVoid() {
			return ref.Arity(), 0
		} else {
			return ref.Arity(), 1
		}
	case OP_ret:
		if m.Return.IsVoid() {
			return 0, 0
		} else {
			return 1, 0
		}
	default:
		panic("unreachable")
	}
}

func verifyStack(mod *Module, m *MethodDef) error {
	body := m.Body
	q := lane.NewQueue()
	sp := make([]int, len(body.Instrs))
	fail := func(pc int, format string, args ...interface{}) error {
		return InvalidBodyError{Method: m.Signature(), PC: pc, Reason: fmt.Sprintf(format, args...)}
	}

	/* the entry point and every handler are roots */
	for i := range sp {
		sp[i] = -1
	}
	q.Enqueue(_Flow{pc: 0, sp: 0})
	for _, r := range body.Regions {
		q.Enqueue(_Flow{pc: r.HandlerStart, sp: 1})
	}

	/* BFS over the instructions */
	for !q.Empty() {
		fv := q.Dequeue().(_Flow)
		if fv.pc == len(body.Instrs) {
			return fail(fv.pc-1, "control falls off the end of the body")
		}

		/* already visited, the depth must agree */
		if sp[fv.pc] >= 0 {
			if sp[fv.pc] != fv.sp {
				return fail(fv.pc, "inconsistent stack depth: %d vs %d", sp[fv.pc], fv.sp)
			}
			continue
		}

		/* apply the stack effect */
		ins := body.Instrs[fv.pc]
		sp[fv.pc] = fv.sp
		pop, push := stackEffect(mod, m, ins)
		if fv.sp < pop {
			return fail(fv.pc, "stack underflow in %s", ins.Op)
		}
		next := fv.sp - pop + push

		/* add the successors */
		switch ins.Op {
		case OP_ret:
			if fv.sp != pop {
				return fail(fv.pc, "stack depth %d at return", fv.sp)
			}
		case OP_throw, OP_rethrow:
			break
		case OP_br:
			q.Enqueue(_Flow{pc: ins.Target(), sp: next})
		case OP_leave:
			q.Enqueue(_Flow{pc: ins.Target(), sp: 0})
		case OP_brtrue, OP_brfalse:
			q.Enqueue(_Flow{pc: ins.Target(), sp: next})
			q.Enqueue(_Flow{pc: fv.pc + 1, sp: next})
		default:
			q.Enqueue(_Flow{pc: fv.pc + 1, sp: next})
		}
	}
	return nil
}
