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

package rewrite

import (
	"fmt"

	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/internal/abi"
	"github.com/cloudwego/loom/ir"
)

const (
	_LB_endorig = "endorig"
	_LB_handler = "handler"
	_LB_leave   = "leave"
	_LB_rethrow = "rethrow"
	_LB_end     = "end"
)

type _Slots struct {
	exc     int
	inv     int
	ectx    int
	verdict int
	ret     int
}

// CatchAll wraps a method body in a protected region that catches every
// exception and hands it to the runtime dispatch protocol. The rewritten
// method rethrows the original exception unless a handler suppresses it.
//
// The rewritten body is laid out as follows:
//
//	L_0000  original instructions, every ret replaced by br endorig
//	endorig stloc ret (non-void only); leave end
//	handler stloc exc; initialize ret to zero (non-void only)
//	        build the invocation info and the exception context
//	        verdict = Dispatch(ctx); if verdict is Rethrow goto rethrow
//	        store the override value into ret (non-void only)
//	leave   leave end
//	rethrow rethrow
//	end     ldloc ret (non-void only); ret
//
// with a single catch-all region protecting [L_0000, handler) appended to
// the regions of the method.
type CatchAll struct {
	filter filter.Predicate[*ir.MethodDef]
	tok    abi.Tokens
	slots  _Slots
}

// NewCatchAll creates the rewriter, methods rejected by sel are left
// untouched. A nil sel selects every method.
func NewCatchAll(sel filter.Predicate[*ir.MethodDef]) *CatchAll {
	if sel == nil {
		sel = filter.All[*ir.MethodDef]()
	}
	return &CatchAll{filter: sel}
}

func (self *CatchAll) ImportReferences(mod *ir.Module) {
	self.tok = abi.Import(mod)
}

func (self *CatchAll) AddLocals(m *ir.MethodDef, body *ir.MethodBody) {
	self.slots = _Slots{
		exc:     body.AddLocal("__exception", ir.AnyException),
		inv:     body.AddLocal("__invocation", ir.Object),
		ectx:    body.AddLocal("__context", ir.Object),
		verdict: body.AddLocal("__verdict", ir.Object),
		ret:     -1,
	}
	if !m.Return.IsVoid() {
		self.slots.ret = body.AddLocal("__return", m.Return)
	}
}

// ShouldRewrite rejects bodies that are already wrapped, so weaving a module
// again leaves its methods as they are.
func (self *CatchAll) ShouldRewrite(m *ir.MethodDef) (bool, error) {
	if self.isWoven(m.Body) {
		return false, nil
	}
	return self.filter(m)
}

func (self *CatchAll) isWoven(body *ir.MethodBody) bool {
	if body == nil || len(body.Regions) == 0 {
		return false
	}

	/* the catch-all is always the outermost region */
	r := body.Regions[len(body.Regions)-1]
	if r.TryStart != 0 || r.CatchType != ir.AnyException || r.HandlerEnd > len(body.Instrs) {
		return false
	}
	for _, ins := range body.Instrs[r.HandlerStart:r.HandlerEnd] {
		if ins.Op == ir.OP_call && ins.Iv == int64(self.tok.Dispatch) {
			return true
		}
	}
	return false
}

func (self *CatchAll) RewriteMethodBody(m *ir.MethodDef, body *ir.MethodBody, original []ir.Instr) {
	p := ir.CreateBuilder()
	sl := self.slots

	/* the original instructions keep their positions */
	for pc, ins := range original {
		if ins.Op != ir.OP_ret {
			p.Emit(ins)
			continue
		}
		for _, r := range body.Regions {
			if r.InTry(pc) || r.InHandler(pc) {
				panic(fmt.Sprintf("return inside protected region at L_%04d", pc))
			}
		}
		p.Jump(ir.OP_br, _LB_endorig)
	}

	/* normal completion */
	p.Label(_LB_endorig)
	if sl.ret >= 0 {
		p.Emit(ir.Stloc(sl.ret))
	}
	p.Jump(ir.OP_leave, _LB_end)

	/* handler entry, the original return never executed */
	p.Label(_LB_handler)
	p.Emit(ir.Stloc(sl.exc))
	if sl.ret >= 0 {
		p.Emit(ir.Ldzero(m.Return))
		p.Emit(ir.Stloc(sl.ret))
	}

	/* snapshot the invocation */
	self.emitInvocation(p, m)
	p.Emit(ir.Call(self.tok.NewInvocationInfo))
	p.Emit(ir.Stloc(sl.inv))
	p.Emit(ir.Ldloc(sl.exc))
	p.Emit(ir.Ldloc(sl.inv))
	p.Emit(ir.Call(self.tok.NewExceptionContext))
	p.Emit(ir.Stloc(sl.ectx))

	/* ask the registry for a verdict */
	p.Emit(ir.Ldloc(sl.ectx))
	p.Emit(ir.Call(self.tok.Dispatch))
	p.Emit(ir.Stloc(sl.verdict))
	p.Emit(ir.Ldloc(sl.verdict))
	p.Emit(ir.Call(self.tok.VerdictRethrow))
	p.Jump(ir.OP_brtrue, _LB_rethrow)

	/* suppressed, pick up the override value if there is one */
	if sl.ret >= 0 {
		p.Emit(ir.Ldloc(sl.verdict))
		p.Emit(ir.Call(self.tok.VerdictHasValue))
		p.Jump(ir.OP_brfalse, _LB_leave)
		p.Emit(ir.Ldloc(sl.verdict))
		p.Emit(ir.Call(self.tok.VerdictValue))
		p.Emit(ir.Stloc(sl.ret))
	}

	/* exits of the handler */
	p.Label(_LB_leave)
	p.Jump(ir.OP_leave, _LB_end)
	p.Label(_LB_rethrow)
	p.Emit(ir.Op(ir.OP_rethrow))

	/* the single exit of the method */
	p.Label(_LB_end)
	if sl.ret >= 0 {
		p.Emit(ir.Ldloc(sl.ret))
	}
	p.Emit(ir.Op(ir.OP_ret))

	/* inner regions come first */
	hs, he := p.Pos(_LB_handler), p.Pos(_LB_end)
	body.Instrs = p.Build()
	body.Regions = append(body.Regions, ir.Region{
		TryStart:     0,
		TryEnd:       hs,
		HandlerStart: hs,
		HandlerEnd:   he,
		CatchType:    ir.AnyException,
	})
}

func (self *CatchAll) emitInvocation(p *ir.Builder, m *ir.MethodDef) {
	base := 0
	ret := m.Return
	if ret.IsVoid() {
		ret = ir.Void
	}

	/* target, method and return type */
	if m.Static {
		p.Emit(ir.Ldnull())
	} else {
		p.Emit(ir.Ldarg(0))
		base = 1
	}
	p.Emit(ir.Ldstr(m.Signature()))
	p.Emit(ir.Ldstr(string(ret)))

	/* arguments */
	for i := range m.Params {
		p.Emit(ir.Ldarg(base + i))
	}
	p.Emit(ir.Newarr(len(m.Params)))
}
