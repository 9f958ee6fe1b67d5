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

	"github.com/cloudwego/loom/ir"
	"github.com/pkg/errors"
)

// Rewriter is one instrumentation concern. Run drives its phases in
// declaration order for every selected method.
type Rewriter interface {
	// ImportReferences adds the references the rewriter emits calls to.
	// It is called for every method and must be idempotent.
	ImportReferences(mod *ir.Module)

	// AddLocals allocates the private locals of the rewriter in body.
	AddLocals(m *ir.MethodDef, body *ir.MethodBody)

	// ShouldRewrite reports whether m is selected. An error is fatal for
	// the whole weaving run.
	ShouldRewrite(m *ir.MethodDef) (bool, error)

	// RewriteMethodBody replaces the instructions of body, original is the
	// instruction sequence of m before rewriting.
	RewriteMethodBody(m *ir.MethodDef, body *ir.MethodBody, original []ir.Instr)
}

// Run applies rw to m. All the phases work on a copy of the body, which is
// swapped in only after the rewrite completed and, if verify is set, the
// result passed ir.Verify. Run reports whether m was rewritten.
//
// Any failure to rewrite is reported as a *Error with m left untouched.
// Other errors come from the selection predicate.
func Run(mod *ir.Module, m *ir.MethodDef, rw Rewriter, verify bool) (bool, error) {
	sig := m.Signature()
	if m.Body == nil {
		return false, &Error{Method: sig, Reason: "method has no body"}
	}

	/* work on a copy */
	body := m.Body.Clone()
	orig := append([]ir.Instr(nil), m.Body.Instrs...)

	/* phase 1 and 2 */
	if err := guard(sig, "import references", func() { rw.ImportReferences(mod) }); err != nil {
		return false, err
	}
	if err := guard(sig, "add locals", func() { rw.AddLocals(m, body) }); err != nil {
		return false, err
	}

	/* phase 3, predicate failures are not rewrite failures */
	ok, err := shouldRewrite(rw, m)
	if err != nil {
		return false, errors.Wrapf(err, "select %s", sig)
	} else if !ok {
		return false, nil
	}

	/* phase 4 */
	if err = guard(sig, "rewrite method body", func() { rw.RewriteMethodBody(m, body, orig) }); err != nil {
		return false, err
	}

	/* check the result before committing it */
	if verify {
		tmp := *m
		tmp.Body = body
		if err = ir.Verify(mod, &tmp); err != nil {
			return false, &Error{Method: sig, Reason: "rewritten body is invalid", Cause: err}
		}
	}

	/* swap in the new body */
	m.Body = body
	return true, nil
}

func shouldRewrite(rw Rewriter, m *ir.MethodDef) (ok bool, err error) {
	defer func() {
		if val := recover(); val != nil {
			ok, err = false, fmt.Errorf("selection predicate panicked: %v", val)
		}
	}()
	return rw.ShouldRewrite(m)
}

func guard(sig string, phase string, fn func()) (err error) {
	defer func() {
		if val := recover(); val != nil {
			if e, ok := val.(error); ok {
				err = &Error{Method: sig, Reason: phase, Cause: e}
			} else {
				err = &Error{Method: sig, Reason: fmt.Sprintf("%s: %v", phase, val)}
			}
		}
	}()
	fn()
	return
}
