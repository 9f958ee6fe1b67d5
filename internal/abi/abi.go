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

package abi

import (
	"github.com/cloudwego/loom/ir"
)

// Owner is the pseudo type that hosts the runtime entry points woven code
// calls into.
const Owner = "aop"

// Runtime entry points referenced by woven method bodies. The interpreter
// binds each of them to the dispatch protocol of a handler registry.
var (
	NewInvocationInfo = ir.MethodRef{
		Owner:  Owner,
		Name:   "NewInvocationInfo",
		Params: []ir.Type{ir.Object, ir.String, ir.String, ir.Array},
		Return: ir.Object,
	}
	NewExceptionContext = ir.MethodRef{
		Owner:  Owner,
		Name:   "NewExceptionContext",
		Params: []ir.Type{ir.AnyException, ir.Object},
		Return: ir.Object,
	}
	Dispatch = ir.MethodRef{
		Owner:  Owner,
		Name:   "Dispatch",
		Params: []ir.Type{ir.Object},
		Return: ir.Object,
	}
	VerdictRethrow = ir.MethodRef{
		Owner:  Owner,
		Name:   "VerdictRethrow",
		Params: []ir.Type{ir.Object},
		Return: ir.Bool,
	}
	VerdictHasValue = ir.MethodRef{
		Owner:  Owner,
		Name:   "VerdictHasValue",
		Params: []ir.Type{ir.Object},
		Return: ir.Bool,
	}
	VerdictValue = ir.MethodRef{
		Owner:  Owner,
		Name:   "VerdictValue",
		Params: []ir.Type{ir.Object},
		Return: ir.Object,
	}
)

// Tokens holds the reference-table indices of the runtime entry points
// inside one module.
type Tokens struct {
	NewInvocationInfo   int
	NewExceptionContext int
	Dispatch            int
	VerdictRethrow      int
	VerdictHasValue     int
	VerdictValue        int
}

// Import adds every runtime entry point to the reference table of mod.
// Importing into the same module again yields the same tokens.
func Import(mod *ir.Module) Tokens {
	return Tokens{
		NewInvocationInfo:   mod.Import(NewInvocationInfo),
		NewExceptionContext: mod.Import(NewExceptionContext),
		Dispatch:            mod.Import(Dispatch),
		VerdictRethrow:      mod.Import(VerdictRethrow),
		VerdictHasValue:     mod.Import(VerdictHasValue),
		VerdictValue:        mod.Import(VerdictValue),
	}
}
