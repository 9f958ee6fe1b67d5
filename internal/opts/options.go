/*
 * Copyright 2022 CloudWeGo Authors
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

package opts

import (
	"fmt"

	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/ir"
	"github.com/rs/zerolog"
)

// FailurePolicy decides what happens when a single method cannot be
// rewritten.
type FailurePolicy int

const (
	// Abort stops the run at the first failure and leaves the module
	// untouched.
	Abort FailurePolicy = iota

	// Skip leaves the failing method unmodified, records the failure and
	// carries on with the other methods.
	Skip
)

func (self FailurePolicy) String() string {
	switch self {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(self))
	}
}

// ParseFailurePolicy parses the name of a policy, as printed by String.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	default:
		return 0, fmt.Errorf("invalid failure policy %q", s)
	}
}

type Options struct {
	FailurePolicy FailurePolicy
	Verify        bool
	Filters       filter.Set
	Logger        zerolog.Logger
	Symbols       ir.SymbolStore
}

func GetDefaultOptions() Options {
	return Options{
		FailurePolicy: DefaultFailurePolicy,
		Verify:        DefaultVerify,
		Logger:        zerolog.Nop(),
		Symbols:       ir.NopSymbols{},
	}
}
