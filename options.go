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

package loom

import (
	"fmt"

	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/internal/opts"
	"github.com/cloudwego/loom/ir"
	"github.com/rs/zerolog"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// FailurePolicy decides what happens when a single method cannot be
// rewritten.
type FailurePolicy = opts.FailurePolicy

const (
	// Abort fails the whole run and leaves the module untouched.
	Abort = opts.Abort

	// Skip leaves the failing method as it was and weaves the others. The
	// failures are reported in Report.Failures.
	Skip = opts.Skip
)

// WithFailurePolicy sets the failure policy of a run.
//
// The default value of this option is Abort.
func WithFailurePolicy(policy FailurePolicy) Option {
	if policy != Abort && policy != Skip {
		panic(fmt.Sprintf("loom: invalid failure policy: %d", int(policy)))
	} else {
		return func(o *opts.Options) { o.FailurePolicy = policy }
	}
}

// WithVerify controls whether every rewritten body is checked with
// ir.Verify before it replaces the original one.
//
// The default value of this option is "true".
func WithVerify(verify bool) Option {
	return func(o *opts.Options) { o.Verify = verify }
}

// WithFilters adds a filter set. When several sets provide the same
// capability, the one given first wins. Capabilities no set provides
// select everything.
func WithFilters(set filter.Set) Option {
	return func(o *opts.Options) { o.Filters = o.Filters.Merge(set) }
}

// WithLogger sets the logger weaving progress is reported to. Nothing is
// logged by default.
func WithLogger(log zerolog.Logger) Option {
	return func(o *opts.Options) { o.Logger = log }
}

// WithSymbols sets the store debug symbols are loaded from and saved to by
// WeaveFile.
func WithSymbols(store ir.SymbolStore) Option {
	if store == nil {
		panic("loom: nil symbol store")
	} else {
		return func(o *opts.Options) { o.Symbols = store }
	}
}

// SetDefaultFailurePolicy sets the default failure policy for all runs from
// now on.
//
// This value can also be configured with the `LOOM_FAILURE_POLICY`
// environment variable, either "abort" or "skip".
//
// Returns the old default.
func SetDefaultFailurePolicy(policy FailurePolicy) FailurePolicy {
	policy, opts.DefaultFailurePolicy = opts.DefaultFailurePolicy, policy
	return policy
}

// SetDefaultVerify sets whether rewritten bodies are verified by default.
//
// This value can also be configured with the `LOOM_VERIFY` environment
// variable.
//
// Returns the old default.
func SetDefaultVerify(verify bool) bool {
	verify, opts.DefaultVerify = opts.DefaultVerify, verify
	return verify
}
