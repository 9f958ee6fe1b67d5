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

package weave

import (
	"sync/atomic"

	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/internal/opts"
	"github.com/cloudwego/loom/internal/rewrite"
	"github.com/cloudwego/loom/ir"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Report summarizes one weaving run.
type Report struct {
	Module    string
	Marked    []string
	Rewritten []string
	Skipped   []string

	// Failures aggregates the rewrite errors of skipped methods.
	Failures error
}

// Driver applies the exception interception rewriter to every eligible
// method of a module.
type Driver struct {
	opts    opts.Options
	filters filter.Set
	log     zerolog.Logger
}

func NewDriver(o opts.Options) *Driver {
	return &Driver{
		opts:    o,
		filters: o.Filters.Resolve(),
		log:     o.Logger,
	}
}

// warnUnused reports the capabilities the exception interceptor does not
// select with.
func (self *Driver) warnUnused() {
	set := self.opts.Filters
	for _, v := range []struct {
		name string
		ok   bool
	}{
		{"fields", set.Fields != nil},
		{"method_calls", set.MethodCalls != nil},
		{"new_instances", set.NewInstances != nil},
	} {
		if v.ok {
			self.log.Warn().Str("filter", v.name).Msg("filter has no effect on exception interception")
		}
	}
}

// Run weaves mod. The work is done on a copy of mod which replaces it only
// if the run succeeds, so a failed run leaves mod as it was.
func (self *Driver) Run(mod *ir.Module) (*Report, error) {
	var merr *multierror.Error
	work := mod.Clone()
	ret := &Report{Module: mod.Name}
	self.warnUnused()

	/* a method is selected only if its owner is */
	var owner filter.Predicate[*ir.MethodDef] = func(m *ir.MethodDef) (bool, error) {
		if t := work.Type(m.Owner); t == nil {
			return false, nil
		} else {
			return self.filters.Types(t)
		}
	}

	/* the rewriter is shared by all the methods of the module */
	rw := rewrite.NewCatchAll(filter.And(owner, self.filters.Methods))
	for _, t := range work.Types {
		ok, err := self.filters.Types(t)
		if err != nil {
			return nil, errors.Wrapf(err, "select type %s", t.Name)
		} else if !ok {
			continue
		}

		/* mark the type */
		if Mark(t) {
			atomic.AddUint64(&MarkCount, 1)
			ret.Marked = append(ret.Marked, t.Name)
			self.log.Debug().Str("type", t.Name).Msg("marked type")
		}

		/* rewrite the methods */
		for _, m := range t.Methods {
			if m.Body == nil {
				continue
			}
			done, err := rewrite.Run(work, m, rw, self.opts.Verify)
			if err == nil {
				if done {
					atomic.AddUint64(&RewriteCount, 1)
					ret.Rewritten = append(ret.Rewritten, m.Signature())
					self.log.Debug().Str("method", m.Signature()).Msg("rewrote method")
				}
				continue
			}

			/* predicate errors are always fatal */
			var re *rewrite.Error
			if !errors.As(err, &re) || self.opts.FailurePolicy == opts.Abort {
				return nil, err
			}

			/* skip the method and carry on */
			atomic.AddUint64(&SkipCount, 1)
			merr = multierror.Append(merr, err)
			ret.Skipped = append(ret.Skipped, m.Signature())
			self.log.Warn().Err(err).Str("method", m.Signature()).Msg("method skipped")
		}
	}

	/* commit */
	*mod = *work
	ret.Failures = merr.ErrorOrNil()
	return ret, nil
}
