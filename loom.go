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

// Package loom weaves exception interception into compiled modules.
//
// Every selected method is wrapped in a protected region that hands the
// exceptions escaping it to the handlers of an aop.Registry at run time.
// Handlers may let the exception propagate or suppress it, optionally
// replacing the return value of the intercepted call.
package loom

import (
	"os"

	"github.com/cloudwego/loom/internal/opts"
	"github.com/cloudwego/loom/internal/weave"
	"github.com/cloudwego/loom/ir"
	"github.com/pkg/errors"
)

// Report summarizes one weaving run.
type Report = weave.Report

func buildOptions(v []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range v {
		fn(&o)
	}
	return o
}

// Weave weaves mod in place. On error mod is left as it was.
func Weave(mod *ir.Module, options ...Option) (*Report, error) {
	return weave.NewDriver(buildOptions(options)).Run(mod)
}

// WeaveFile weaves the module stored at path and writes it back to the same
// location. The debug symbols next to the module, if any, are passed to the
// configured symbol store. Nothing is written unless the whole run
// succeeds.
func WeaveFile(path string, options ...Option) (*Report, error) {
	o := buildOptions(options)
	log := o.Logger.With().Str("path", path).Logger()

	/* load the module */
	mod, err := ir.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load module")
	}
	log.Debug().Int("types", len(mod.Types)).Msg("loaded module")

	/* debug symbols are optional */
	sym := ir.SymbolPath(path)
	_, err = os.Stat(sym)
	hasSym := err == nil
	if hasSym {
		if err = o.Symbols.LoadSymbols(mod, sym); err != nil {
			return nil, errors.Wrap(err, "load symbols")
		}
	}

	/* weave and write back */
	rep, err := weave.NewDriver(o).Run(mod)
	if err != nil {
		return nil, err
	}
	if err = ir.Save(path, mod); err != nil {
		return nil, errors.Wrap(err, "save module")
	}
	if hasSym {
		if err = o.Symbols.SaveSymbols(mod, sym); err != nil {
			return nil, errors.Wrap(err, "save symbols")
		}
	}

	log.Info().
		Int("marked", len(rep.Marked)).
		Int("rewritten", len(rep.Rewritten)).
		Int("skipped", len(rep.Skipped)).
		Msg("woven module")
	return rep, nil
}
