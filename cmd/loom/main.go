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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudwego/loom"
	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/internal/opts"
	"github.com/cloudwego/loom/ir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var (
	filtersFlag = &cli.StringSliceFlag{
		Name:  "filters",
		Usage: "filter file to select types and methods with, the first file defining a filter wins",
	}
	policyFlag = &cli.StringFlag{
		Name:  "failure-policy",
		Usage: "what to do with methods that cannot be rewritten (abort, skip)",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (trace, debug, info, warn, error)",
		Value: "info",
	}
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "print the rewritten method bodies",
	}
)

func newApp(stdout io.Writer, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "loom",
		Usage:     "weave exception interception into a compiled module",
		ArgsUsage: "<path-to-module>",
		Flags:     []cli.Flag{filtersFlag, policyFlag, logLevelFlag, dumpFlag},
		Action:    weaveModule,
		Writer:    stdout,
		ErrWriter: stderr,

		/* exit codes are chosen by main */
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func newLogger(ctx *cli.Context) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(ctx.String(logLevelFlag.Name))
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: ctx.App.ErrWriter, NoColor: true}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func weaveModule(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return cli.ShowAppHelp(ctx)
	} else if ctx.NArg() > 1 {
		return errors.New("too many arguments")
	}

	/* nothing is done to a file that does not exist */
	path := ctx.Args().First()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", path)
	}

	/* build the options */
	log, err := newLogger(ctx)
	if err != nil {
		return err
	}
	set, err := filter.LoadFiles(ctx.StringSlice(filtersFlag.Name)...)
	if err != nil {
		return err
	}
	options := []loom.Option{loom.WithLogger(log), loom.WithFilters(set)}
	if name := ctx.String(policyFlag.Name); name != "" {
		policy, err := opts.ParseFailurePolicy(name)
		if err != nil {
			return err
		}
		options = append(options, loom.WithFailurePolicy(policy))
	}

	/* weave the module in place */
	rep, err := loom.WeaveFile(path, options...)
	if err != nil {
		return err
	}
	if rep.Failures != nil {
		log.Warn().Int("skipped", len(rep.Skipped)).Msg(rep.Failures.Error())
	}
	if ctx.Bool(dumpFlag.Name) {
		if err = dump(ctx.App.Writer, path, rep); err != nil {
			return err
		}
	}
	fmt.Fprintf(ctx.App.Writer, "Woven module '%s' -> '%s'\n", path, path)
	return nil
}

func dump(w io.Writer, path string, rep *loom.Report) error {
	mod, err := ir.Load(path)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(rep.Rewritten))
	for _, sig := range rep.Rewritten {
		done[sig] = true
	}
	for _, t := range mod.Types {
		for _, m := range t.Methods {
			if done[m.Signature()] {
				fmt.Fprintf(w, "%s\n%s\n", m.Signature(), ir.Disassemble(m.Body))
			}
		}
	}
	return nil
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "loom: fatal: %v\n", err)
		os.Exit(1)
	}
}
