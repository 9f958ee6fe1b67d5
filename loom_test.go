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

package loom

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/loom/aop"
	"github.com/cloudwego/loom/filter"
	"github.com/cloudwego/loom/ir"
	"github.com/cloudwego/loom/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModule() *ir.Module {
	cls := &ir.TypeDef{Name: "Calc", Kind: ir.Class}
	cls.AddMethod(&ir.MethodDef{
		Name:   "divide",
		Static: true,
		Params: []ir.Param{{Name: "a", Type: ir.Int}, {Name: "b", Type: ir.Int}},
		Return: ir.Int,
		Body: &ir.MethodBody{
			Instrs: []ir.Instr{ir.Ldarg(0), ir.Ldarg(1), ir.Op(ir.OP_div), ir.Op(ir.OP_ret)},
		},
	})
	cls.AddMethod(&ir.MethodDef{
		Name:   "broken",
		Static: true,
		Return: ir.Void,
		Body: &ir.MethodBody{
			Instrs:  []ir.Instr{ir.Op(ir.OP_ret), ir.Op(ir.OP_pop), ir.Jump(ir.OP_leave, 3), ir.Op(ir.OP_ret)},
			Regions: []ir.Region{{TryStart: 0, TryEnd: 1, HandlerStart: 1, HandlerEnd: 3, CatchType: ir.AnyException}},
		},
	})
	return &ir.Module{Name: "calc", Types: []*ir.TypeDef{cls}}
}

func saveModule(t *testing.T, mod *ir.Module) string {
	path := filepath.Join(t.TempDir(), "calc.lm")
	require.NoError(t, ir.Save(path, mod))
	return path
}

type recordingSymbols struct {
	loaded []string
	saved  []string
}

func (self *recordingSymbols) LoadSymbols(_ *ir.Module, path string) error {
	self.loaded = append(self.loaded, path)
	return nil
}

func (self *recordingSymbols) SaveSymbols(_ *ir.Module, path string) error {
	self.saved = append(self.saved, path)
	return nil
}

func TestWeave_Options(t *testing.T) {
	_, err := Weave(newModule())
	var re *RewriteError
	require.True(t, errors.As(err, &re))

	only, err := filter.ExprMethods(`Name == "divide"`)
	require.NoError(t, err)
	mod := newModule()
	rep, err := Weave(mod, WithFilters(filter.Set{Methods: only}), WithFilters(filter.Set{Methods: filter.All[*ir.MethodDef]()}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Calc::divide(int,int):int"}, rep.Rewritten)

	rep, err = Weave(newModule(), WithFailurePolicy(Skip))
	require.NoError(t, err)
	assert.Equal(t, []string{"Calc::broken():void"}, rep.Skipped)
	assert.Error(t, rep.Failures)

	assert.Panics(t, func() { WithFailurePolicy(FailurePolicy(9)) })
	assert.Panics(t, func() { WithSymbols(nil) })
}

func TestWeaveFile(t *testing.T) {
	path := saveModule(t, newModule())
	rep, err := WeaveFile(path, WithFailurePolicy(Skip))
	require.NoError(t, err)
	assert.Equal(t, []string{"Calc"}, rep.Marked)

	mod, err := ir.Load(path)
	require.NoError(t, err)
	reg := aop.NewRegistry()
	reg.Register(aop.Suppress(nil, -1))
	ret, err := vm.New(mod, vm.WithRegistry(reg)).Invoke("Calc", "divide", nil, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), ret)
}

func TestWeaveFile_Failures(t *testing.T) {
	_, err := WeaveFile(filepath.Join(t.TempDir(), "missing.lm"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	/* malformed input */
	bad := filepath.Join(t.TempDir(), "bad.lm")
	require.NoError(t, os.WriteFile(bad, []byte("not a module"), 0644))
	_, err = WeaveFile(bad)
	var fe FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, bad, fe.Path)

	/* an aborted run writes nothing */
	path := saveModule(t, newModule())
	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = WeaveFile(path, WithFailurePolicy(Abort))
	require.Error(t, err)
	now, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, now)
}

func TestWeaveFile_Symbols(t *testing.T) {
	store := new(recordingSymbols)
	path := saveModule(t, newModule())
	_, err := WeaveFile(path, WithFailurePolicy(Skip), WithSymbols(store))
	require.NoError(t, err)
	assert.Empty(t, store.loaded)

	sym := ir.SymbolPath(path)
	require.NoError(t, os.WriteFile(sym, nil, 0644))
	_, err = WeaveFile(path, WithFailurePolicy(Skip), WithSymbols(store))
	require.NoError(t, err)
	assert.Equal(t, []string{sym}, store.loaded)
	assert.Equal(t, []string{sym}, store.saved)
}

func TestSetDefaults(t *testing.T) {
	old := SetDefaultFailurePolicy(Skip)
	defer SetDefaultFailurePolicy(old)
	rep, err := Weave(newModule())
	require.NoError(t, err)
	assert.Len(t, rep.Skipped, 1)

	oldVerify := SetDefaultVerify(false)
	assert.False(t, SetDefaultVerify(oldVerify))
}
