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
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRichModule() *Module {
	mod, m := newCalc()
	m.Body.Locals = []Local{{"exc", AnyException}}
	m.Body.Instrs = append(m.Body.Instrs, Stloc(0), Ldc(-1), Op(OP_ret))
	m.Body.Regions = []Region{{0, 4, 4, 7, AnyException}}
	mod.Import(MethodRef{Owner: "aop", Name: "Dispatch", Params: []Type{Object}, Return: Object})
	cls := mod.Types[0]
	cls.Interfaces = []string{"ICalc"}
	cls.Fields = []*FieldDef{{Name: "last", Type: Int}}
	cls.AddMethod(&MethodDef{Name: "abstract", Return: Void})
	mod.Types = append(mod.Types, &TypeDef{Name: "ICalc", Kind: Interface})
	return mod
}

func TestCodec_RoundTrip(t *testing.T) {
	mod := newRichModule()
	buf, err := Encode(mod)
	require.NoError(t, err)
	assert.Equal(t, "LOOM", string(buf[:4]))

	ret, err := Decode(buf)
	require.NoError(t, err)
	spew.Config.DisablePointerMethods = true
	t.Log(spew.Sdump(ret.Refs))
	require.Len(t, ret.Types, 2)
	assert.Equal(t, mod.Name, ret.Name)
	assert.Equal(t, mod.Refs[0].Key(), ret.Refs[0].Key())

	cls := ret.Types[0]
	assert.Equal(t, Class, cls.Kind)
	assert.Equal(t, Interface, ret.Types[1].Kind)
	assert.True(t, cls.Implements("ICalc"))
	assert.Equal(t, Int, cls.Field("last").Type)
	assert.Nil(t, cls.Method("abstract").Body)

	div := cls.Method("divide")
	require.NotNil(t, div.Body)
	assert.Equal(t, "Calc", div.Owner)
	assert.Equal(t, Disassemble(mod.Types[0].Methods[0].Body), Disassemble(div.Body))
	require.NoError(t, Verify(ret, div))
}

func TestCodec_Malformed(t *testing.T) {
	buf, err := Encode(newRichModule())
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("MOOL"), buf[4:]...)},
		{"bad version", append(append([]byte("LOOM"), 9), buf[5:]...)},
		{"truncated", buf[:len(buf)/2]},
		{"trailing", append(append([]byte(nil), buf...), 0, 0)},
		{"oversized list", []byte("LOOM\x01\x0f\x00\x02\x0c\x7f\xff\xff\xff")},
		{"oversized string", []byte("LOOM\x01\x0b\x00\x01\x7f\xff\xff\xff")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			require.Error(t, err)
			assert.IsType(t, FormatError{}, err)
		})
	}
}

func TestCodec_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.lm")
	require.NoError(t, Save(path, newRichModule()))

	mod, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "calc", mod.Name)

	/* only the target is left behind */
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, ents, 1)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Equal(t, path, err.(FormatError).Path)

	_, err = Load(filepath.Join(dir, "missing.lm"))
	assert.True(t, os.IsNotExist(err))
}

func TestCodec_SaveKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.lm")
	require.NoError(t, os.WriteFile(path, nil, 0600))
	require.NoError(t, Save(path, newRichModule()))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
	_, err = Load(path)
	require.NoError(t, err)
}

func TestSymbolPath(t *testing.T) {
	assert.Equal(t, "/a/b/calc.sym", SymbolPath("/a/b/calc.lm"))
	assert.Equal(t, "calc.sym", SymbolPath("calc"))
}
