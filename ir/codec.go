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
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/cloudwego/frugal"
	"github.com/cloudwego/gopkg/protocol/thrift"
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

const (
	_Version = 1
)

var (
	_Magic = []byte("LOOM")
)

/** Module Image Layout
 *
 *      [0..4)  magic "LOOM"
 *      [4]     format version
 *      [5..)   wireModule, Thrift Binary Protocol
 */

type wireModule struct {
	Name  string      `frugal:"1,default,string"`
	Refs  []*wireRef  `frugal:"2,default,list<wireRef>"`
	Types []*wireType `frugal:"3,default,list<wireType>"`
}

type wireRef struct {
	Owner   string   `frugal:"1,default,string"`
	Name    string   `frugal:"2,default,string"`
	HasThis bool     `frugal:"3,default,bool"`
	Params  []string `frugal:"4,default,list<string>"`
	Return  string   `frugal:"5,default,string"`
}

type wireType struct {
	Name       string        `frugal:"1,default,string"`
	Kind       int32         `frugal:"2,default,i32"`
	Interfaces []string      `frugal:"3,default,list<string>"`
	Fields     []*wireField  `frugal:"4,default,list<wireField>"`
	Methods    []*wireMethod `frugal:"5,default,list<wireMethod>"`
}

type wireField struct {
	Name   string `frugal:"1,default,string"`
	Type   string `frugal:"2,default,string"`
	Static bool   `frugal:"3,default,bool"`
}

type wireMethod struct {
	Name    string        `frugal:"1,default,string"`
	Static  bool          `frugal:"2,default,bool"`
	Params  []*wireSlot   `frugal:"3,default,list<wireSlot>"`
	Return  string        `frugal:"4,default,string"`
	HasBody bool          `frugal:"5,default,bool"`
	Instrs  []*wireInstr  `frugal:"6,default,list<wireInstr>"`
	Locals  []*wireSlot   `frugal:"7,default,list<wireSlot>"`
	Regions []*wireRegion `frugal:"8,default,list<wireRegion>"`
}

type wireSlot struct {
	Name string `frugal:"1,default,string"`
	Type string `frugal:"2,default,string"`
}

type wireInstr struct {
	Op int8   `frugal:"1,default,i8"`
	Iv int64  `frugal:"2,default,i64"`
	Sv string `frugal:"3,default,string"`
}

type wireRegion struct {
	TryStart     int32  `frugal:"1,default,i32"`
	TryEnd       int32  `frugal:"2,default,i32"`
	HandlerStart int32  `frugal:"3,default,i32"`
	HandlerEnd   int32  `frugal:"4,default,i32"`
	CatchType    string `frugal:"5,default,string"`
}

// Encode serializes mod into a module image.
func Encode(mod *Module) ([]byte, error) {
	wm := toWire(mod)
	buf := make([]byte, len(_Magic)+1+frugal.EncodedSize(wm))
	copy(buf, _Magic)
	buf[len(_Magic)] = _Version

	/* encode the module body */
	if _, err := frugal.EncodeObject(buf[len(_Magic)+1:], nil, wm); err != nil {
		return nil, errors.Wrap(err, "encode module")
	} else {
		return buf, nil
	}
}

// Decode parses a module image produced by Encode.
func Decode(buf []byte) (*Module, error) {
	if len(buf) < len(_Magic)+1 || !bytes.Equal(buf[:len(_Magic)], _Magic) {
		return nil, FormatError{Reason: "bad magic"}
	} else if v := buf[len(_Magic)]; v != _Version {
		return nil, FormatError{Reason: "unsupported format version " + strconv.Itoa(int(v))}
	}

	/* walk the body first, every length it claims must fit in the image */
	body := buf[len(_Magic)+1:]
	if n, err := thrift.Binary.Skip(body, thrift.STRUCT); err != nil {
		return nil, FormatError{Reason: err.Error()}
	} else if n != len(body) {
		return nil, FormatError{Reason: "trailing bytes after module"}
	}

	/* decode the module body */
	wm, err := decodeWire(body)
	if err != nil {
		return nil, err
	}
	return fromWire(wm)
}

func decodeWire(body []byte) (wm *wireModule, err error) {
	defer rescue(&err)
	wm = new(wireModule)
	if _, err = frugal.DecodeObject(body, wm); err != nil {
		return nil, FormatError{Reason: err.Error()}
	}
	return wm, nil
}

func rescue(ep *error) {
	if val := recover(); val != nil {
		if err, ok := val.(error); ok {
			*ep = FormatError{Reason: err.Error()}
		} else {
			*ep = FormatError{Reason: fmt.Sprint(val)}
		}
	}
}

// Load reads and decodes the module stored at path.
func Load(path string) (*Module, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod, err := Decode(buf)
	if fe, ok := err.(FormatError); ok {
		fe.Path = path
		return nil, fe
	}
	return mod, err
}

// Save writes mod to path. The image is written next to the target first
// and renamed over it, so path either keeps its old content or gets the
// complete new one. An existing file keeps its permission bits.
func Save(path string, mod *Module) error {
	buf, err := Encode(mod)
	if err != nil {
		return err
	}
	err = renameio.WriteFile(path, buf, 0644, renameio.WithExistingPermissions())
	return errors.Wrap(err, "replace module")
}

func toWire(mod *Module) *wireModule {
	wm := &wireModule{Name: mod.Name}
	for _, r := range mod.Refs {
		wm.Refs = append(wm.Refs, &wireRef{
			Owner:   r.Owner,
			Name:    r.Name,
			HasThis: r.HasThis,
			Params:  typesToStrings(r.Params),
			Return:  string(r.Return),
		})
	}
	for _, t := range mod.Types {
		wt := &wireType{
			Name:       t.Name,
			Kind:       int32(t.Kind),
			Interfaces: t.Interfaces,
		}
		for _, f := range t.Fields {
			wt.Fields = append(wt.Fields, &wireField{Name: f.Name, Type: string(f.Type), Static: f.Static})
		}
		for _, m := range t.Methods {
			wt.Methods = append(wt.Methods, methodToWire(m))
		}
		wm.Types = append(wm.Types, wt)
	}
	return wm
}

func methodToWire(m *MethodDef) *wireMethod {
	wm := &wireMethod{
		Name:    m.Name,
		Static:  m.Static,
		Return:  string(m.Return),
		HasBody: m.Body != nil,
	}
	for _, p := range m.Params {
		wm.Params = append(wm.Params, &wireSlot{Name: p.Name, Type: string(p.Type)})
	}
	if m.Body == nil {
		return wm
	}
	for _, ins := range m.Body.Instrs {
		wm.Instrs = append(wm.Instrs, &wireInstr{Op: int8(ins.Op), Iv: ins.Iv, Sv: ins.Sv})
	}
	for _, v := range m.Body.Locals {
		wm.Locals = append(wm.Locals, &wireSlot{Name: v.Name, Type: string(v.Type)})
	}
	for _, r := range m.Body.Regions {
		wm.Regions = append(wm.Regions, &wireRegion{
			TryStart:     int32(r.TryStart),
			TryEnd:       int32(r.TryEnd),
			HandlerStart: int32(r.HandlerStart),
			HandlerEnd:   int32(r.HandlerEnd),
			CatchType:    string(r.CatchType),
		})
	}
	return wm
}

func fromWire(wm *wireModule) (*Module, error) {
	mod := &Module{Name: wm.Name}
	for _, r := range wm.Refs {
		if r == nil {
			return nil, FormatError{Reason: "nil reference entry"}
		}
		mod.Refs = append(mod.Refs, MethodRef{
			Owner:   r.Owner,
			Name:    r.Name,
			HasThis: r.HasThis,
			Params:  stringsToTypes(r.Params),
			Return:  Type(r.Return),
		})
	}
	for _, wt := range wm.Types {
		if wt == nil {
			return nil, FormatError{Reason: "nil type entry"}
		} else if wt.Kind < int32(Class) || wt.Kind > int32(Interface) {
			return nil, FormatError{Reason: "invalid kind of type " + wt.Name}
		}
		t := &TypeDef{
			Name:       wt.Name,
			Kind:       TypeKind(wt.Kind),
			Interfaces: wt.Interfaces,
		}
		for _, f := range wt.Fields {
			if f == nil {
				return nil, FormatError{Reason: "nil field entry in " + wt.Name}
			}
			t.Fields = append(t.Fields, &FieldDef{Name: f.Name, Type: Type(f.Type), Static: f.Static})
		}
		for _, m := range wt.Methods {
			if m == nil {
				return nil, FormatError{Reason: "nil method entry in " + wt.Name}
			}
			md, err := methodFromWire(m)
			if err != nil {
				return nil, err
			}
			t.AddMethod(md)
		}
		mod.Types = append(mod.Types, t)
	}
	return mod, nil
}

func methodFromWire(wm *wireMethod) (*MethodDef, error) {
	m := &MethodDef{
		Name:   wm.Name,
		Static: wm.Static,
		Return: Type(wm.Return),
	}
	for _, p := range wm.Params {
		if p == nil {
			return nil, FormatError{Reason: "nil parameter of " + wm.Name}
		}
		m.Params = append(m.Params, Param{Name: p.Name, Type: Type(p.Type)})
	}
	if !wm.HasBody {
		return m, nil
	}
	m.Body = new(MethodBody)
	for _, ins := range wm.Instrs {
		if ins == nil || ins.Op < 0 || OpCode(ins.Op) >= _OP_max {
			return nil, FormatError{Reason: "invalid instruction in " + wm.Name}
		}
		m.Body.Instrs = append(m.Body.Instrs, Instr{Op: OpCode(ins.Op), Iv: ins.Iv, Sv: ins.Sv})
	}
	for _, v := range wm.Locals {
		if v == nil {
			return nil, FormatError{Reason: "nil local of " + wm.Name}
		}
		m.Body.Locals = append(m.Body.Locals, Local{Name: v.Name, Type: Type(v.Type)})
	}
	for _, r := range wm.Regions {
		if r == nil {
			return nil, FormatError{Reason: "nil region of " + wm.Name}
		}
		m.Body.Regions = append(m.Body.Regions, Region{
			TryStart:     int(r.TryStart),
			TryEnd:       int(r.TryEnd),
			HandlerStart: int(r.HandlerStart),
			HandlerEnd:   int(r.HandlerEnd),
			CatchType:    Type(r.CatchType),
		})
	}
	return m, nil
}

func typesToStrings(v []Type) []string {
	if v == nil {
		return nil
	}
	ret := make([]string, len(v))
	for i, t := range v {
		ret[i] = string(t)
	}
	return ret
}

func stringsToTypes(v []string) []Type {
	if v == nil {
		return nil
	}
	ret := make([]Type, len(v))
	for i, s := range v {
		ret[i] = Type(s)
	}
	return ret
}
