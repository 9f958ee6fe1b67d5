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

package vm

import (
	"github.com/cloudwego/loom/ir"
)

// Value is anything the evaluation stack can hold: int64, bool, string,
// nil, []Value, *Object, errors, or opaque runtime handles.
type Value = interface{}

// Object is an instance of a class of the running module.
type Object struct {
	Class  string
	Fields map[string]Value
}

func newObject(t *ir.TypeDef, class string) *Object {
	obj := &Object{Class: class, Fields: make(map[string]Value)}
	if t == nil {
		return obj
	}
	for _, f := range t.Fields {
		if !f.Static {
			obj.Fields[f.Name] = f.Type.Zero()
		}
	}
	return obj
}

// normalize widens Go integers to the int64 the interpreter computes with.
func normalize(v Value) Value {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	default:
		return v
	}
}

// assignable reports whether v can be stored in a slot of type t.
func assignable(v Value, t ir.Type) bool {
	switch t {
	case ir.Int:
		_, ok := v.(int64)
		return ok
	case ir.Bool:
		_, ok := v.(bool)
		return ok
	case ir.String:
		_, ok := v.(string)
		return ok
	case ir.Array:
		_, ok := v.([]Value)
		return ok || v == nil
	case ir.AnyException:
		_, ok := v.(error)
		return ok || v == nil
	case ir.Object:
		return true
	default:
		_, ok := v.(*Object)
		return ok || v == nil
	}
}

func asInt(v Value) (int64, error) {
	if x, ok := normalize(v).(int64); ok {
		return x, nil
	} else {
		return 0, throwf(InvalidCastException, "%T is not an int", v)
	}
}

func truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	default:
		return true
	}
}

func equals(a Value, b Value) bool {
	switch x := a.(type) {
	case []Value:
		if y, ok := b.([]Value); ok {
			return len(x) == len(y) && (len(x) == 0 || &x[0] == &y[0])
		}
		return false
	default:
		if _, ok := b.([]Value); ok {
			return false
		}
		return a == b
	}
}
