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

package filter

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// File is the layout of a filter file:
//
//	[filters]
//	types   = 'Name matches "^Service"'
//	methods = 'Static == false'
//
// Every key is optional. Exception interception selects with types and
// methods only, the other filters are accepted and reported as unused.
type File struct {
	Filters struct {
		Types        string `toml:"types"`
		Methods      string `toml:"methods"`
		Fields       string `toml:"fields"`
		MethodCalls  string `toml:"method_calls"`
		NewInstances string `toml:"new_instances"`
	} `toml:"filters"`
}

// LoadFile reads the filter file at path.
func LoadFile(path string) (Set, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Set{}, errors.Wrapf(err, "load filters from %s", path)
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Set{}, errors.Errorf("load filters from %s: unknown keys: %s", path, strings.Join(names, ", "))
	}
	set, err := f.Compile()
	return set, errors.Wrapf(err, "load filters from %s", path)
}

// Compile builds the predicates of every non-empty expression in f.
func (f *File) Compile() (set Set, err error) {
	fv := &f.Filters
	if fv.Types != "" {
		if set.Types, err = ExprTypes(fv.Types); err != nil {
			return Set{}, err
		}
	}
	if fv.Methods != "" {
		if set.Methods, err = ExprMethods(fv.Methods); err != nil {
			return Set{}, err
		}
	}
	if fv.Fields != "" {
		if set.Fields, err = ExprFields(fv.Fields); err != nil {
			return Set{}, err
		}
	}
	if fv.MethodCalls != "" {
		if set.MethodCalls, err = ExprMethodCalls(fv.MethodCalls); err != nil {
			return Set{}, err
		}
	}
	if fv.NewInstances != "" {
		if set.NewInstances, err = ExprNewInstances(fv.NewInstances); err != nil {
			return Set{}, err
		}
	}
	return set, nil
}

// LoadFiles merges the filter files in order, the first file providing a
// capability wins.
func LoadFiles(paths ...string) (Set, error) {
	var ret Set
	for _, path := range paths {
		set, err := LoadFile(path)
		if err != nil {
			return Set{}, err
		}
		ret = ret.Merge(set)
	}
	return ret, nil
}
