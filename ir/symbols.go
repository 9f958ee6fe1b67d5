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
	"path/filepath"
	"strings"
)

// SymbolExt is the extension of the debug-symbol sidecar of a module image.
const SymbolExt = ".sym"

// SymbolStore loads and saves the debug symbols that accompany a module.
type SymbolStore interface {
	LoadSymbols(mod *Module, path string) error
	SaveSymbols(mod *Module, path string) error
}

// NopSymbols is a SymbolStore that does nothing. Symbol persistence is not
// supported by the image format yet.
type NopSymbols struct{}

func (NopSymbols) LoadSymbols(*Module, string) error { return nil }
func (NopSymbols) SaveSymbols(*Module, string) error { return nil }

// SymbolPath returns the sidecar path for the module image at path.
func SymbolPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + SymbolExt
}
