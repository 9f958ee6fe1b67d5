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
	"fmt"
)

// FormatError occurs when a module image cannot be decoded.
type FormatError struct {
	Path   string
	Reason string
}

func (self FormatError) Error() string {
	if self.Path != "" {
		return fmt.Sprintf("malformed module %q: %s", self.Path, self.Reason)
	} else {
		return "malformed module: " + self.Reason
	}
}

// InvalidBodyError occurs when a method body breaks a structural invariant.
type InvalidBodyError struct {
	Method string
	PC     int
	Reason string
}

func (self InvalidBodyError) Error() string {
	if self.PC < 0 {
		return fmt.Sprintf("invalid body of %s: %s", self.Method, self.Reason)
	} else {
		return fmt.Sprintf("invalid body of %s at L_%04d: %s", self.Method, self.PC, self.Reason)
	}
}
