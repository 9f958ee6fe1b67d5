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

package rewrite

import (
	"fmt"
)

// Error occurs when a method cannot be rewritten. The method it refers to
// is left untouched.
type Error struct {
	Method string
	Reason string
	Cause  error
}

func (self *Error) Error() string {
	if self.Cause == nil {
		return fmt.Sprintf("cannot rewrite %s: %s", self.Method, self.Reason)
	} else {
		return fmt.Sprintf("cannot rewrite %s: %s: %v", self.Method, self.Reason, self.Cause)
	}
}

func (self *Error) Unwrap() error {
	return self.Cause
}
