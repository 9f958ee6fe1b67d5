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
	"fmt"
)

// Exception types raised by the interpreter itself.
const (
	DivideByZeroException    = "DivideByZeroException"
	NullReferenceException   = "NullReferenceException"
	InvalidCastException     = "InvalidCastException"
	MissingMethodException   = "MissingMethodException"
	StackOverflowException   = "StackOverflowException"
	InvalidProgramException  = "InvalidProgramException"
	UnhandledPanicException  = "UnhandledPanicException"
	IndexOutOfRangeException = "IndexOutOfRangeException"
)

// Exception is a platform exception. Any Go error may be thrown by
// interpreted code, Exception is what the interpreter throws on its own.
type Exception struct {
	Type    string
	Message string
}

func (self *Exception) Error() string {
	return self.Type + ": " + self.Message
}

func (self *Exception) ExceptionType() string {
	return self.Type
}

func throwf(typ string, format string, args ...interface{}) *Exception {
	return &Exception{Type: typ, Message: fmt.Sprintf(format, args...)}
}

// ExceptionType returns the name protected regions match exc against.
// Errors that do not name their own type are plain "Exception"s.
func ExceptionType(exc error) string {
	if v, ok := exc.(interface{ ExceptionType() string }); ok {
		return v.ExceptionType()
	} else {
		return "Exception"
	}
}
