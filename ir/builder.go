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

// Builder assembles an instruction sequence whose branch targets are given
// as symbolic labels, and resolves every label to a position on Build.
type Builder struct {
	buf   []Instr
	refs  map[string]int
	pends map[string][]int
}

func CreateBuilder() *Builder {
	return newBuilder()
}

// PC is the position the next emitted instruction will occupy.
func (self *Builder) PC() int {
	return len(self.buf)
}

func (self *Builder) Emit(ins Instr) int {
	self.buf = append(self.buf, ins)
	return len(self.buf) - 1
}

// Jump emits a branching instruction targeting the label to, which may be
// linked before or after this point.
func (self *Builder) Jump(op OpCode, to string) int {
	if !op.IsBranch() {
		panic("not a branch instruction: " + op.String())
	}

	/* check for backward jumps */
	pc, ok := self.refs[to]
	if !ok {
		self.pends[to] = append(self.pends[to], self.PC())
	}

	/* add to instruction buffer */
	return self.Emit(Instr{Op: op, Iv: int64(pc)})
}

// Label links to to the current position.
func (self *Builder) Label(to string) {
	pc := self.PC()

	/* check for duplications */
	if _, ok := self.refs[to]; ok {
		panic("label " + to + " has already been linked")
	}

	/* patch all the pending jumps */
	for _, p := range self.pends[to] {
		self.buf[p].Iv = int64(pc)
	}

	/* mark the label as resolved */
	self.refs[to] = pc
	delete(self.pends, to)
}

// Pos returns the position a linked label resolved to.
func (self *Builder) Pos(label string) int {
	if pc, ok := self.refs[label]; !ok {
		panic("label " + label + " is not linked")
	} else {
		return pc
	}
}

// Build returns the assembled instructions. The Builder must not be used
// afterwards.
func (self *Builder) Build() []Instr {
	for key := range self.pends {
		panic("labels are not fully resolved: " + key)
	}

	/* copy the result out, the buffer goes back to the pool */
	ret := make([]Instr, len(self.buf))
	copy(ret, self.buf)
	freeBuilder(self)
	return ret
}
