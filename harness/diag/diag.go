// Copyright 2026 CoreOS, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag holds the context and message of the most recent assertion.
//
// A Buffer is written right before every assertion is checked so that a
// failure report can name the call site and describe the check. The message
// lives in a fixed rune buffer; formatting never grows it.
package diag

import (
	"fmt"
	"unicode/utf8"
)

// Capacity is the size of the message buffer in code units, terminator included.
const Capacity = 1024

// Width records which formatter produced the current message.
type Width int

const (
	Narrow Width = iota
	Wide
)

func (w Width) String() string {
	if w == Wide {
		return "wide"
	}
	return "narrow"
}

// Context identifies the call site of an assertion.
type Context struct {
	File   string
	Func   string
	Assert string
	Line   int
}

// Buffer is not safe for concurrent use.
type Buffer struct {
	ctx   Context
	width Width
	msg   [Capacity]rune
	n     int // runes in msg
	used  int // code units consumed, bytes for Narrow and runes for Wide
}

func (b *Buffer) SetFile(path string) { b.ctx.File = clip(path) }
func (b *Buffer) SetCaller(fn string) { b.ctx.Func = clip(fn) }
func (b *Buffer) SetAssert(name string) { b.ctx.Assert = clip(name) }
func (b *Buffer) SetLine(n int) { b.ctx.Line = n }

// Context returns the last recorded call site.
func (b *Buffer) Context() Context {
	return b.ctx
}

// FormatNarrow replaces the message. The formatted text is cut after
// Capacity-1 bytes.
func (b *Buffer) FormatNarrow(format string, args ...interface{}) string {
	b.reset(Narrow)
	fmt.Fprintf(writer{b}, format, args...)
	return b.Message()
}

// FormatWide replaces the message. The formatted text is cut after
// Capacity-1 runes.
func (b *Buffer) FormatWide(format string, args ...interface{}) string {
	b.reset(Wide)
	fmt.Fprintf(writer{b}, format, args...)
	return b.Message()
}

// LastWidth reports which formatter wrote the current message.
func (b *Buffer) LastWidth() Width {
	return b.width
}

// Message returns the current message.
func (b *Buffer) Message() string {
	return string(b.msg[:b.n])
}

// Len returns the number of code units in the current message.
func (b *Buffer) Len() int {
	return b.used
}

func (b *Buffer) reset(w Width) {
	b.width = w
	b.n = 0
	b.used = 0
}

// writer appends to the message and silently drops anything past the
// capacity so that fmt never sees a short write.
type writer struct {
	b *Buffer
}

func (w writer) Write(p []byte) (int, error) {
	b := w.b
	rest := p
	for len(rest) > 0 && b.used < Capacity-1 {
		r, size := utf8.DecodeRune(rest)
		cost := 1
		if b.width == Narrow {
			cost = size
		}
		if b.used+cost > Capacity-1 {
			break
		}
		b.msg[b.n] = r
		b.n++
		b.used += cost
		rest = rest[size:]
	}
	return len(p), nil
}

// clip cuts s to at most Capacity-1 bytes without splitting a rune.
func clip(s string) string {
	if len(s) < Capacity {
		return s
	}
	end := Capacity - 1
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
