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

package harness

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

const benchmarkAssertWarning = "\n*** [WARNING] Do not use asserts inside a benchmark! ***\n"

// at records the caller of an assertion method. It must be called directly
// from the exported assertion so the user's frame is two levels up.
func (c *common) at(assert string) {
	pc, file, line, ok := runtime.Caller(2)
	fn := "???"
	if !ok {
		file, line = "???", 0
	} else if f := runtime.FuncForPC(pc); f != nil {
		fn = shortFuncName(f.Name())
	}
	c.diag.SetFile(filepath.Base(file))
	c.diag.SetCaller(fn)
	c.diag.SetAssert(assert)
	c.diag.SetLine(line)
}

// shortFuncName strips the import path and package from a symbol name, so
// "github.com/x/pkg.(*T).Method" becomes "(*T).Method".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// vprintf records the message describing the next check and echoes it when
// verbose printing is on.
func (c *common) vprintf(format string, args ...interface{}) {
	msg := c.diag.FormatNarrow(format, args...)
	if c.Verbose() {
		io.WriteString(c.w, msg)
	}
}

// vwprintf is vprintf for messages built from wide strings.
func (c *common) vwprintf(format string, args ...interface{}) {
	msg := c.diag.FormatWide(format, args...)
	if c.Verbose() {
		io.WriteString(c.w, msg)
	}
}

// check is the assertion primitive. A true predicate returns. A false one
// reports the last recorded call site and message, then depending on the
// mode aborts the test, ends the deadline context, or only warns.
func (c *common) check(ok bool) {
	if ok {
		return
	}
	ctx := c.diag.Context()
	fmt.Fprintf(c.w, "\n[%s] Assertion Failed. %s failed in %s at line %d:\n%s",
		ctx.File, ctx.Assert, ctx.Func, ctx.Line, c.diag.Message())

	switch c.mode {
	case ModeBenchmark:
		io.WriteString(c.w, benchmarkAssertWarning)
		c.ignored++
	case ModeTimedDeadline:
		c.abortDeadline()
	default:
		c.FailNow()
	}
}

// abortDeadline ends the context running a hard time limited function: the
// child process exits, a worker goroutine exits.
func (c *common) abortDeadline() {
	if c.replay != nil {
		c.replay.exit(c, exitChildFailed)
	}
	c.FailNow()
}
