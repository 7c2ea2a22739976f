// Copyright 2017 CoreOS, Inc.
// Copyright 2009 The Go Authors.
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
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coreos/microharness/harness/diag"
	"github.com/coreos/microharness/harness/scoped"
	"github.com/coreos/microharness/harness/tty"
)

// common holds the state shared by tests, benchmarks and deadline workers.
type common struct {
	mu       sync.RWMutex // guards output, failed and skipped.
	output   bytes.Buffer // Output generated by the test, kept for reporters.
	w        io.Writer    // Suite stream, teed into output.
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	suite    *Suite
	diag     *diag.Buffer
	alloc    *scoped.Allocator
	mode     Mode
	failed   bool // Test has failed.
	skipped  bool // Test has been skipped.
	finished bool // Test function has completed.
	ignored  int  // Assertions swallowed in ModeBenchmark.

	name     string
	index    int       // Position in the suite.
	start    time.Time // Time test started
	duration time.Duration
	signal   chan bool // To signal a test is done.

	timedSeq int     // TimeLimitAsync calls made so far.
	replay   *replay // Set in a re-executed child.
}

// H is a type passed to Test functions to manage test state, run
// assertions and support formatted test logs. Output is written to the
// suite stream as it happens.
//
// A test ends when its Test function returns, an assertion fails, or it
// calls any of the methods FailNow, Fatal, Fatalf, SkipNow, Skip, or Skipf.
// Those methods, as well as the assertions, must be called only from the
// goroutine running the Test function.
//
// The other reporting methods, such as the variations of Log and Error,
// may be called simultaneously from multiple goroutines.
type H struct {
	common
}

// teeWriter copies everything written for a test into its output buffer
// before passing it on to the suite stream.
type teeWriter struct {
	c *common
}

func (t teeWriter) Write(p []byte) (int, error) {
	t.c.mu.Lock()
	t.c.output.Write(p)
	t.c.mu.Unlock()
	return t.c.suite.stream.Write(p)
}

func (c *common) init(s *Suite, name string, index int, parent context.Context) {
	c.suite = s
	c.name = name
	c.index = index
	c.signal = make(chan bool, 1)
	c.w = teeWriter{c}
	c.logger = log.New(c.w, "\t", log.Lshortfile)
	c.ctx, c.cancel = context.WithCancel(parent)
}

// emit writes a pass or fail marker through the suite's style writer.
func (c *common) emit(text string, passing bool) {
	c.mu.Lock()
	c.output.WriteString(text)
	c.mu.Unlock()
	tty.Emit(c.suite.sw, text, passing)
}

// capturedOutput returns a copy of what the test printed.
func (c *common) capturedOutput() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]byte(nil), c.output.Bytes()...)
}

// Verbose reports whether assertions echo their checks.
func (c *common) Verbose() bool {
	return c.suite.verbose
}

// memlog receives the allocator's MEMORY lines.
func (c *common) memlog(format string, args ...interface{}) {
	if c.Verbose() {
		fmt.Fprintf(c.w, format, args...)
	}
}

// Name returns the name of the running test or benchmark.
func (c *common) Name() string {
	return c.name
}

// Context returns the context for the current test.
// The context is cancelled when the test finishes, or when a hard time
// limit expires for a deadline worker.
// A goroutine started during a test can wait for the
// context's Done channel to become readable as a signal that the
// test is over, so that the goroutine can exit.
func (c *common) Context() context.Context {
	return c.ctx
}

// Fail marks the function as having failed but continues execution.
func (c *common) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
}

// Failed reports whether the function has failed.
func (c *common) Failed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failed
}

// FailNow marks the function as having failed and stops its execution.
// Execution will continue at the next test.
// FailNow must be called from the goroutine running the
// test function, not from other goroutines
// created during the test. Calling FailNow does not stop
// those other goroutines.
func (c *common) FailNow() {
	c.Fail()

	// runtime.Goexit runs the deferred calls of the test, including the
	// one in tRunner that signals the runner, so cleanup always happens
	// before the next test starts.
	c.finished = true
	runtime.Goexit()
}

// log generates the output. It's always at the same stack depth.
func (c *common) log(s string) {
	c.logger.Output(3, s)
}

// Log formats its arguments using default formatting, analogous to Println,
// and writes the text to the suite stream.
func (c *common) Log(args ...interface{}) { c.log(fmt.Sprintln(args...)) }

// Logf formats its arguments according to the format, analogous to Printf.
// A final newline is added if not provided.
func (c *common) Logf(format string, args ...interface{}) { c.log(fmt.Sprintf(format, args...)) }

// Error is equivalent to Log followed by Fail.
func (c *common) Error(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.Fail()
}

// Errorf is equivalent to Logf followed by Fail.
func (c *common) Errorf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.Fail()
}

// Fatal is equivalent to Log followed by FailNow.
func (c *common) Fatal(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.FailNow()
}

// Fatalf is equivalent to Logf followed by FailNow.
func (c *common) Fatalf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.FailNow()
}

// Skip is equivalent to Log followed by SkipNow.
func (c *common) Skip(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.SkipNow()
}

// Skipf is equivalent to Logf followed by SkipNow.
func (c *common) Skipf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.SkipNow()
}

// SkipNow marks the test as having been skipped and stops its execution.
// If a test fails (see Error, Errorf, Fail) and is then skipped,
// it is still considered to have failed.
func (c *common) SkipNow() {
	c.skip()
	c.finished = true
	runtime.Goexit()
}

func (c *common) skip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = true
}

// Skipped reports whether the test was skipped.
func (c *common) Skipped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skipped
}

// Alloc returns n bytes released automatically when the test ends.
func (c *common) Alloc(n int) []byte { return c.alloc.Alloc(n) }

// Calloc returns n*size zeroed bytes released automatically when the test ends.
func (c *common) Calloc(n, size int) []byte { return c.alloc.Calloc(n, size) }

// Realloc resizes memory obtained from Alloc, Calloc or Realloc.
func (c *common) Realloc(p []byte, n int) []byte { return c.alloc.Realloc(p, n) }

// Free releases memory obtained from Alloc, Calloc or Realloc before the
// test ends. Other slices are ignored.
func (c *common) Free(p []byte) { c.alloc.Free(p) }

// tRunner runs fn on the calling goroutine and signals c.signal once fn
// returned, failed or panicked. A panic never escapes: it is reported and
// the test is marked as failed.
func tRunner(c *common, fn func()) {
	defer c.cancel()

	// When this goroutine is done, either because fn returned normally
	// or because a test failure triggered a call to runtime.Goexit,
	// record the duration and send a signal saying that the test is done.
	defer func() {
		c.duration += time.Since(c.start)
		err := recover()
		if !c.finished && err == nil {
			err = fmt.Errorf("test executed panic(nil) or runtime.Goexit")
		}
		if err != nil {
			c.Fail()
			fmt.Fprintf(c.w, "\n--- PANIC in %q: %v\n%s", c.name, err, debug.Stack())
		}
		c.signal <- true
	}()

	c.start = time.Now()
	fn()
	c.finished = true
}
