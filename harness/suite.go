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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/coreos/microharness/harness/diag"
	"github.com/coreos/microharness/harness/reporters"
	"github.com/coreos/microharness/harness/scoped"
	"github.com/coreos/microharness/harness/testresult"
	"github.com/coreos/microharness/harness/tty"
)

const (
	defaultOutputDir = "_harness_temp"
)

var (
	SuiteEmpty  = errors.New("harness: no tests to run")
	SuiteFailed = errors.New("harness: test suite failed")

	plog = capnslog.NewPackageLogger("github.com/coreos/microharness", "harness")

	separator = strings.Repeat("-", 80)
)

// Options
type Options struct {
	// The directory in which to write profile files, the TAP file and
	// reports. Nothing is written when it is empty and no profile or
	// reporter asks for it.
	OutputDir string

	// Echo every assertion's check as it runs.
	Verbose bool

	// Run only tests matching a regexp.
	Match string

	// Enable memory profiling.
	MemProfile     bool
	MemProfileRate int

	// Enable CPU profiling.
	CpuProfile bool

	// Enable goroutine block profiling.
	BlockProfile     bool
	BlockProfileRate int

	// Enable execution trace.
	ExecutionTrace bool

	// Panic Suite execution after a timeout (0 means unlimited).
	Timeout time.Duration

	// Coloring of the pass and fail markers.
	Color tty.ColorMode

	// How TimeLimitAsync isolates the function it stops.
	Isolation Isolation

	// Arguments given to the re-executed binary by IsolationProcess.
	// Defaults to the arguments of the current process.
	ChildArgs []string

	// Upper bound of the bytes a test may hold through H.Alloc.
	AllocLimit int64

	// Where the run is printed. Defaults to os.Stderr.
	Output io.Writer

	Reporters reporters.Reporters
}

// FlagSet can be used to setup options via command line flags.
// An optional prefix can be prepended to each flag.
// Defaults can be specified prior to calling FlagSet.
func (o *Options) FlagSet(prefix string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	o.init()
	name := strings.Trim(prefix, ".-")
	f := flag.NewFlagSet(name, errorHandling)
	f.StringVar(&o.OutputDir, prefix+"outputdir", o.OutputDir,
		"write profiles, reports, and other data to `dir`")
	f.BoolVar(&o.Verbose, prefix+"v", o.Verbose,
		"verbose: echo every assertion")
	f.StringVar(&o.Match, prefix+"run", o.Match,
		"run only tests matching `regexp`")
	f.BoolVar(&o.MemProfile, prefix+"memprofile", o.MemProfile,
		"write a memory profile to 'dir/mem.prof'")
	f.IntVar(&o.MemProfileRate, prefix+"memprofilerate", o.MemProfileRate,
		"set memory profiling `rate` (see runtime.MemProfileRate)")
	f.BoolVar(&o.CpuProfile, prefix+"cpuprofile", o.CpuProfile,
		"write a cpu profile to 'dir/cpu.prof'")
	f.BoolVar(&o.BlockProfile, prefix+"blockprofile", o.BlockProfile,
		"write a goroutine blocking profile to 'dir/block.prof'")
	f.IntVar(&o.BlockProfileRate, prefix+"blockprofilerate", o.BlockProfileRate,
		"set blocking profile `rate` (see runtime.SetBlockProfileRate)")
	f.BoolVar(&o.ExecutionTrace, prefix+"trace", o.ExecutionTrace,
		"write an execution trace to 'dir/exec.trace'")
	f.DurationVar(&o.Timeout, prefix+"timeout", o.Timeout,
		"fail test binary execution after duration `d` (0 means unlimited)")
	f.Var(&o.Color, prefix+"color",
		"color pass and fail markers: auto, always or never")
	f.Var(&o.Isolation, prefix+"isolation",
		"stop hard time limited functions in a `process` or a goroutine")
	f.Int64Var(&o.AllocLimit, prefix+"alloclimit", o.AllocLimit,
		"refuse test allocations beyond `bytes`")
	return f
}

// init fills in any default values that shouldn't be the zero value.
func (o *Options) init() {
	if o.OutputDir == "" && o.wantsFiles() {
		o.OutputDir = defaultOutputDir
	}
	if o.MemProfileRate < 1 {
		o.MemProfileRate = runtime.MemProfileRate
	}
	if o.BlockProfileRate < 1 {
		o.BlockProfileRate = 1
	}
	if o.AllocLimit < 1 {
		o.AllocLimit = scoped.DefaultLimit
	}
	if o.Output == nil {
		o.Output = os.Stderr
	}
	o.Verbose = o.Verbose || defaultVerbose
}

func (o *Options) wantsFiles() bool {
	return o.MemProfile || o.CpuProfile || o.BlockProfile || o.ExecutionTrace || len(o.Reporters) > 0
}

// Suite is a type passed to a TestMain function to run the actual tests.
// Suite manages the execution of a set of test functions.
type Suite struct {
	opts     Options
	tests    Tests
	match    *matcher
	matchErr error

	stream *syncWriter
	sw     tty.StyleWriter
	diag   diag.Buffer
	alloc  *scoped.Allocator

	verbose  bool
	failures int
	replay   *replay
}

// NewSuite creates a new test suite.
// All parameters in Options cannot be modified once given to Suite.
func NewSuite(opts Options, tests Tests) *Suite {
	opts.init()
	stream := &syncWriter{w: opts.Output}
	s := &Suite{
		opts:    opts,
		tests:   tests,
		stream:  stream,
		sw:      tty.New(stream, opts.Color),
		alloc:   scoped.New(opts.AllocLimit),
		verbose: opts.Verbose,
	}
	s.match, s.matchErr = newMatcher(opts.Match)
	return s
}

// UseVerbosePrint turns the echo of every assertion on or off.
func (s *Suite) UseVerbosePrint(v bool) {
	s.verbose = v
}

// ResetFailures zeroes the failure counter. Run does this on entry.
func (s *Suite) ResetFailures() {
	s.failures = 0
}

// Failures returns the number of tests that failed since the last reset.
func (s *Suite) Failures() int {
	return s.failures
}

// Run runs the tests. Returns SuiteFailed for any test failure.
func (s *Suite) Run() (err error) {
	r, err := replayFromEnv()
	if err != nil {
		return err
	}
	if r != nil {
		return s.runReplay(r)
	}
	if s.matchErr != nil {
		return s.matchErr
	}
	s.ResetFailures()

	tap := io.Discard
	if s.opts.OutputDir != "" {
		flushProfile := func(name string, f *os.File) {
			err2 := pprof.Lookup(name).WriteTo(f, 0)
			if err == nil && err2 != nil {
				err = errors.Wrapf(err2, "harness: can't write %s profile", name)
			}
			f.Close()
		}

		outputDir, dirErr := CleanOutputDir(s.opts.OutputDir)
		if dirErr != nil {
			return dirErr
		}
		s.opts.OutputDir = outputDir

		tapFile, tapErr := os.Create(s.outputPath("test.tap"))
		if tapErr != nil {
			return tapErr
		}
		defer tapFile.Close()
		if _, err := fmt.Fprintf(tapFile, "1..%d\n", len(s.tests)); err != nil {
			return err
		}
		tap = tapFile

		defer s.flushReports(&err)

		if s.opts.MemProfile {
			runtime.MemProfileRate = s.opts.MemProfileRate
			f, err := os.Create(s.outputPath("mem.prof"))
			if err != nil {
				return err
			}
			defer func() {
				runtime.GC() // materialize all statistics
				flushProfile("heap", f)
			}()
		}
		if s.opts.BlockProfile {
			f, err := os.Create(s.outputPath("block.prof"))
			if err != nil {
				return err
			}
			runtime.SetBlockProfileRate(s.opts.BlockProfileRate)
			defer func() {
				runtime.SetBlockProfileRate(0) // stop profile
				flushProfile("block", f)
			}()
		}
		if s.opts.CpuProfile {
			f, err := os.Create(s.outputPath("cpu.prof"))
			if err != nil {
				return err
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return errors.Wrapf(err, "harness: can't start cpu profile")
			}
			defer pprof.StopCPUProfile() // flushes profile to disk
		}
		if s.opts.ExecutionTrace {
			f, err := os.Create(s.outputPath("exec.trace"))
			if err != nil {
				return err
			}
			defer f.Close()
			if err := trace.Start(f); err != nil {
				return errors.Wrapf(err, "harness: can't start tracing")
			}
			defer trace.Stop() // flushes trace to disk
		}
	}
	if s.opts.Timeout > 0 {
		timer := time.AfterFunc(s.opts.Timeout, func() {
			debug.SetTraceback("all")
			panic(fmt.Sprintf("harness: tests timed out after %v", s.opts.Timeout))
		})
		defer timer.Stop()
	}

	return s.runTests(tap)
}

func (s *Suite) runTests(tap io.Writer) error {
	n := len(s.tests)
	fmt.Fprintf(s.stream, "Running %d test%s.\n\n", n, plural(n))

	start := time.Now()
	ran := 0
	for i, t := range s.tests {
		if !s.match.matches(t.Name) {
			t.Passed, t.Result, t.Duration = true, testresult.Skip, 0
			fmt.Fprintf(tap, "ok %d - %s # SKIP\n", i+1, rewrite(t.Name))
			s.opts.Reporters.ReportTest(t.Name, testresult.Skip, 0, nil)
			continue
		}
		ran++
		s.runTest(i, t, tap)
	}

	fmt.Fprintf(s.stream, "Tests completed in %f seconds with %d / %d passed (%d failed).\n\n",
		time.Since(start).Seconds(), n-s.failures, n, s.failures)

	if ran == 0 {
		return SuiteEmpty
	}
	if s.failures > 0 {
		s.opts.Reporters.SetResult(testresult.Fail)
		return SuiteFailed
	}
	s.opts.Reporters.SetResult(testresult.Pass)
	return nil
}

// runTest runs a single test on its own goroutine and waits for it. A
// failed assertion unwinds that goroutine only.
func (s *Suite) runTest(i int, t *Test, tap io.Writer) {
	fmt.Fprintf(s.stream, "%s\n[%d / %d] ", separator, i+1, len(s.tests))
	fmt.Fprintf(s.stream, "Running test \"%s\":\n", t.Name)
	if s.verbose {
		io.WriteString(s.stream, "\n")
	}

	h := s.newH(t.Name, i, context.Background())
	h.mode = ModeRunner
	s.alloc.SetLogger(h.memlog)
	go tRunner(&h.common, func() { t.F(h) })
	<-h.signal
	h.mode = ModeIdle

	passed := !h.Failed()
	result := testresult.Pass
	switch {
	case !passed:
		s.failures++
		result = testresult.Fail
		h.emit("\nTest failed. ", false)
	case h.Skipped():
		result = testresult.Skip
		h.emit("\nTest passed. ", true)
	default:
		h.emit("\nTest passed. ", true)
	}
	fmt.Fprintf(h.w, "\"%s\" terminated in %f seconds.\n", t.Name, h.duration.Seconds())

	if freed := s.alloc.FreeAll(); freed > 0 {
		plog.Debugf("released %d allocations left by %q", freed, t.Name)
	}
	s.alloc.SetLogger(nil)
	fmt.Fprintf(s.stream, "%s\n\n", separator)

	t.Passed, t.Result, t.Duration = passed, result, h.duration

	status := "ok"
	if !passed {
		status = "not ok"
	}
	directive := ""
	if result == testresult.Skip {
		directive = " # SKIP"
	}
	fmt.Fprintf(tap, "%s %d - %s%s\n", status, i+1, rewrite(t.Name), directive)
	s.opts.Reporters.ReportTest(t.Name, result, h.duration, h.capturedOutput())
}

// newH returns a handle sharing the suite's diagnostic buffer and allocator.
func (s *Suite) newH(name string, index int, parent context.Context) *H {
	h := &H{}
	h.init(s, name, index, parent)
	h.diag = &s.diag
	h.alloc = s.alloc
	return h
}

// flushReports writes every reporter into OutputDir/reports, keeping the
// first error.
func (s *Suite) flushReports(err *error) {
	if len(s.opts.Reporters) == 0 || s.opts.OutputDir == "" {
		return
	}
	reportDir := s.outputPath("reports")
	if mkErr := os.MkdirAll(reportDir, 0777); mkErr != nil {
		if *err == nil {
			*err = errors.Wrapf(mkErr, "harness: creating %s", reportDir)
		}
		return
	}
	if reportErr := s.opts.Reporters.Output(reportDir); reportErr != nil && *err == nil {
		*err = reportErr
	}
}

// outputPath returns the file name under Options.OutputDir.
func (s *Suite) outputPath(path string) string {
	return filepath.Join(s.opts.OutputDir, path)
}

// CleanOutputDir creates dir if needed and removes what a previous run
// left in it. It returns the absolute path of dir.
func CleanOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("harness: output directory not set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "harness: resolving %s", dir)
	}
	if err := os.MkdirAll(abs, 0777); err != nil {
		return "", errors.Wrapf(err, "harness: creating %s", abs)
	}
	stale := []string{"test.tap", "reports", "exec.trace"}
	profiles, err := filepath.Glob(filepath.Join(abs, "*.prof"))
	if err != nil {
		return "", err
	}
	for _, name := range stale {
		profiles = append(profiles, filepath.Join(abs, name))
	}
	for _, path := range profiles {
		if err := os.RemoveAll(path); err != nil {
			return "", errors.Wrapf(err, "harness: cleaning %s", abs)
		}
	}
	return abs, nil
}

func plural(n int) string {
	if n != 1 {
		return "s"
	}
	return ""
}
