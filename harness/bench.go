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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coreos/microharness/harness/reporters"
	"github.com/coreos/microharness/harness/testresult"
)

// B is a type passed to Benchmark functions. Assertions made through B
// never fail the benchmark: they print a warning and are counted.
type B struct {
	common

	// Iteration counts from 1 within the current phase.
	Iteration int
	// Warmup is set while warmup iterations run.
	Warmup bool
}

// BenchmarkResult holds the timings of one benchmark.
type BenchmarkResult = reporters.Benchmark

// RunBenchmarks runs every benchmark warmup+times times in registration
// order. Warmup iterations only count towards the "with warmup" figures.
// It does nothing in a process started for a timed call.
func (s *Suite) RunBenchmarks(bs Benchmarks, warmup, times int) []BenchmarkResult {
	if s.replay != nil || os.Getenv(envTimedTest) != "" {
		return nil
	}
	warmup, times = max(warmup, 0), max(times, 0)

	n := len(bs)
	fmt.Fprintf(s.stream, "Running %d benchmark%s.\n\n", n, plural(n))

	var total time.Duration
	failed := false
	results := make([]BenchmarkResult, 0, n)
	for i, bm := range bs {
		fmt.Fprintf(s.stream, "%s\n[%d / %d] ", separator, i+1, n)
		r := s.runBenchmark(i, bm, warmup, times)
		fmt.Fprintf(s.stream, "%s\n\n", separator)

		total += r.TotalWithWarmup
		failed = failed || r.Result == testresult.Fail
		results = append(results, r)
		s.opts.Reporters.ReportBenchmark(r)
	}
	fmt.Fprintf(s.stream, "Benchmarks completed in %f seconds.\n\n", total.Seconds())

	switch {
	case failed:
		s.opts.Reporters.SetResult(testresult.Fail)
	case len(s.tests) == 0:
		s.opts.Reporters.SetResult(testresult.Pass)
	}
	var err error
	s.flushReports(&err)
	if err != nil {
		plog.Errorf("writing benchmark reports: %v", err)
	}
	return results
}

func (s *Suite) runBenchmark(index int, bm *Benchmark, warmup, times int) BenchmarkResult {
	fmt.Fprintf(s.stream, "Running benchmark \"%s\":\n\n", bm.Name)

	b := &B{}
	b.init(s, bm.Name, index, context.Background())
	b.diag = &s.diag
	b.alloc = s.alloc
	b.mode = ModeBenchmark
	s.alloc.SetLogger(b.memlog)
	defer s.alloc.SetLogger(nil)

	r := BenchmarkResult{Name: bm.Name, Warmup: warmup, Times: times, Result: testresult.Pass}
	for i := 0; i < warmup+times; i++ {
		b.Warmup = i < warmup
		phase, total := "benchmark", times
		if b.Warmup {
			b.Iteration = i + 1
			phase, total = "warmup", warmup
		} else {
			b.Iteration = i - warmup + 1
		}
		fmt.Fprintf(b.w, "Running %s iteration %d / %d. ", phase, b.Iteration, total)

		b.ctx, b.cancel = context.WithCancel(context.Background())
		b.finished, b.duration = false, 0
		go tRunner(&b.common, func() { bm.F(b) })
		<-b.signal
		if b.Failed() {
			b.emit(fmt.Sprintf("\nBenchmark \"%s\" failed in %s iteration %d.\n", bm.Name, phase, b.Iteration), false)
			r.Result = testresult.Fail
			break
		}

		fmt.Fprintf(b.w, "Finished %s iteration %d / %d in %f seconds.\n", phase, b.Iteration, total, b.duration.Seconds())
		if !b.Warmup {
			r.Total += b.duration
		}
		r.TotalWithWarmup += b.duration
	}
	if freed := s.alloc.FreeAll(); freed > 0 {
		plog.Debugf("released %d allocations left by %q", freed, bm.Name)
	}

	r.IgnoredAsserts = b.ignored
	if r.Result != testresult.Fail && b.ignored > 0 {
		r.Result = testresult.Warn
	}
	if times > 0 {
		r.Average = r.Total / time.Duration(times)
	}
	if warmup+times > 0 {
		r.AverageWithWarmup = r.TotalWithWarmup / time.Duration(warmup+times)
	}

	if r.Result != testresult.Fail {
		fmt.Fprintf(b.w, "\nBenchmark complete.\n\"%s\" finished %d iterations (and %d warmup iterations) in %f seconds (%f seconds with warmup).\nIt took %f seconds on average to run (%f seconds average with warmup).\n",
			bm.Name, times, warmup, r.Total.Seconds(), r.TotalWithWarmup.Seconds(),
			r.Average.Seconds(), r.AverageWithWarmup.Seconds())
	}
	return r
}
