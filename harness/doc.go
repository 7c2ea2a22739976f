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

// Package harness runs unit tests and micro-benchmarks written as plain Go
// functions. Test functions have the type `func(*harness.H)` and are
// registered in order with a Tests value, which a Suite then runs one at a
// time:
//
//	var tests harness.Tests
//
//	func init() {
//		tests.Add("fma is exact for small integers", func(h *harness.H) {
//			h.DoubleEquals(math.FMA(2, 3, 4), 10, 1e-9)
//		})
//	}
//
//	func main() {
//		suite := harness.NewSuite(harness.Options{}, tests)
//		suite.Run()
//		os.Exit(harness.CountFailures(tests))
//	}
//
// # Assertions
//
// H carries a catalog of assertions (True, IntEquals, StringEquals,
// DeepArrayEquals and so on). A failed assertion prints the call site and
// a message describing the check, then ends the test; the suite moves on
// to the next one. Error, Fatal, Skip and their variants behave as in the
// standard testing package. Build with -tags harness_verbose, or call
// Suite.UseVerbosePrint, to echo every check as it runs.
//
// Memory obtained with H.Alloc, H.Calloc or H.Realloc is released when the
// test ends, however it ends.
//
// # Time limits
//
// TimeLimit measures a function and fails when it ran longer than the limit.
// TimeLimitAsync stops the function at the deadline. By default the test
// binary is executed again and only the limited call runs in the new
// process, so code before the call must not depend on anything but the
// test itself. Programs run by "go test" should set Options.ChildArgs to
// select the running Go test, for example "-test.run=^TestTimed$".
// Options.Isolation selects a goroutine instead, which is abandoned, not
// stopped, when the deadline passes.
//
// # Benchmarks
//
// Benchmark functions have the type `func(*harness.B)` and are run by
// Suite.RunBenchmarks a fixed number of warmup and measured iterations.
// Assertions inside a benchmark only print a warning.
//
// # Output
//
// Everything is printed to Options.Output, standard error by default, with
// colored pass and fail markers on terminals. When Options.OutputDir is
// set the suite also writes a TAP file, the requested profiles and the
// output of Options.Reporters there.
package harness
