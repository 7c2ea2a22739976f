// Copyright 2017 CoreOS, Inc.
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
	"time"
	"unicode/utf8"

	"github.com/coreos/microharness/harness/testresult"
)

// MaxNameLen bounds test and benchmark names, in runes.
const MaxNameLen = 512

// Test is a single registered test. The runner fills in Passed, Result and
// Duration each time the test runs.
type Test struct {
	Name string
	F    func(*H)

	Passed   bool
	Result   testresult.TestResult
	Duration time.Duration
}

// Tests is an ordered set of tests that can be given to a Suite.
type Tests []*Test

func boundName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLen {
		return name
	}
	plog.Warningf("name %.32q... is longer than %d characters, truncating", name, MaxNameLen)
	return string([]rune(name)[:MaxNameLen])
}

// Add appends a test. If a test with the given name already exists Add will
// panic.
func (ts *Tests) Add(name string, f func(*H)) *Test {
	name = boundName(name)
	for _, t := range *ts {
		if t.Name == name {
			panic(fmt.Errorf("harness: duplicate test %q", name))
		}
	}
	t := &Test{Name: name, F: f}
	*ts = append(*ts, t)
	return t
}

// AddTimed appends a test whose body must finish within limit seconds. With
// hard set the body is stopped at the deadline (see H.TimeLimitAsync),
// otherwise it is measured once it returns (see H.TimeLimit).
func (ts *Tests) AddTimed(name string, f func(*H), limit float64, hard bool) *Test {
	return ts.Add(name, func(h *H) {
		if hard {
			h.TimeLimitAsync(f, limit)
		} else {
			h.TimeLimit(f, limit)
		}
	})
}

// List returns the test names in registration order.
func (ts Tests) List() []string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name)
	}
	return names
}

// CountFailures returns the number of tests that did not pass in their last
// run. Tests that never ran count as failed.
func CountFailures(ts Tests) int {
	n := 0
	for _, t := range ts {
		if !t.Passed {
			n++
		}
	}
	return n
}

// Benchmark is a single registered benchmark.
type Benchmark struct {
	Name string
	F    func(*B)
}

// Benchmarks is an ordered set of benchmarks.
type Benchmarks []*Benchmark

// Add appends a benchmark. Duplicate names panic.
func (bs *Benchmarks) Add(name string, f func(*B)) *Benchmark {
	name = boundName(name)
	for _, b := range *bs {
		if b.Name == name {
			panic(fmt.Errorf("harness: duplicate benchmark %q", name))
		}
	}
	b := &Benchmark{Name: name, F: f}
	*bs = append(*bs, b)
	return b
}
