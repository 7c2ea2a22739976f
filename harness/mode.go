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
	"strings"
)

// Mode decides what a failed assertion does.
type Mode int

const (
	// ModeIdle is the state outside of any test; failures behave as in ModeRunner.
	ModeIdle Mode = iota
	// ModeRunner aborts the test and returns control to the runner.
	ModeRunner
	// ModeBenchmark prints a warning and lets the benchmark continue.
	ModeBenchmark
	// ModeTimedDeadline ends the child process or worker running a hard
	// time limited function.
	ModeTimedDeadline
)

func (m Mode) String() string {
	switch m {
	case ModeRunner:
		return "runner"
	case ModeBenchmark:
		return "benchmark"
	case ModeTimedDeadline:
		return "timed-deadline"
	default:
		return "idle"
	}
}

// Isolation selects how TimeLimitAsync runs the limited function.
type Isolation int

const (
	// IsolationProcess runs the function in a re-executed copy of the
	// program which is killed at the deadline.
	IsolationProcess Isolation = iota
	// IsolationGoroutine runs the function on a worker goroutine which is
	// abandoned at the deadline. Go cannot stop a goroutine from outside,
	// so the worker keeps running until it returns or notices its
	// context was cancelled.
	IsolationGoroutine
)

func (i Isolation) String() string {
	if i == IsolationGoroutine {
		return "goroutine"
	}
	return "process"
}

// Set implements flag.Value.
func (i *Isolation) Set(s string) error {
	switch strings.ToLower(s) {
	case "process", "":
		*i = IsolationProcess
	case "goroutine":
		*i = IsolationGoroutine
	default:
		return fmt.Errorf("invalid isolation %q, want process or goroutine", s)
	}
	return nil
}

// Type implements pflag.Value.
func (i *Isolation) Type() string {
	return "isolation"
}
