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

//go:build linux

package harness

import (
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
)

// The child processes started here run this same test function, which
// hands over to the suite as soon as it calls Run.
func TestTimeLimitAsyncProcess(t *testing.T) {
	var tests Tests
	tests.AddTimed("returns", func(h *H) { h.True(true) }, 10, true)
	tests.AddTimed("spins", func(h *H) {
		for {
		}
	}, 0.05, true)
	tests.AddTimed("asserts", func(h *H) { h.IntEquals(1, 2) }, 10, true)
	tests.AddTimed("zero", func(h *H) {}, 0, true)
	tests.Add("second call", func(h *H) {
		h.TimeLimitAsync(func(h *H) {}, 10)
		h.TimeLimitAsync(func(h *H) { h.Fatal("second call fails") }, 10)
	})

	opts := Options{ChildArgs: []string{"-test.run=^TestTimeLimitAsyncProcess$"}}
	suite, buf := newBufferedSuite(opts, tests)
	start := time.Now()
	suite.Run()
	if d := time.Since(start); d > 20*time.Second {
		t.Errorf("suite took %v", d)
	}

	var got []bool
	for _, test := range tests {
		got = append(got, test.Passed)
	}
	want := []bool{true, false, false, false, false}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("passed flags differ (-want +got):\n%s\n%s", diff, buf.String())
	}
	if n := CountFailures(tests); n != 4 {
		t.Errorf("CountFailures: got %d, want 4", n)
	}
}
