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
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
)

func TestTimeLimit(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		limit float64
		sleep time.Duration
		ok    bool
	}{
		{"instant", 1, 0, true},
		{"zero limit instant", 0, 0, true},
		{"too slow", 0.001, 20 * time.Millisecond, false},
		{"nan", math.NaN(), 0, false},
	} {
		returned := false
		var tests Tests
		tests.AddTimed(tc.desc, func(h *H) {
			time.Sleep(tc.sleep)
			returned = true
		}, tc.limit, false)
		suite, buf := newBufferedSuite(Options{}, tests)
		suite.Run()
		if tests[0].Passed != tc.ok {
			t.Errorf("%s: passed %v, want %v\n%s", tc.desc, tests[0].Passed, tc.ok, buf.String())
		}
		if !returned {
			t.Errorf("%s: soft limit interrupted the function", tc.desc)
		}
	}
}

func TestTimeLimitAsyncGoroutine(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		limit float64
		f     func(*H)
		ok    bool
	}{
		{"returns", 5, func(h *H) { h.True(true) }, true},
		{"blocks", 0.05, func(h *H) { <-h.Context().Done() }, false},
		{"asserts", 5, func(h *H) { h.IntEquals(1, 2) }, false},
		{"fatal", 5, func(h *H) { h.Fatal("worker gives up") }, false},
		{"panics", 5, func(h *H) { panic("worker panics") }, false},
		{"negative", -1, func(h *H) {}, false},
		{"nan", math.NaN(), func(h *H) {}, false},
		{"nested", 5, func(h *H) {
			h.TimeLimitAsync(func(h *H) { h.True(true) }, 0)
		}, true},
	} {
		var tests Tests
		tests.AddTimed(tc.desc, tc.f, tc.limit, true)
		suite, buf := newBufferedSuite(Options{Isolation: IsolationGoroutine}, tests)
		start := time.Now()
		suite.Run()
		if tests[0].Passed != tc.ok {
			t.Errorf("%s: passed %v, want %v\n%s", tc.desc, tests[0].Passed, tc.ok, buf.String())
		}
		if d := time.Since(start); d > 3*time.Second {
			t.Errorf("%s: took %v", tc.desc, d)
		}
	}
}

func TestWorkerIsolation(t *testing.T) {
	var outer, inner int
	var tests Tests
	tests.Add("isolated", func(h *H) {
		h.Alloc(8)
		h.TimeLimitAsync(func(w *H) {
			w.Alloc(16)
			w.Alloc(16)
			inner = w.alloc.Live()
			if w.mode != ModeTimedDeadline {
				w.Errorf("worker mode %v", w.mode)
			}
		}, 5)
		outer = h.alloc.Live()
	})
	suite, buf := newBufferedSuite(Options{Isolation: IsolationGoroutine}, tests)
	if err := suite.Run(); err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}
	if outer != 1 || inner != 2 {
		t.Errorf("live allocations: outer %d, inner %d; want 1 and 2", outer, inner)
	}
}

func TestRoundLimit(t *testing.T) {
	for _, tc := range []struct {
		limit float64
		unit  time.Duration
		want  time.Duration
	}{
		{0, time.Millisecond, 0},
		{0.0015, time.Millisecond, 2 * time.Millisecond},
		{0.0014, time.Millisecond, time.Millisecond},
		{1.2345678, time.Microsecond, 1234568 * time.Microsecond},
		{0.05, time.Microsecond, 50 * time.Millisecond},
		{1e300, time.Millisecond, time.Duration(math.MaxInt64/int64(time.Millisecond)) * time.Millisecond},
	} {
		got, err := roundLimit(tc.limit, tc.unit)
		if err != nil || got != tc.want {
			t.Errorf("roundLimit(%v, %v) = %v, %v; want %v", tc.limit, tc.unit, got, err, tc.want)
		}
	}
	for _, bad := range []float64{-0.001, math.NaN(), math.Inf(-1)} {
		if _, err := roundLimit(bad, time.Millisecond); err == nil {
			t.Errorf("roundLimit(%v) accepted", bad)
		}
	}
}

func TestWaitMillis(t *testing.T) {
	if got := waitMillis(1500 * time.Microsecond); got != time.Millisecond {
		t.Errorf("waitMillis(1.5ms) = %v", got)
	}
	huge := time.Duration(math.MaxInt64)
	if got, want := waitMillis(huge), time.Duration(maxWaitMillis)*time.Millisecond; got != want {
		t.Errorf("waitMillis(max) = %v, want %v", got, want)
	}
}

// stubExit replaces osExit for the duration of the test.
func stubExit(t *testing.T) *[]int {
	var codes []int
	old := osExit
	osExit = func(code int) { codes = append(codes, code) }
	t.Cleanup(func() { osExit = old })
	return &codes
}

func TestReplay(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		index int
		name  string
		seq   int
		fail  bool
		calls []int
		codes []int
	}{
		{"first call", 1, "timed", 0, false, []int{0}, []int{exitChildPassed}},
		{"second call", 1, "timed", 1, false, []int{1}, []int{exitChildPassed}},
		{"failing call", 1, "timed", 1, true, []int{1}, []int{exitChildFailed}},
		{"missed call", 1, "timed", 5, false, []int{99}, []int{exitChildMissed}},
		{"lost test", 1, "renamed", 0, false, nil, []int{exitChildLost}},
		{"bad index", 7, "timed", 0, false, nil, []int{exitChildLost}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			codes := stubExit(t)
			t.Setenv(envTimedTest, strconv.Itoa(tc.index))
			t.Setenv(envTimedName, tc.name)
			t.Setenv(envTimedSeq, strconv.Itoa(tc.seq))

			var calls []int
			var tests Tests
			tests.Add("first", func(h *H) { t.Error("replay ran another test") })
			tests.Add("timed", func(h *H) {
				h.Log("muted")
				h.TimeLimitAsync(func(h *H) { calls = append(calls, 0) }, 1)
				h.TimeLimitAsync(func(h *H) {
					calls = append(calls, 1)
					h.False(tc.fail)
				}, 1)
				calls = append(calls, 99)
			})
			suite, buf := newBufferedSuite(Options{}, tests)
			err := suite.Run()

			if diff := pretty.Compare(tc.calls, calls); diff != "" {
				t.Errorf("calls differ (-want +got):\n%s", diff)
			}
			if diff := pretty.Compare(tc.codes, *codes); diff != "" {
				t.Errorf("exit codes differ (-want +got):\n%s", diff)
			}
			if wantErr := tc.codes[0] != exitChildPassed; (err != nil) != wantErr {
				t.Errorf("Run: got %v", err)
			}
			if strings.Contains(buf.String(), "muted") || strings.Contains(buf.String(), "Running 2 tests") {
				t.Errorf("replay printed the run:\n%s", buf.String())
			}
		})
	}
}

func TestReplayBadEnvironment(t *testing.T) {
	t.Setenv(envTimedTest, "one")
	suite, _ := newBufferedSuite(Options{}, nil)
	if err := suite.Run(); err == nil {
		t.Error("bad timed index accepted")
	}
}
