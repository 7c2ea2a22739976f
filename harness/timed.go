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
	"time"

	"github.com/pkg/errors"
)

// maxWaitMillis is the longest wait the goroutine port accepts, the largest
// 32-bit millisecond count short of an infinite wait.
const maxWaitMillis = 0xFFFFFFFE

// TimeLimit runs fn to completion, then asserts that it took at most limit
// seconds. fn is never interrupted. Elapsed time is measured with
// millisecond resolution.
func (h *H) TimeLimit(fn func(*H), limit float64) {
	start := time.Now()
	fn(h)
	elapsed := time.Since(start).Truncate(time.Millisecond)

	h.at("TimeLimit")
	h.vprintf("TIME LIMIT: %f <= %f?\n", elapsed.Seconds(), limit)
	h.check(!math.IsNaN(limit) && elapsed.Seconds() <= limit)
}

// TimeLimitAsync runs fn under a deadline of limit seconds and stops it if
// the deadline passes. A timeout, a failed assertion inside fn or a failure
// to start the isolated context fail the calling test.
//
// With IsolationProcess the test binary is executed again and only fn runs
// in the new process, so everything the test did before this call must be
// deterministic. With IsolationGoroutine fn runs on a goroutine that is
// abandoned at the deadline; its Context is cancelled so a cooperative fn
// can return.
func (h *H) TimeLimitAsync(fn func(*H), limit float64) {
	h.at("TimeLimitAsync")
	if h.mode == ModeTimedDeadline {
		plog.Warningf("%s: TimeLimitAsync inside a time limited function, running inline", h.name)
		fn(h)
		return
	}

	seq := h.timedSeq
	h.timedSeq++
	if h.replay != nil {
		h.replayTimed(fn, seq)
		return
	}

	switch h.suite.opts.Isolation {
	case IsolationGoroutine:
		d, err := roundLimit(limit, time.Millisecond)
		if err != nil {
			h.vprintf("TIME LIMIT ASYNC: %v\n", err)
			h.check(false)
			return
		}
		h.vprintf("TIME LIMIT ASYNC: %f seconds?\n", limit)
		h.runTimedWorker(fn, d)
	default:
		d, err := roundLimit(limit, time.Microsecond)
		if err != nil {
			h.vprintf("TIME LIMIT ASYNC: %v\n", err)
			h.check(false)
			return
		}
		h.vprintf("TIME LIMIT ASYNC: %f seconds?\n", limit)
		h.runTimedProcess(fn, seq, d)
	}
}

// roundLimit converts a limit in seconds to a duration rounded to the
// nearest unit. Limits beyond what a Duration holds are clamped.
func roundLimit(limit float64, unit time.Duration) (time.Duration, error) {
	if math.IsNaN(limit) || limit < 0 {
		return 0, errors.Errorf("invalid time limit %f", limit)
	}
	units := math.Round(limit * float64(time.Second/unit))
	if units >= float64(math.MaxInt64/int64(unit)) {
		plog.Warningf("time limit %f seconds is too large, clamping", limit)
		return time.Duration(math.MaxInt64/int64(unit)) * unit, nil
	}
	return time.Duration(units) * unit, nil
}

// waitMillis clamps d to the 32-bit millisecond range of the goroutine
// port.
func waitMillis(d time.Duration) time.Duration {
	ms := d.Milliseconds()
	if ms > maxWaitMillis {
		plog.Warningf("time limit of %d ms exceeds %d ms, clamping", ms, int64(maxWaitMillis))
		ms = maxWaitMillis
	}
	return time.Duration(ms) * time.Millisecond
}
