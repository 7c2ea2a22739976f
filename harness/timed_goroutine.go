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
	"time"

	"github.com/coreos/microharness/harness/diag"
	"github.com/coreos/microharness/harness/scoped"
)

// newWorker returns the handle of a deadline worker. It has its own
// diagnostic buffer and allocator and shares only the suite stream with h.
func (h *H) newWorker() *H {
	w := &H{}
	w.init(h.suite, h.name, h.index, h.ctx)
	w.diag = &diag.Buffer{}
	w.alloc = scoped.New(h.suite.opts.AllocLimit)
	w.mode = ModeTimedDeadline
	return w
}

// runTimedWorker runs fn on a worker goroutine and waits at most d for it.
// A late worker is cancelled and left behind.
func (h *H) runTimedWorker(fn func(*H), d time.Duration) {
	w := h.newWorker()
	w.alloc.SetLogger(w.memlog)
	go tRunner(&w.common, func() { fn(w) })

	timer := time.NewTimer(waitMillis(d))
	defer timer.Stop()
	select {
	case <-w.signal:
		w.alloc.FreeAll()
		if w.Failed() {
			h.vprintf("TIME LIMIT ASYNC: \"%s\" failed on its worker\n", h.name)
			h.check(false)
		}
	case <-timer.C:
		w.cancel()
		h.vprintf("TIME LIMIT ASYNC: \"%s\" still running after %f seconds\n", h.name, d.Seconds())
		h.check(false)
	}
}
