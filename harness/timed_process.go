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
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"github.com/coreos/microharness/system/exec"
)

// A re-executed binary finds the timed call it has to run in these
// variables.
const (
	envTimedTest = "HARNESS_TIMED_TEST"
	envTimedName = "HARNESS_TIMED_NAME"
	envTimedSeq  = "HARNESS_TIMED_SEQ"
)

// Exit codes of a timed child.
const (
	exitChildPassed = 0
	exitChildFailed = 1
	exitChildMissed = 2 // the test ended before reaching the timed call
	exitChildLost   = 3 // no test with that index and name
)

var osExit = os.Exit

// replay is the state of a child process running one timed call.
type replay struct {
	index int
	name  string
	seq   int

	code int
	done bool
}

// replayFromEnv returns the timed call this process was started for, or
// nil. The variables are cleared so nested runs see a clean environment.
func replayFromEnv() (*replay, error) {
	v, ok := os.LookupEnv(envTimedTest)
	if !ok {
		return nil, nil
	}
	name := os.Getenv(envTimedName)
	seqStr := os.Getenv(envTimedSeq)
	for _, k := range []string{envTimedTest, envTimedName, envTimedSeq} {
		os.Unsetenv(k)
	}

	index, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.Wrapf(err, "harness: bad %s", envTimedTest)
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil {
		return nil, errors.Wrapf(err, "harness: bad %s", envTimedSeq)
	}
	return &replay{index: index, name: name, seq: seq}, nil
}

// exit ends the child process. It only returns to the caller's frame when
// osExit is stubbed, and then ends the test goroutine instead.
func (r *replay) exit(c *common, code int) {
	r.code, r.done = code, true
	if code != exitChildPassed {
		c.Fail()
	}
	osExit(code)
	c.finished = true
	runtime.Goexit()
}

// runReplay runs the test holding the timed call with its output muted up
// to that call.
func (s *Suite) runReplay(r *replay) error {
	s.replay = r
	if r.index < 0 || r.index >= len(s.tests) || s.tests[r.index].Name != r.name {
		plog.Errorf("timed child: no test %d named %q", r.index, r.name)
		osExit(exitChildLost)
		return SuiteFailed
	}

	t := s.tests[r.index]
	s.stream.mute(true)
	defer s.stream.mute(false)

	h := s.newH(t.Name, r.index, context.Background())
	h.mode = ModeRunner
	h.replay = r
	go tRunner(&h.common, func() { t.F(h) })
	<-h.signal
	s.alloc.FreeAll()

	if !r.done {
		code := exitChildMissed
		if h.mode == ModeTimedDeadline {
			// fn ended through FailNow, SkipNow or a panic.
			code = exitChildPassed
			if h.Failed() {
				code = exitChildFailed
			}
		}
		r.code, r.done = code, true
		osExit(code)
	}
	if r.code != exitChildPassed {
		return SuiteFailed
	}
	return nil
}

// replayTimed runs in the child. Earlier timed calls were checked by the
// parent in their own processes and are skipped here.
func (h *H) replayTimed(fn func(*H), seq int) {
	r := h.replay
	if seq < r.seq {
		return
	}
	h.suite.stream.mute(false)
	h.mode = ModeTimedDeadline
	fn(h)
	r.exit(&h.common, exitChildPassed)
}

// runTimedProcess executes the test binary again to run the seq'th timed
// call of this test and kills it after d.
func (h *H) runTimedProcess(fn func(*H), seq int, d time.Duration) {
	args := h.suite.opts.ChildArgs
	if args == nil {
		args = os.Args[1:]
	}

	ctx, cancel := context.WithTimeout(h.ctx, d)
	defer cancel()
	cmd, err := exec.SelfContext(ctx, args...)
	if err != nil {
		plog.Warningf("%s: cannot execute a timed child, using a goroutine: %v", h.name, err)
		h.runTimedWorker(fn, d)
		return
	}
	cmd.Env = append(os.Environ(),
		envTimedTest+"="+strconv.Itoa(h.index),
		envTimedName+"="+h.name,
		envTimedSeq+"="+strconv.Itoa(seq))
	cmd.Stdout = h.w
	cmd.Stderr = h.w
	cmd.WaitDelay = time.Second
	plog.Debugf("timed child for %q: %s", h.name, shellquote.Join(append([]string{cmd.Path}, args...)...))

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)
	switch {
	case err == nil:
		return
	case ctx.Err() == context.DeadlineExceeded:
		h.vprintf("TIME LIMIT ASYNC: \"%s\" killed after %f seconds (limit %f)\n",
			h.name, elapsed.Seconds(), d.Seconds())
	default:
		h.vprintf("TIME LIMIT ASYNC: \"%s\" child failed after %f seconds: %v\n",
			h.name, elapsed.Seconds(), err)
	}
	h.check(false)
}
