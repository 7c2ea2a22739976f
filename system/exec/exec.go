// Copyright 2015 CoreOS, Inc.
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

// Package exec wraps os/exec with kill and signal helpers and can start a
// second copy of the running program.
package exec

import (
	"context"
	"os/exec"
	"sync"
	"syscall"
)

// ExecCmd is an exec.Cmd whose Wait may be called more than once.
type ExecCmd struct {
	*exec.Cmd
	cancel context.CancelFunc
	wait   sync.Once
	err    error
}

func Command(name string, arg ...string) *ExecCmd {
	return CommandContext(context.Background(), name, arg...)
}

// CommandContext returns a command killed when ctx is done or Kill is called.
func CommandContext(ctx context.Context, name string, arg ...string) *ExecCmd {
	ctx, cancel := context.WithCancel(ctx)
	return &ExecCmd{
		Cmd:    exec.CommandContext(ctx, name, arg...),
		cancel: cancel,
	}
}

func (cmd *ExecCmd) Run() error {
	if err := cmd.Start(); err != nil {
		cmd.cancel()
		return err
	}
	return cmd.Wait()
}

func (cmd *ExecCmd) Wait() error {
	cmd.wait.Do(func() {
		cmd.err = cmd.Cmd.Wait()
		cmd.cancel()
	})
	return cmd.err
}

// Kill stops the process and waits for it. Dying from the kill itself is not
// an error.
func (cmd *ExecCmd) Kill() error {
	cmd.cancel()
	err := cmd.Wait()
	if err == nil {
		return nil
	}

	if eerr, ok := err.(*exec.ExitError); ok {
		status := eerr.Sys().(syscall.WaitStatus)
		if status.Signal() == syscall.SIGKILL {
			return nil
		}
	}
	return err
}

// Signaled reports whether the process was ended by a signal.
func (cmd *ExecCmd) Signaled() bool {
	if cmd.ProcessState == nil {
		return false
	}
	status := cmd.ProcessState.Sys().(syscall.WaitStatus)
	return status.Signaled()
}

func (cmd *ExecCmd) Pid() int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}
