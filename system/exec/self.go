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

package exec

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var (
	exeOnce sync.Once
	exePath string
	exeErr  error
)

// Executable returns the path of the running program, resolved once.
func Executable() (string, error) {
	exeOnce.Do(func() {
		exePath, exeErr = os.Executable()
		if exeErr != nil {
			exeErr = errors.Wrap(exeErr, "cannot get current executable")
		}
	})
	return exePath, exeErr
}

// SelfContext returns a command running another copy of this program with
// the given arguments. Where supported the copy dies with its parent.
func SelfContext(ctx context.Context, args ...string) (*ExecCmd, error) {
	exe, err := Executable()
	if err != nil {
		return nil, err
	}
	cmd := CommandContext(ctx, exe, args...)
	dieWithParent(cmd)
	return cmd, nil
}
