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

package testresult

import (
	"fmt"
	"os"
)

const (
	Fail TestResult = "FAIL"
	Warn TestResult = "WARN"
	Skip TestResult = "SKIP"
	Pass TestResult = "PASS"
)

// TestResult is the outcome of one test or benchmark.
type TestResult string

var colors = map[TestResult]string{
	Fail: "\033[31m",
	Warn: "\033[33m",
	Skip: "\033[34m",
	Pass: "\033[32m",
}

// Parse accepts the string form written to reports.
func Parse(s string) (TestResult, error) {
	r := TestResult(s)
	if _, ok := colors[r]; !ok {
		return "", fmt.Errorf("unknown test result %q", s)
	}
	return r, nil
}

// Ok reports whether the result counts as passing. Skipped and warned
// results do not fail a run.
func (s TestResult) Ok() bool {
	return s != Fail
}

// Display returns s colored for a terminal unless TERM is empty.
func (s TestResult) Display() string {
	if term, ok := os.LookupEnv("TERM"); !ok || term == "" {
		return string(s)
	}
	c, ok := colors[s]
	if !ok {
		return string(s)
	}
	return c + string(s) + "\033[0m"
}
