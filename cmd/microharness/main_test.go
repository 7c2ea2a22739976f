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

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/coreos/microharness/harness"
	"github.com/coreos/microharness/harness/reporters"
	"github.com/coreos/microharness/harness/testresult"
	"github.com/coreos/microharness/harness/tty"
	"github.com/coreos/microharness/internal/example"
)

func testOptions(t *testing.T) (harness.Options, *bytes.Buffer) {
	var buf bytes.Buffer
	return harness.Options{
		OutputDir: t.TempDir(),
		Output:    &buf,
		Color:     tty.ColorNever,
		Isolation: harness.IsolationGoroutine,
	}, &buf
}

func TestRunSuiteReport(t *testing.T) {
	opts, buf := testOptions(t)
	failures, err := runSuite(opts, "report.json", true)
	if err != nil {
		t.Fatal(err)
	}
	if failures != 1 {
		t.Errorf("%d failures, want 1\n%s", failures, buf)
	}

	report, err := reporters.DeserialiseReport(filepath.Join(opts.OutputDir, "reports", "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	if report.Result != testresult.Fail {
		t.Errorf("report result %v, want FAIL", report.Result)
	}
	if len(report.Tests) != len(example.Tests(true)) {
		t.Errorf("report has %d tests", len(report.Tests))
	}

	var out bytes.Buffer
	renderReport(&out, report)
	for _, want := range []string{
		"Run " + report.RunID,
		example.FailingName,
		"7 tests: 6 pass, 1 fail, 0 skip",
		"Result: FAIL",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary lacks %q:\n%s", want, out.String())
		}
	}
}

func TestRunSuiteMatch(t *testing.T) {
	opts, _ := testOptions(t)
	opts.Match = "negatives"
	failures, err := runSuite(opts, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if failures != 0 {
		t.Errorf("%d failures, want 0", failures)
	}
}

func TestRunBenchmarks(t *testing.T) {
	opts, buf := testOptions(t)
	if failed := runBenchmarks(opts, "bench.json", 0, 1); failed != 0 {
		t.Errorf("%d benchmarks failed\n%s", failed, buf)
	}
	report, err := reporters.DeserialiseReport(filepath.Join(opts.OutputDir, "reports", "bench.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Benchmarks) != 1 || report.Benchmarks[0].Times != 1 {
		t.Errorf("unexpected benchmarks %+v", report.Benchmarks)
	}
}

func TestWriteList(t *testing.T) {
	items := listItems()
	if got, want := items[len(items)-1], (listItem{Name: "Performance check for fma", Kind: "benchmark"}); got != want {
		t.Errorf("last item %+v, want %+v", got, want)
	}

	var out bytes.Buffer
	if err := writeList(&out, items, true); err != nil {
		t.Fatal(err)
	}
	var decoded []listItem
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(items, decoded); diff != "" {
		t.Errorf("list differs (-want +got):\n%s", diff)
	}

	out.Reset()
	if err := writeList(&out, items, false); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Name") || !strings.Contains(out.String(), example.FailingName) {
		t.Errorf("unexpected table:\n%s", out.String())
	}
}
