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

package reporters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"

	"github.com/coreos/microharness/harness/testresult"
)

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewJSONReporter("report.json", "linux/amd64", "v0.1.0")
	reps := Reporters{r}

	reps.ReportTest("fma", testresult.Pass, 3*time.Millisecond, []byte("Running test \"fma\":\n"))
	reps.ReportTest("fails", testresult.Fail, time.Millisecond, nil)
	reps.ReportBenchmark(Benchmark{
		Name:            "fma loop",
		Warmup:          2,
		Times:           3,
		Total:           3 * time.Microsecond,
		TotalWithWarmup: 5 * time.Microsecond,
		Average:         time.Microsecond,
		Result:          testresult.Pass,
	})
	reps.SetResult(testresult.Fail)
	if err := reps.Output(dir); err != nil {
		t.Fatal(err)
	}

	got, err := DeserialiseReport(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != r.RunID() || got.RunID == "" {
		t.Errorf("run id %q, want %q", got.RunID, r.RunID())
	}

	type summary struct {
		Tests      []string
		Results    []testresult.TestResult
		Benchmarks int
		Result     testresult.TestResult
	}
	want := summary{
		Tests:      []string{"fma", "fails"},
		Results:    []testresult.TestResult{testresult.Pass, testresult.Fail},
		Benchmarks: 1,
		Result:     testresult.Fail,
	}
	have := summary{Benchmarks: len(got.Benchmarks), Result: got.Result}
	for _, test := range got.Tests {
		have.Tests = append(have.Tests, test.Name)
		have.Results = append(have.Results, test.Result)
	}
	if diff := pretty.Compare(want, have); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		doc   string
		valid bool
	}{
		{`{"run_id": "x", "tests": [], "result": "PASS", "platform": "", "version": ""}`, true},
		{`{"run_id": "x", "tests": [], "result": "GREAT", "platform": "", "version": ""}`, false},
		{`{"run_id": "x", "tests": [{"name": "a", "result": "PASS", "duration": -1}], "result": "PASS", "platform": "", "version": ""}`, false},
		{`{"tests": []}`, false},
	} {
		err := Validate([]byte(tt.doc))
		if (err == nil) != tt.valid {
			t.Errorf("Validate(%s) = %v", tt.doc, err)
		}
	}
}

func TestDeserialiseInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"run_id": 5}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := DeserialiseReport(path); err == nil {
		t.Error("invalid report accepted")
	}
}
