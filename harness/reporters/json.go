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

package reporters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/coreos/microharness/harness/testresult"
)

// JSONReport is the document written by the JSON reporter.
type JSONReport struct {
	RunID      string                `json:"run_id"`
	Started    time.Time             `json:"started"`
	Tests      []JSONTest            `json:"tests"`
	Benchmarks []Benchmark           `json:"benchmarks,omitempty"`
	Result     testresult.TestResult `json:"result"`

	// Context variables
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

type JSONTest struct {
	Name     string                `json:"name"`
	Result   testresult.TestResult `json:"result"`
	Duration time.Duration         `json:"duration"`
	Output   string                `json:"output"`
}

type jsonReporter struct {
	report   JSONReport
	filename string
	mutex    sync.Mutex
}

// DeserialiseReport reads a report written by the JSON reporter, checking it
// against the report schema first.
func DeserialiseReport(filename string) (*JSONReport, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := Validate(b); err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	var data JSONReport
	if err = json.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}
	return &data, nil
}

// NewJSONReporter returns a Reporter writing filename into the report
// directory. Every reporter gets a fresh run id.
func NewJSONReporter(filename, platform, version string) *jsonReporter {
	return &jsonReporter{
		report: JSONReport{
			RunID:    uuid.NewString(),
			Started:  time.Now().UTC(),
			Tests:    []JSONTest{},
			Platform: platform,
			Version:  version,
		},
		filename: filename,
	}
}

// RunID identifies the run in the report.
func (r *jsonReporter) RunID() string {
	return r.report.RunID
}

func (r *jsonReporter) ReportTest(name string, result testresult.TestResult, duration time.Duration, b []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.report.Tests = append(r.report.Tests, JSONTest{
		Name:     name,
		Result:   result,
		Duration: duration,
		Output:   string(b),
	})
}

func (r *jsonReporter) ReportBenchmark(b Benchmark) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.report.Benchmarks = append(r.report.Benchmarks, b)
}

func (r *jsonReporter) Output(path string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	f, err := os.Create(filepath.Join(path, r.filename))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(&r.report)
}

func (r *jsonReporter) SetResult(result testresult.TestResult) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.report.Result = result
}
