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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coreos/microharness/harness"
	"github.com/coreos/microharness/harness/reporters"
	"github.com/coreos/microharness/harness/tty"
	"github.com/coreos/microharness/internal/example"
	"github.com/coreos/microharness/version"
)

var (
	cmdRun = &cobra.Command{
		Use:   "run",
		Short: "Run the sample tests",
		Long: `Run the sample tests in registration order.

The exit status is the number of tests that failed.`,
		RunE:         runRun,
		SilenceUsage: true,
	}

	runFailing bool

	// Flags shared by run and bench. They override the config file only
	// when given.
	suiteMatch     string
	suiteOutputDir string
	suiteEcho      bool
	suiteReport    string
	suiteColor     tty.ColorMode
	suiteIsolation harness.Isolation
	suiteAlloc     int64
)

func init() {
	root.AddCommand(cmdRun)
	addSuiteFlags(cmdRun.Flags())
	cmdRun.Flags().BoolVar(&runFailing, "failing", false,
		"include a test that always fails")
}

func addSuiteFlags(f *pflag.FlagSet) {
	f.StringVar(&suiteMatch, "run", "", "run only tests matching `regexp`")
	f.StringVar(&suiteOutputDir, "output-dir", "",
		"write the TAP file and reports to `dir`")
	f.BoolVar(&suiteEcho, "echo", false, "echo every assertion as it runs")
	f.StringVar(&suiteReport, "report", "",
		"write a JSON report named `file` under the output directory")
	f.Var(&suiteColor, "color", "color pass and fail markers: auto, always or never")
	f.Var(&suiteIsolation, "isolation",
		"stop hard time limited tests in a process or a goroutine")
	f.Int64Var(&suiteAlloc, "alloc-limit", 0, "refuse test allocations beyond `bytes`")
}

// suiteOptions layers the flags that were set over the configuration.
func suiteOptions(cmd *cobra.Command) (harness.Options, string, error) {
	opts, err := cfg.Options()
	if err != nil {
		return harness.Options{}, "", err
	}
	report := cfg.Report.JSON

	f := cmd.Flags()
	if f.Changed("run") {
		opts.Match = suiteMatch
	}
	if f.Changed("output-dir") {
		opts.OutputDir = suiteOutputDir
	}
	if f.Changed("echo") {
		opts.Verbose = suiteEcho
	}
	if f.Changed("report") {
		report = suiteReport
	}
	if f.Changed("color") {
		opts.Color = suiteColor
	}
	if f.Changed("isolation") {
		opts.Isolation = suiteIsolation
	}
	if f.Changed("alloc-limit") {
		opts.AllocLimit = suiteAlloc
	}
	opts.Output = cmd.ErrOrStderr()
	return opts, report, nil
}

// addReporter attaches a JSON reporter named name, if any, and returns its
// run id.
func addReporter(opts *harness.Options, name string) string {
	if name == "" {
		return ""
	}
	r := reporters.NewJSONReporter(name, cfg.Report.Platform, version.Version)
	opts.Reporters = append(opts.Reporters, r)
	return r.RunID()
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errors.New("run takes no arguments; use --run to select tests")
	}
	opts, report, err := suiteOptions(cmd)
	if err != nil {
		return err
	}
	failures, err := runSuite(opts, report, runFailing)
	exitStatus = failures
	return err
}

// runSuite runs the sample tests and returns how many failed.
func runSuite(opts harness.Options, report string, withFailing bool) (int, error) {
	runID := addReporter(&opts, report)

	tests := example.Tests(withFailing)
	suite := harness.NewSuite(opts, tests)
	switch err := suite.Run(); err {
	case nil, harness.SuiteFailed:
	case harness.SuiteEmpty:
		plog.Warningf("no test matched %q", opts.Match)
	default:
		return 0, err
	}
	if runID != "" {
		plog.Noticef("run %s reported to %s", runID, report)
	}
	return harness.CountFailures(tests), nil
}
