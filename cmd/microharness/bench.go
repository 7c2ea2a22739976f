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
	"github.com/spf13/cobra"

	"github.com/coreos/microharness/harness"
	"github.com/coreos/microharness/harness/testresult"
	"github.com/coreos/microharness/internal/example"
)

var (
	cmdBench = &cobra.Command{
		Use:   "bench",
		Short: "Run the sample benchmarks",
		Long: `Run every sample benchmark for the warmup iterations followed by
the timed ones.

The exit status is the number of benchmarks that failed.`,
		Args:         cobra.NoArgs,
		RunE:         runBench,
		SilenceUsage: true,
	}

	benchWarmup int
	benchTimes  int
)

func init() {
	root.AddCommand(cmdBench)
	addSuiteFlags(cmdBench.Flags())
	cmdBench.Flags().IntVar(&benchWarmup, "warmup", 0, "untimed iterations before each benchmark")
	cmdBench.Flags().IntVar(&benchTimes, "times", 0, "timed iterations of each benchmark")
}

func runBench(cmd *cobra.Command, args []string) error {
	opts, report, err := suiteOptions(cmd)
	if err != nil {
		return err
	}
	warmup, times := cfg.Bench.Warmup, cfg.Bench.Times
	if cmd.Flags().Changed("warmup") {
		warmup = benchWarmup
	}
	if cmd.Flags().Changed("times") {
		times = benchTimes
	}
	exitStatus = runBenchmarks(opts, report, warmup, times)
	return nil
}

// runBenchmarks runs the sample benchmarks and returns how many failed.
func runBenchmarks(opts harness.Options, report string, warmup, times int) int {
	addReporter(&opts, report)
	suite := harness.NewSuite(opts, nil)

	failed := 0
	for _, r := range suite.RunBenchmarks(example.Benchmarks(), warmup, times) {
		if r.Result == testresult.Fail {
			failed++
		}
	}
	return failed
}
