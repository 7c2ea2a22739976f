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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/coreos/microharness/harness/reporters"
	"github.com/coreos/microharness/harness/testresult"
)

var cmdReport = &cobra.Command{
	Use:   "report [file]",
	Short: "Summarize a JSON report",
	Long: `Summarize a JSON report written by run or bench.

Without a file the report named in the configuration is read from the
reports directory of the configured output directory.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runReport,
	SilenceUsage: true,
}

func init() {
	root.AddCommand(cmdReport)
}

func runReport(cmd *cobra.Command, args []string) error {
	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case cfg.Report.JSON != "" && cfg.Harness.OutputDir != "":
		path = filepath.Join(cfg.Harness.OutputDir, "reports", cfg.Report.JSON)
	default:
		return errors.New("no report given and none configured")
	}
	report, err := reporters.DeserialiseReport(path)
	if err != nil {
		return err
	}
	renderReport(cmd.OutOrStdout(), report)
	if !report.Result.Ok() {
		exitStatus = 1
	}
	return nil
}

type reportStyles struct {
	title  lipgloss.Style
	dim    lipgloss.Style
	name   lipgloss.Style
	result map[testresult.TestResult]lipgloss.Style
}

func newReportStyles(out io.Writer) reportStyles {
	r := lipgloss.NewRenderer(out)
	badge := r.NewStyle().Bold(true).Width(6)
	return reportStyles{
		title: r.NewStyle().Bold(true).Underline(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
		name:  r.NewStyle().PaddingLeft(1),
		result: map[testresult.TestResult]lipgloss.Style{
			testresult.Pass: badge.Foreground(lipgloss.Color("2")),
			testresult.Fail: badge.Foreground(lipgloss.Color("1")),
			testresult.Warn: badge.Foreground(lipgloss.Color("3")),
			testresult.Skip: badge.Foreground(lipgloss.Color("4")),
		},
	}
}

func (s reportStyles) badge(r testresult.TestResult) string {
	return s.result[r].Render(string(r))
}

// renderReport prints one line per test and benchmark followed by the
// overall result.
func renderReport(out io.Writer, report *reporters.JSONReport) {
	s := newReportStyles(out)

	fmt.Fprintln(out, s.title.Render("Run "+report.RunID))
	fmt.Fprintln(out, s.dim.Render(fmt.Sprintf("started %s on %s, version %s",
		humanize.Time(report.Started), report.Platform, report.Version)))
	fmt.Fprintln(out)

	counts := map[testresult.TestResult]int{}
	for _, t := range report.Tests {
		counts[t.Result]++
		fmt.Fprintf(out, "%s%s %s\n", s.badge(t.Result), s.name.Render(t.Name),
			s.dim.Render(fmt.Sprintf("%v, %s of output", t.Duration, humanize.IBytes(uint64(len(t.Output))))))
	}
	if len(report.Tests) > 0 {
		var parts []string
		for _, r := range []testresult.TestResult{testresult.Pass, testresult.Fail, testresult.Skip} {
			parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(counts[r])), strings.ToLower(string(r))))
		}
		fmt.Fprintf(out, "\n%s tests: %s\n", humanize.Comma(int64(len(report.Tests))), strings.Join(parts, ", "))
	}

	if len(report.Benchmarks) > 0 {
		fmt.Fprintln(out)
		for _, b := range report.Benchmarks {
			fmt.Fprintf(out, "%s%s %s\n", s.badge(b.Result), s.name.Render(b.Name),
				s.dim.Render(fmt.Sprintf("%s iterations averaging %v (%v with warmup), %s assertions ignored",
					humanize.Comma(int64(b.Times)), b.Average, b.AverageWithWarmup, humanize.Comma(int64(b.IgnoredAsserts)))))
		}
	}

	fmt.Fprintf(out, "\nResult: %s\n", s.badge(report.Result))
}
