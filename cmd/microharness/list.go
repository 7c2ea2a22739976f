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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coreos/microharness/internal/example"
)

var (
	cmdList = &cobra.Command{
		Use:          "list",
		Short:        "List the sample tests and benchmarks",
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	listJSON bool
)

func init() {
	root.AddCommand(cmdList)
	cmdList.Flags().BoolVar(&listJSON, "json", false, "format output in JSON")
}

type listItem struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func listItems() []listItem {
	var items []listItem
	for _, name := range example.Tests(true).List() {
		items = append(items, listItem{Name: name, Kind: "test"})
	}
	for _, b := range example.Benchmarks() {
		items = append(items, listItem{Name: b.Name, Kind: "benchmark"})
	}
	return items
}

func runList(cmd *cobra.Command, args []string) error {
	return writeList(cmd.OutOrStdout(), listItems(), listJSON)
}

func writeList(out io.Writer, items []listItem, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "\t")
		return enc.Encode(items)
	}
	w := tabwriter.NewWriter(out, 0, 8, 0, '\t', 0)
	fmt.Fprintln(w, "Name\tKind")
	fmt.Fprintln(w, "\t")
	for _, item := range items {
		fmt.Fprintf(w, "%v\t%v\n", item.Name, item.Kind)
	}
	return w.Flush()
}
