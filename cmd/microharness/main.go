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
	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/coreos/microharness/cli"
	"github.com/coreos/microharness/internal/config"
)

var (
	plog = capnslog.NewPackageLogger("github.com/coreos/microharness", "microharness")

	root = &cobra.Command{
		Use:   "microharness [command]",
		Short: "Run the sample fma tests and benchmarks",
	}

	configPath string
	cfg        = config.Default()

	// exitStatus is the number of failed tests or benchmarks.
	exitStatus int
)

func init() {
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"read settings from `file` after the user and project configs")
	cli.WrapPreRun(root, loadConfig)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func main() {
	cli.Execute(root, func() int { return exitStatus })
}
