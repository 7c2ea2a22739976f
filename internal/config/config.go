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

// Package config reads the microharness configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coreos/microharness/harness"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/microharness", "config")

// For mocking in tests
var (
	osUserHomeDir = os.UserHomeDir
	osGetwd       = os.Getwd
)

const (
	userConfigDir    = ".config/microharness"
	projectConfigDir = ".microharness"
	configFileName   = "config.yaml"
)

// Config is the layered configuration of the command.
type Config struct {
	Harness HarnessConfig `yaml:"harness"`
	Bench   BenchConfig   `yaml:"bench"`
	Report  ReportConfig  `yaml:"report"`
}

// HarnessConfig mirrors the harness.Options the command exposes.
type HarnessConfig struct {
	OutputDir  string        `yaml:"outputDir"`
	Verbose    bool          `yaml:"verbose"`
	Match      string        `yaml:"match"`
	Color      string        `yaml:"color"`
	Isolation  string        `yaml:"isolation"`
	Timeout    time.Duration `yaml:"timeout"`
	AllocLimit int64         `yaml:"allocLimit"`
}

type BenchConfig struct {
	Warmup int `yaml:"warmup"`
	Times  int `yaml:"times"`
}

type ReportConfig struct {
	// JSON names the JSON report written under OutputDir/reports.
	// Empty disables it.
	JSON     string `yaml:"json"`
	Platform string `yaml:"platform"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Harness: HarnessConfig{
			Color:     "auto",
			Isolation: "process",
		},
		Bench: BenchConfig{
			Warmup: 5,
			Times:  5,
		},
		Report: ReportConfig{
			Platform: "local",
		},
	}
}

// Load layers the user file, the project file and finally path, when not
// empty, over the defaults. Missing user and project files are skipped; a
// missing path is an error.
func Load(path string) (Config, error) {
	config := Default()

	for _, locate := range []func() (string, error){getUserConfigPath, getProjectConfigPath} {
		p, err := locate()
		if err != nil {
			plog.Warningf("could not determine config path: %v", err)
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		overlay, err := loadConfigFromFile(p)
		if err != nil {
			return Config{}, err
		}
		config = mergeConfigs(config, overlay)
	}

	if path != "" {
		overlay, err := loadConfigFromFile(path)
		if err != nil {
			return Config{}, err
		}
		config = mergeConfigs(config, overlay)
	}
	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadConfigFromFile(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(err, "parsing %s", path)
	}
	plog.Debugf("loaded config from %s", path)
	return config, nil
}

// mergeConfigs lays the fields set in overlay over base.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.Harness.OutputDir != "" {
		merged.Harness.OutputDir = overlay.Harness.OutputDir
	}
	if overlay.Harness.Verbose {
		merged.Harness.Verbose = true
	}
	if overlay.Harness.Match != "" {
		merged.Harness.Match = overlay.Harness.Match
	}
	if overlay.Harness.Color != "" {
		merged.Harness.Color = overlay.Harness.Color
	}
	if overlay.Harness.Isolation != "" {
		merged.Harness.Isolation = overlay.Harness.Isolation
	}
	if overlay.Harness.Timeout != 0 {
		merged.Harness.Timeout = overlay.Harness.Timeout
	}
	if overlay.Harness.AllocLimit != 0 {
		merged.Harness.AllocLimit = overlay.Harness.AllocLimit
	}

	if overlay.Bench.Warmup != 0 {
		merged.Bench.Warmup = overlay.Bench.Warmup
	}
	if overlay.Bench.Times != 0 {
		merged.Bench.Times = overlay.Bench.Times
	}

	if overlay.Report.JSON != "" {
		merged.Report.JSON = overlay.Report.JSON
	}
	if overlay.Report.Platform != "" {
		merged.Report.Platform = overlay.Report.Platform
	}
	return merged
}

// Options converts the harness section to suite options.
func (c Config) Options() (harness.Options, error) {
	opts := harness.Options{
		OutputDir:  c.Harness.OutputDir,
		Verbose:    c.Harness.Verbose,
		Match:      c.Harness.Match,
		Timeout:    c.Harness.Timeout,
		AllocLimit: c.Harness.AllocLimit,
	}
	if err := opts.Color.Set(c.Harness.Color); err != nil {
		return harness.Options{}, errors.Wrapf(err, "harness.color")
	}
	if err := opts.Isolation.Set(c.Harness.Isolation); err != nil {
		return harness.Options{}, errors.Wrapf(err, "harness.isolation")
	}
	return opts, nil
}
