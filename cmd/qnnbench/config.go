// Copyright 2026 go-qnn Authors
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
	"os"

	"gopkg.in/yaml.v3"
)

// suiteConfig is the YAML benchmark suite format:
//
//	runs: 10
//	warmup: 2
//	threads: 4
//	dwconv:
//	  - {height: 112, width: 112, channels: 144, kernel: 3, stride: 1}
//	  - {height: 56, width: 56, channels: 256, kernel: 3, stride: 2}
//	depthtospace:
//	  - {height: 56, width: 56, channels: 32, block: 2}
type suiteConfig struct {
	Runs    int `yaml:"runs"`
	Warmup  int `yaml:"warmup"`
	Threads int `yaml:"threads"`

	Dwconv       []dwconvCase       `yaml:"dwconv"`
	DepthToSpace []depthToSpaceCase `yaml:"depthtospace"`
}

type dwconvCase struct {
	Height   int `yaml:"height"`
	Width    int `yaml:"width"`
	Channels int `yaml:"channels"`
	Kernel   int `yaml:"kernel"`
	Stride   int `yaml:"stride"`
	Batch    int `yaml:"batch"`
}

func (c *dwconvCase) applyDefaults() {
	if c.Kernel == 0 {
		c.Kernel = 3
	}
	if c.Stride == 0 {
		c.Stride = 1
	}
	if c.Batch == 0 {
		c.Batch = 1
	}
}

type depthToSpaceCase struct {
	Height   int `yaml:"height"`
	Width    int `yaml:"width"`
	Channels int `yaml:"channels"`
	Block    int `yaml:"block"`
	Batch    int `yaml:"batch"`
}

func (c *depthToSpaceCase) applyDefaults() {
	if c.Block == 0 {
		c.Block = 2
	}
	if c.Batch == 0 {
		c.Batch = 1
	}
}

func loadSuiteConfig(path string) (suiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return suiteConfig{}, err
	}
	var cfg suiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return suiteConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Runs <= 0 {
		cfg.Runs = 10
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
	if len(cfg.Dwconv) == 0 && len(cfg.DepthToSpace) == 0 {
		return suiteConfig{}, fmt.Errorf("%s defines no benchmark cases", path)
	}
	return cfg, nil
}
