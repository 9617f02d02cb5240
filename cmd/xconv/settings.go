// Copyright 2025 go-highway Authors
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

	"github.com/xraycal/xconv/hwy/contrib/calib"
)

// settings are the effective options after merging the config file with
// flags. Flags set on the command line win.
type settings struct {
	cfg     *Config
	variant calib.Variant
	workers int
}

func resolve(cmd *cobra.Command, g *globalFlags) (*settings, error) {
	cfg := &Config{}
	if g.configPath != "" {
		loaded, err := LoadConfig(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("variant") || cfg.Variant == nil {
		cfg.Variant = &g.variant
	}
	if flags.Changed("workers") || cfg.Workers == nil {
		cfg.Workers = &g.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v, err := calib.ParseVariant(cfg.GetVariant())
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, variant: v, workers: cfg.GetWorkers()}, nil
}
