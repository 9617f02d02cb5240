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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/testbench"
)

// maxConfigSize bounds the config file read into memory.
const maxConfigSize = 1 << 20

// Config is the JSON config file. Omitted fields keep their defaults; the
// Get* methods return the effective value.
type Config struct {
	Variant     *string                      `json:"variant,omitempty"`
	Workers     *int                         `json:"workers,omitempty"`
	Seed        *uint64                      `json:"seed,omitempty"`
	Packets     *int                         `json:"packets,omitempty"`
	PedestalMax *float64                     `json:"pedestal_max,omitempty"`
	Gains       *[calib.NumModes]calib.Range `json:"gains,omitempty"`
}

// LoadConfig reads and validates a JSON config file.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set.
func (c *Config) Validate() error {
	if c.Variant != nil {
		if _, err := calib.ParseVariant(*c.Variant); err != nil {
			return err
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", *c.Workers)
	}
	return c.Bench().Validate()
}

// GetVariant returns the configured variant, defaulting to multi.
func (c *Config) GetVariant() string {
	if c.Variant == nil {
		return calib.VariantMulti.String()
	}
	return *c.Variant
}

// GetWorkers returns the configured worker count; 0 means GOMAXPROCS.
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// Bench returns the testbench config with defaults for omitted fields.
func (c *Config) Bench() testbench.Config {
	b := testbench.DefaultConfig()
	if c.Seed != nil {
		b.Seed = *c.Seed
	}
	if c.Packets != nil {
		b.Packets = *c.Packets
	}
	if c.PedestalMax != nil {
		b.PedestalMax = *c.PedestalMax
	}
	if c.Gains != nil {
		b.Gains = *c.Gains
	}
	return b
}
