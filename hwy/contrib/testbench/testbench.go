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

// Package testbench generates reproducible calibration batches and measures
// calibrated output against an unrounded floating-point reference.
//
// Raw samples are uniform over all 16 bits, so about a quarter of multi-mode
// samples carry the invalid mode code. Pedestals and gains are uniform over
// the documented ranges. With correct round-half-away-from-zero the RMS
// deviation from the reference is close to 1/sqrt(12) ~= 0.289.
package testbench

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
)

// MaxRMS is the acceptance bound on RMS deviation.
const MaxRMS = 0.5

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("testbench: invalid config")

// Config controls dataset generation.
type Config struct {
	// Seed makes generation reproducible.
	Seed uint64 `json:"seed"`

	// Packets is the number of 512-bit words in the batch.
	Packets int `json:"packets"`

	// PedestalMax bounds pedestals to [0, PedestalMax).
	PedestalMax float64 `json:"pedestal_max"`

	// Gains bounds the gain of each mode. The single variant uses Gains[0].
	Gains [calib.NumModes]calib.Range `json:"gains"`
}

// DefaultConfig returns 16384 packets (512Ki samples) with the documented
// constant ranges.
func DefaultConfig() Config {
	return Config{
		Seed:        16781,
		Packets:     16384,
		PedestalMax: 16383,
		Gains:       calib.GainRanges,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Packets < 0 {
		return fmt.Errorf("%w: packets %d < 0", ErrInvalidConfig, c.Packets)
	}
	if c.PedestalMax < 0 || c.PedestalMax > calib.PedestalRange.Max {
		return fmt.Errorf("%w: pedestal_max %v outside [0, %v]", ErrInvalidConfig, c.PedestalMax, calib.PedestalRange.Max)
	}
	for m, r := range c.Gains {
		if r.Min > r.Max {
			return fmt.Errorf("%w: gain %v range [%v, %v] is empty", ErrInvalidConfig, calib.Mode(m), r.Min, r.Max)
		}
	}
	return nil
}

// Dataset is one generated batch.
type Dataset struct {
	Variant calib.Variant
	Raw     []hwy.Word
	Pairs   []calib.Pair
}

// Generate draws a dataset for variant v from c.
func Generate(c Config, v calib.Variant) (*Dataset, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))

	n := c.Packets * hwy.NumLanes
	ds := &Dataset{
		Variant: v,
		Raw:     make([]hwy.Word, c.Packets),
		Pairs:   make([]calib.Pair, v.NumPairs()),
	}
	for m := range ds.Pairs {
		ds.Pairs[m] = calib.Pair{Pedestal: make([]float64, n), Gain: make([]float64, n)}
	}

	var lanes hwy.Lanes
	for p := range ds.Raw {
		for l := range lanes {
			lanes[l] = uint16(rng.Uint32())
		}
		hwy.Pack(&lanes, &ds.Raw[p])
	}
	for i := range n {
		for m := range ds.Pairs {
			g := c.Gains[m]
			ds.Pairs[m].Pedestal[i] = rng.Float64() * c.PedestalMax
			ds.Pairs[m].Gain[i] = g.Min + rng.Float64()*(g.Max-g.Min)
		}
	}
	return ds, nil
}

// Policy returns the calibration policy over the dataset's constants.
func (ds *Dataset) Policy() (calib.Policy, error) {
	return calib.NewPolicy(ds.Variant, ds.Pairs)
}

// Lanes returns the number of samples in the dataset.
func (ds *Dataset) Lanes() int {
	return len(ds.Raw) * hwy.NumLanes
}

// Reference computes the unrounded calibration of every sample. Invalid
// multi-mode samples take the sentinel value.
func Reference(ds *Dataset) []float64 {
	ref := make([]float64, ds.Lanes())
	referenceRange(ds, ref, 0, len(ds.Raw))
	return ref
}

// referenceRange fills ref for packets [start, end).
func referenceRange(ds *Dataset, ref []float64, start, end int) {
	var lanes hwy.Lanes
	for p := start; p < end; p++ {
		hwy.Unpack(&ds.Raw[p], &lanes)
		for l, raw := range lanes {
			abs := p*hwy.NumLanes + l
			ref[abs] = reference(ds, abs, raw)
		}
	}
}

func reference(ds *Dataset, abs int, raw uint16) float64 {
	if ds.Variant == calib.VariantSingle {
		c := &ds.Pairs[0]
		return (float64(raw) - c.Pedestal[abs]) * c.Gain[abs]
	}
	mode, magnitude := calib.DecodeRaw(raw)
	if !mode.Valid() {
		return float64(calib.Sentinel)
	}
	c := &ds.Pairs[mode]
	return (float64(magnitude) - c.Pedestal[abs]) * c.Gain[abs]
}
