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

package calib

import (
	"errors"
	"fmt"

	"github.com/xraycal/xconv/hwy"
)

var (
	// ErrConstantLength is returned when the constant arrays of a policy do not
	// all have the same length.
	ErrConstantLength = errors.New("calib: constant arrays differ in length")

	// ErrShortConstants is returned when a batch needs more constants than the
	// policy holds.
	ErrShortConstants = errors.New("calib: constant arrays shorter than batch")

	// ErrShortDestination is returned when the destination holds fewer words
	// than the source.
	ErrShortDestination = errors.New("calib: destination shorter than source")
)

// Pair holds the pedestal and gain arrays for one mode. Index i is the
// absolute lane position packet*32 + lane.
type Pair struct {
	Pedestal []float64
	Gain     []float64
}

func (c Pair) check() error {
	if len(c.Pedestal) != len(c.Gain) {
		return fmt.Errorf("%w: pedestal %d, gain %d", ErrConstantLength, len(c.Pedestal), len(c.Gain))
	}
	return nil
}

// Policy calibrates the lanes of one packet. Implementations are read-only
// and safe for concurrent use.
type Policy interface {
	// Name identifies the policy in logs.
	Name() string

	// Len returns the number of absolute lanes the constants cover.
	Len() int

	// CalibrateLanes writes the calibrated value of in[i] to out[i] as the
	// bit pattern of an int16, using the constants at base+i.
	CalibrateLanes(base int, in, out *hwy.Lanes)
}

// Single calibrates every raw sample as a full 16-bit magnitude with one
// pedestal/gain pair per lane.
type Single struct {
	Pair
}

// NewSingle returns a single-mode policy. The arrays are used in place.
func NewSingle(pedestal, gain []float64) (*Single, error) {
	s := &Single{Pair{Pedestal: pedestal, Gain: gain}}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Single) Name() string { return "single" }

func (s *Single) Len() int { return len(s.Pedestal) }

func (s *Single) CalibrateLanes(base int, in, out *hwy.Lanes) {
	p := s.Pedestal[base : base+hwy.NumLanes]
	g := s.Gain[base : base+hwy.NumLanes]
	for i := range hwy.NumLanes {
		out[i] = uint16(Affine(in[i], p[i], g[i]))
	}
}

// Multi selects one of three pedestal/gain pairs per sample from the top two
// raw bits.
type Multi struct {
	Modes [NumModes]Pair
}

// NewMulti returns a multi-mode policy. All six arrays must have the same
// length. The arrays are used in place.
func NewMulti(p0, g0, p1, g1, p2, g2 []float64) (*Multi, error) {
	m := &Multi{Modes: [NumModes]Pair{
		{Pedestal: p0, Gain: g0},
		{Pedestal: p1, Gain: g1},
		{Pedestal: p2, Gain: g2},
	}}
	n := len(p0)
	for i := range m.Modes {
		if err := m.Modes[i].check(); err != nil {
			return nil, fmt.Errorf("mode %v: %w", Mode(i), err)
		}
		if len(m.Modes[i].Pedestal) != n {
			return nil, fmt.Errorf("%w: mode %v has %d, mode G0 has %d",
				ErrConstantLength, Mode(i), len(m.Modes[i].Pedestal), n)
		}
	}
	return m, nil
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Len() int { return len(m.Modes[0].Pedestal) }

func (m *Multi) CalibrateLanes(base int, in, out *hwy.Lanes) {
	for i := range hwy.NumLanes {
		out[i] = uint16(m.Calibrate(base+i, in[i]))
	}
}

// Calibrate converts one raw sample using the constants at absolute lane abs.
// An invalid mode code returns Sentinel without reading any constant.
func (m *Multi) Calibrate(abs int, raw uint16) int16 {
	mode, magnitude := DecodeRaw(raw)
	switch mode {
	case ModeInvalid:
		return Sentinel
	case ModeG0, ModeG1, ModeG2:
		c := &m.Modes[mode]
		return Affine(magnitude, c.Pedestal[abs], c.Gain[abs])
	}
	panic(fmt.Sprintf("calib: unknown mode %d", mode))
}

// Calibrate converts one raw sample using the constants at absolute lane abs.
func (s *Single) Calibrate(abs int, raw uint16) int16 {
	return Affine(raw, s.Pedestal[abs], s.Gain[abs])
}
