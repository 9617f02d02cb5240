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

// Range is a closed interval of valid constant values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Documented constant ranges for detector data. Constants outside these
// ranges are still calibrated; the ranges bound where outputs stay inside
// int16 without wrapping.
var (
	PedestalRange = Range{Min: 0, Max: 16384}

	GainRanges = [NumModes]Range{
		ModeG0: {Min: 1.0 / 32, Max: 1.0 / 16},
		ModeG1: {Min: 1.0 / 4, Max: 1.0 / 2},
		ModeG2: {Min: 1, Max: 2},
	}
)

// OutOfRange counts constants in c outside the documented pedestal range,
// and, when gain is non-nil, gains outside *gain. It is a data-quality check
// and never rejects constants.
func (c Pair) OutOfRange(gain *Range) int {
	n := 0
	for _, p := range c.Pedestal {
		if !PedestalRange.Contains(p) {
			n++
		}
	}
	if gain == nil {
		return n
	}
	for _, g := range c.Gain {
		if !gain.Contains(g) {
			n++
		}
	}
	return n
}

// OutOfRange counts constants of every mode outside the documented ranges.
func (m *Multi) OutOfRange() int {
	n := 0
	for i := range m.Modes {
		n += m.Modes[i].OutOfRange(&GainRanges[i])
	}
	return n
}

// OutOfRange counts pedestals outside PedestalRange. Single-mode gains have
// no documented range and are not checked.
func (s *Single) OutOfRange() int {
	return s.Pair.OutOfRange(nil)
}

// CountOutOfRange counts the constants of pol outside the documented ranges.
// Policies without documented ranges report 0.
func CountOutOfRange(pol Policy) int {
	switch p := pol.(type) {
	case *Single:
		return p.OutOfRange()
	case *Multi:
		return p.OutOfRange()
	default:
		return 0
	}
}
