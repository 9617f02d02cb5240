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
	"fmt"

	"github.com/xraycal/xconv/hwy"
)

// Sentinel is the output for a raw sample whose mode code is invalid.
// Downstream consumers match this exact value.
const Sentinel int16 = -32676

// Raw sample layout for the multi-mode policy.
const (
	modeShift     = 14
	MagnitudeMask = 0x3fff
)

// Mode selects the pedestal/gain pair used for a multi-mode raw sample.
type Mode uint8

const (
	// ModeG0 is raw code 0b00, calibrated with (p0, g0).
	ModeG0 Mode = iota
	// ModeG1 is raw code 0b01, calibrated with (p1, g1).
	ModeG1
	// ModeG2 is raw code 0b11, calibrated with (p2, g2).
	ModeG2
	// ModeInvalid is raw code 0b10. It has no constants.
	ModeInvalid
)

// NumModes is the number of valid modes, and the number of constant pairs a
// multi-mode policy carries.
const NumModes = 3

// codeToMode maps the two raw mode bits to a Mode.
var codeToMode = [4]Mode{
	0b00: ModeG0,
	0b01: ModeG1,
	0b10: ModeInvalid,
	0b11: ModeG2,
}

// DecodeRaw splits a multi-mode raw sample into its mode (bits 15..14) and
// magnitude (bits 13..0).
func DecodeRaw(raw uint16) (Mode, uint16) {
	return codeToMode[raw>>modeShift], raw & MagnitudeMask
}

// EncodeRaw is the inverse of DecodeRaw for valid modes. Magnitude bits above
// 13 are dropped. EncodeRaw(ModeInvalid, m) yields code 0b10.
func EncodeRaw(mode Mode, magnitude uint16) uint16 {
	var code uint16
	switch mode {
	case ModeG0:
		code = 0b00
	case ModeG1:
		code = 0b01
	case ModeG2:
		code = 0b11
	case ModeInvalid:
		code = 0b10
	default:
		panic(fmt.Sprintf("calib: unknown mode %d", mode))
	}
	return code<<modeShift | magnitude&MagnitudeMask
}

// Valid reports whether m has calibration constants.
func (m Mode) Valid() bool {
	return m < ModeInvalid
}

func (m Mode) String() string {
	switch m {
	case ModeG0:
		return "G0"
	case ModeG1:
		return "G1"
	case ModeG2:
		return "G2"
	case ModeInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// CountInvalid counts the lanes of words whose mode code is ModeInvalid.
func CountInvalid(words []hwy.Word) int {
	n := 0
	var lanes hwy.Lanes
	for p := range words {
		hwy.Unpack(&words[p], &lanes)
		for _, raw := range lanes {
			if mode, _ := DecodeRaw(raw); !mode.Valid() {
				n++
			}
		}
	}
	return n
}
