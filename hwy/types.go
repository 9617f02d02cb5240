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

// Package hwy provides the 512-bit wide word used for bulk detector transfers,
// and the codec that splits a word into its 32 16-bit lanes and back.
//
// A Word is the unit moved by the bulk-transfer interface. Lane i occupies bits
// [16i, 16i+15] with little-endian bit numbering, so lane 0 holds the low bits
// and is stored in bytes 0 and 1 of the word.
//
// Basic usage:
//
//	import "github.com/xraycal/xconv/hwy"
//
//	var lanes hwy.Lanes
//	hwy.Unpack(&word, &lanes)
//	lanes[3] = 0x4032
//	hwy.Pack(&lanes, &word)
//
// The codec implementation is selected once at init from the detected CPU
// level (see CurrentLevel). Every implementation is bit-identical.
package hwy

// Word geometry. These are fixed by the transfer interface.
const (
	// WordBits is the width of one wide word.
	WordBits = 512

	// WordBytes is the size of one wide word in memory.
	WordBytes = WordBits / 8

	// LaneBits is the width of one lane.
	LaneBits = 16

	// NumLanes is the number of lanes in one word.
	NumLanes = WordBits / LaneBits

	// Float64sPerWord is the number of IEEE-754 doubles carried by one word
	// when a word is used to stage calibration constants.
	Float64sPerWord = WordBits / 64
)

// Word is one 512-bit bulk-transfer word. The zero value is all bits clear.
type Word [WordBytes]byte

// Lanes is the unpacked form of a Word: lane i holds bits [16i, 16i+15].
type Lanes [NumLanes]uint16

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Lane returns lane i of w without unpacking the whole word.
// It panics if i is outside [0, NumLanes).
func (w *Word) Lane(i int) uint16 {
	return uint16(w[2*i]) | uint16(w[2*i+1])<<8
}

// SetLane stores v into lane i of w.
// It panics if i is outside [0, NumLanes).
func (w *Word) SetLane(i int, v uint16) {
	w[2*i] = byte(v)
	w[2*i+1] = byte(v >> 8)
}
