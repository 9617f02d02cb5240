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

package hwy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnaligned is returned when a byte buffer is not a whole number of words.
var ErrUnaligned = errors.New("hwy: buffer length is not a multiple of 64 bytes")

// Unpack splits w into its 32 lanes. Lane i receives bits [16i, 16i+15].
//
// Bound at init: the per-lane codec at DispatchScalar, the 64-bit SWAR codec
// at every other level.
var Unpack func(w *Word, out *Lanes) = BaseUnpack

// Pack is the inverse of Unpack: lane i is written to bits [16i, 16i+15] of w.
// Every bit of w is overwritten.
var Pack func(in *Lanes, w *Word) = BasePack

// bindCodec selects the codec for a dispatch level.
func bindCodec(level DispatchLevel) {
	if level == DispatchScalar {
		Unpack = BaseUnpack
		Pack = BasePack
		return
	}
	Unpack = unpackSWAR
	Pack = packSWAR
}

// BaseUnpack is the portable per-lane implementation of Unpack.
func BaseUnpack(w *Word, out *Lanes) {
	for i := range NumLanes {
		out[i] = binary.LittleEndian.Uint16(w[2*i:])
	}
}

// BasePack is the portable per-lane implementation of Pack.
func BasePack(in *Lanes, w *Word) {
	for i := range NumLanes {
		binary.LittleEndian.PutUint16(w[2*i:], in[i])
	}
}

// unpackSWAR moves four lanes per 64-bit load (SIMD within a register).
func unpackSWAR(w *Word, out *Lanes) {
	for j := range Float64sPerWord {
		v := binary.LittleEndian.Uint64(w[8*j:])
		out[4*j] = uint16(v)
		out[4*j+1] = uint16(v >> 16)
		out[4*j+2] = uint16(v >> 32)
		out[4*j+3] = uint16(v >> 48)
	}
}

// packSWAR assembles four lanes per 64-bit store.
func packSWAR(in *Lanes, w *Word) {
	for j := range Float64sPerWord {
		v := uint64(in[4*j]) |
			uint64(in[4*j+1])<<16 |
			uint64(in[4*j+2])<<32 |
			uint64(in[4*j+3])<<48
		binary.LittleEndian.PutUint64(w[8*j:], v)
	}
}

// UnpackFloat64 reinterprets w as eight IEEE-754 doubles. Field j is bits
// [64j, 64j+63]. No numeric conversion happens; NaN payloads are preserved.
func UnpackFloat64(w *Word, out *[Float64sPerWord]float64) {
	for j := range Float64sPerWord {
		out[j] = math.Float64frombits(binary.LittleEndian.Uint64(w[8*j:]))
	}
}

// PackFloat64 is the inverse of UnpackFloat64.
func PackFloat64(in *[Float64sPerWord]float64, w *Word) {
	for j := range Float64sPerWord {
		binary.LittleEndian.PutUint64(w[8*j:], math.Float64bits(in[j]))
	}
}

// LoadWords copies b into a slice of words. len(b) must be a multiple of
// WordBytes.
func LoadWords(b []byte) ([]Word, error) {
	if len(b)%WordBytes != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrUnaligned, len(b))
	}
	words := make([]Word, len(b)/WordBytes)
	for i := range words {
		copy(words[i][:], b[i*WordBytes:])
	}
	return words, nil
}

// StoreWords returns the memory image of words, WordBytes per word.
func StoreWords(words []Word) []byte {
	b := make([]byte, len(words)*WordBytes)
	for i := range words {
		copy(b[i*WordBytes:], words[i][:])
	}
	return b
}
