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

// Package action runs a calibration batch against one flat word-addressed
// memory, the way a bulk-transfer accelerator sees host memory.
//
// A Register carries byte offsets for the raw input, the calibrated output,
// and each constant array, plus the packet count. Offsets must be multiples
// of 64 bytes. Constants are stored as IEEE-754 doubles, eight per word.
package action

import (
	"errors"
	"fmt"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
)

var (
	// ErrMisaligned is returned for an offset that is not word aligned.
	ErrMisaligned = errors.New("action: offset is not a multiple of 64 bytes")

	// ErrOutOfRange is returned when a region extends past the end of memory.
	ErrOutOfRange = errors.New("action: region exceeds memory")

	// ErrOverlap is returned when the input and output regions partially
	// overlap. Identical regions (in-place conversion) are allowed.
	ErrOverlap = errors.New("action: input and output regions overlap")
)

// Register is the batch invocation: a packet count and byte offsets into
// memory. Only the first Variant.NumPairs() constant offsets are used.
type Register struct {
	OffsetIn       uint64
	OffsetOut      uint64
	NPackets       uint64
	OffsetPedestal [calib.NumModes]uint64
	OffsetGain     [calib.NumModes]uint64
}

// ConstantWords returns the number of words one constant array of npackets
// packets occupies.
func ConstantWords(npackets uint64) uint64 {
	lanes := npackets * hwy.NumLanes
	return (lanes + hwy.Float64sPerWord - 1) / hwy.Float64sPerWord
}

// region is a word-indexed span of memory.
type region struct {
	name        string
	start, size uint64
}

func (r region) end() uint64 { return r.start + r.size }

// regions lists every region reg touches for variant v, in words. Input and
// output come first.
func (reg *Register) regions(v calib.Variant) ([]region, error) {
	cw := ConstantWords(reg.NPackets)
	regs := []region{
		{name: "input", start: reg.OffsetIn, size: reg.NPackets},
		{name: "output", start: reg.OffsetOut, size: reg.NPackets},
	}
	for m := range v.NumPairs() {
		regs = append(regs,
			region{name: fmt.Sprintf("pedestal %d", m), start: reg.OffsetPedestal[m], size: cw},
			region{name: fmt.Sprintf("gain %d", m), start: reg.OffsetGain[m], size: cw},
		)
	}

	// Byte offsets to word indices.
	for i := range regs {
		if regs[i].start%hwy.WordBytes != 0 {
			return nil, fmt.Errorf("%w: %s offset %d", ErrMisaligned, regs[i].name, regs[i].start)
		}
		regs[i].start /= hwy.WordBytes
	}
	return regs, nil
}

// Validate checks reg against a memory of memWords words for variant v.
func (reg *Register) Validate(memWords int, v calib.Variant) error {
	regs, err := reg.regions(v)
	if err != nil {
		return err
	}
	limit := uint64(memWords)
	for _, r := range regs {
		// Compare without forming start+size first, which may overflow.
		if r.start > limit || r.size > limit-r.start {
			return fmt.Errorf("%w: %s words [%d, +%d) in memory of %d words", ErrOutOfRange, r.name, r.start, r.size, limit)
		}
	}
	in, out := regs[0], regs[1]
	if in.start != out.start && in.start < out.end() && out.start < in.end() {
		return fmt.Errorf("%w: input [%d, %d), output [%d, %d)", ErrOverlap, in.start, in.end(), out.start, out.end())
	}
	return nil
}

// Contiguous lays out input, output, then each pedestal/gain array back to
// back from offset 0, and returns the register with the memory size in words.
func Contiguous(npackets uint64, v calib.Variant) (Register, int) {
	reg := Register{NPackets: npackets}
	next := uint64(0)
	take := func(words uint64) uint64 {
		off := next * hwy.WordBytes
		next += words
		return off
	}
	reg.OffsetIn = take(npackets)
	reg.OffsetOut = take(npackets)
	cw := ConstantWords(npackets)
	for m := range v.NumPairs() {
		reg.OffsetPedestal[m] = take(cw)
		reg.OffsetGain[m] = take(cw)
	}
	return reg, int(next)
}
