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

package action

import (
	"fmt"

	"github.com/xraycal/xconv/hwy"
)

// StageConstants reads n doubles starting at byte offset in mem. The values
// are bit-for-bit reinterpretations of the stored 64-bit fields.
func StageConstants(mem []hwy.Word, offset uint64, n int) ([]float64, error) {
	start, err := wordRange(mem, offset, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	var fields [hwy.Float64sPerWord]float64
	for i := 0; i < n; i += hwy.Float64sPerWord {
		hwy.UnpackFloat64(&mem[start+i/hwy.Float64sPerWord], &fields)
		copy(out[i:], fields[:])
	}
	return out, nil
}

// WriteConstants stores vals at byte offset in mem, eight per word. Bits of
// a trailing partial word past len(vals) are left unchanged.
func WriteConstants(mem []hwy.Word, offset uint64, vals []float64) error {
	start, err := wordRange(mem, offset, len(vals))
	if err != nil {
		return err
	}
	var fields [hwy.Float64sPerWord]float64
	for i := 0; i < len(vals); i += hwy.Float64sPerWord {
		w := &mem[start+i/hwy.Float64sPerWord]
		hwy.UnpackFloat64(w, &fields)
		copy(fields[:], vals[i:])
		hwy.PackFloat64(&fields, w)
	}
	return nil
}

// wordRange validates that n doubles at byte offset fit in mem and returns
// the first word index.
func wordRange(mem []hwy.Word, offset uint64, n int) (int, error) {
	if offset%hwy.WordBytes != 0 {
		return 0, fmt.Errorf("%w: constants offset %d", ErrMisaligned, offset)
	}
	start := offset / hwy.WordBytes
	words := (uint64(n) + hwy.Float64sPerWord - 1) / hwy.Float64sPerWord
	if start > uint64(len(mem)) || words > uint64(len(mem))-start {
		return 0, fmt.Errorf("%w: %d constants at word %d in memory of %d words", ErrOutOfRange, n, start, len(mem))
	}
	return int(start), nil
}
