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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraycal/xconv/hwy/contrib/calib"
)

func TestConstantWords(t *testing.T) {
	assert.Equal(t, uint64(0), ConstantWords(0))
	assert.Equal(t, uint64(4), ConstantWords(1))
	assert.Equal(t, uint64(4*16384), ConstantWords(16384))
}

func TestContiguous(t *testing.T) {
	reg, words := Contiguous(10, calib.VariantMulti)
	assert.Equal(t, 10+10+6*40, words)
	assert.Equal(t, uint64(0), reg.OffsetIn)
	assert.Equal(t, uint64(10*64), reg.OffsetOut)
	assert.Equal(t, uint64(20*64), reg.OffsetPedestal[0])
	assert.Equal(t, uint64(60*64), reg.OffsetGain[0])
	assert.Equal(t, uint64(220*64), reg.OffsetGain[2])
	require.NoError(t, reg.Validate(words, calib.VariantMulti))
	assert.ErrorIs(t, reg.Validate(words-1, calib.VariantMulti), ErrOutOfRange)

	single, words := Contiguous(10, calib.VariantSingle)
	assert.Equal(t, 10+10+2*40, words)
	require.NoError(t, single.Validate(words, calib.VariantSingle))
	assert.Equal(t, uint64(0), single.OffsetGain[2], "unused offsets stay zero")
}

func TestValidate(t *testing.T) {
	base, words := Contiguous(8, calib.VariantSingle)

	tests := []struct {
		name   string
		modify func(r *Register)
		want   error
	}{
		{"ok", func(r *Register) {}, nil},
		{"misaligned input", func(r *Register) { r.OffsetIn = 32 }, ErrMisaligned},
		{"misaligned gain", func(r *Register) { r.OffsetGain[0] += 8 }, ErrMisaligned},
		{"output past end", func(r *Register) { r.OffsetOut = uint64(words) * 64 }, ErrOutOfRange},
		{"huge packet count", func(r *Register) { r.NPackets = 1 << 62 }, ErrOutOfRange},
		{"huge offset", func(r *Register) { r.OffsetIn = ^uint64(0) &^ 63 }, ErrOutOfRange},
		{"partial overlap", func(r *Register) { r.OffsetOut = 4 * 64 }, ErrOverlap},
		{"in place", func(r *Register) { r.OffsetOut = r.OffsetIn }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := base
			tt.modify(&reg)
			err := reg.Validate(words, calib.VariantSingle)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidateIgnoresUnusedPairs(t *testing.T) {
	reg, words := Contiguous(4, calib.VariantSingle)
	reg.OffsetPedestal[2] = 3 // misaligned, but unused by the single variant
	assert.NoError(t, reg.Validate(words, calib.VariantSingle))
	assert.ErrorIs(t, reg.Validate(words, calib.VariantMulti), ErrMisaligned)
}
