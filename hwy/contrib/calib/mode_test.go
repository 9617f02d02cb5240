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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRaw(t *testing.T) {
	tests := []struct {
		raw       uint16
		mode      Mode
		magnitude uint16
	}{
		{0x0000, ModeG0, 0},
		{0x3fff, ModeG0, 0x3fff},
		{0x4032, ModeG1, 50},
		{0x7fff, ModeG1, 0x3fff},
		{0x8000, ModeInvalid, 0},
		{0xbfff, ModeInvalid, 0x3fff},
		{0xc001, ModeG2, 1},
		{0xffff, ModeG2, 0x3fff},
	}
	for _, tt := range tests {
		mode, magnitude := DecodeRaw(tt.raw)
		assert.Equal(t, tt.mode, mode, "raw %#04x", tt.raw)
		assert.Equal(t, tt.magnitude, magnitude, "raw %#04x", tt.raw)
	}
}

func TestEncodeDecodeRaw(t *testing.T) {
	for _, mode := range []Mode{ModeG0, ModeG1, ModeG2, ModeInvalid} {
		for _, m := range []uint16{0, 1, 50, 0x2000, 0x3fff} {
			gotMode, gotMag := DecodeRaw(EncodeRaw(mode, m))
			assert.Equal(t, mode, gotMode)
			assert.Equal(t, m, gotMag)
		}
	}
	assert.Equal(t, uint16(0x4032), EncodeRaw(ModeG1, 50))
	assert.Equal(t, uint16(0xc000), EncodeRaw(ModeG2, 0x4000), "magnitude above 14 bits is dropped")
	assert.Panics(t, func() { EncodeRaw(Mode(9), 0) })
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "G0", ModeG0.String())
	assert.Equal(t, "G1", ModeG1.String())
	assert.Equal(t, "G2", ModeG2.String())
	assert.Equal(t, "invalid", ModeInvalid.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())

	assert.True(t, ModeG2.Valid())
	assert.False(t, ModeInvalid.Valid())
}
