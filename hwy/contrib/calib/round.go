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
	"math"

	"github.com/xraycal/xconv/hwy"
)

// Round returns the integer nearest to v, with midpoints rounded away from
// zero: floor(v+0.5) for v >= 0 and ceil(v-0.5) otherwise.
//
// The half is added in the precision of T, matching a kernel that computes in
// that type. Results outside the int64 range are undefined.
func Round[T hwy.Floats](v T) int64 {
	if v >= 0 {
		return int64(math.Floor(float64(v + T(0.5))))
	}
	return int64(math.Ceil(float64(v - T(0.5))))
}

// Narrow truncates k to the width of T as a two's-complement value.
// Out-of-range values wrap; they do not saturate.
func Narrow[T hwy.SignedInts](k int64) T {
	return T(k)
}

// Narrow16 is Narrow for the int16 output lanes.
func Narrow16(k int64) int16 {
	return Narrow[int16](k)
}

// Affine computes Narrow16(Round((a - p) * g)).
func Affine(a uint16, p, g float64) int16 {
	return Narrow16(Round((float64(a) - p) * g))
}
