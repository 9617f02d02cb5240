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

// Package calib converts raw detector samples into calibrated signed values.
//
// Each raw 16-bit lane is calibrated as
//
//	out = Round((raw - p) * g)
//
// narrowed to int16 with two's-complement wrap. p (pedestal) and g (gain) are
// per-lane constants indexed by absolute lane position, packet*32 + lane.
//
// # Policies
//
// Two constant layouts are supported through the Policy interface:
//   - Single: one pedestal and one gain array; all 16 raw bits are magnitude.
//   - Multi: three pedestal/gain pairs. The top two raw bits select the pair
//     (00 -> G0, 01 -> G1, 11 -> G2) and the low 14 bits are magnitude. The
//     code 10 never comes from the detector and produces Sentinel.
//
// # Batches
//
// Convert processes packets in order on the calling goroutine. ParallelConvert
// partitions packets across a workerpool.Pool; every packet is independent, so
// both produce byte-identical output.
//
//	pol, err := calib.NewMulti(p0, g0, p1, g1, p2, g2)
//	if err != nil {
//	    return err
//	}
//	if err := calib.ParallelConvert(pool, in, out, pol); err != nil {
//	    return err
//	}
package calib
