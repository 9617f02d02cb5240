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

package testbench

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

// Summary describes the deviation of calibrated output from the reference.
type Summary struct {
	Lanes       int
	Invalid     int // lanes equal to calib.Sentinel in the reference
	RMS         float64
	MeanError   float64
	StdDevError float64
	MaxAbsError float64
}

// Pass reports whether the RMS deviation is within MaxRMS.
func (s Summary) Pass() bool {
	return s.RMS <= MaxRMS
}

func (s Summary) String() string {
	return fmt.Sprintf("lanes=%d invalid=%d rms=%.4f mean=%.4f stddev=%.4f maxabs=%.4f",
		s.Lanes, s.Invalid, s.RMS, s.MeanError, s.StdDevError, s.MaxAbsError)
}

// Outputs flattens calibrated words into signed lane values.
func Outputs(words []hwy.Word) []float64 {
	out := make([]float64, len(words)*hwy.NumLanes)
	outputsRange(words, out, 0, len(words))
	return out
}

func outputsRange(words []hwy.Word, out []float64, start, end int) {
	var lanes hwy.Lanes
	for p := start; p < end; p++ {
		hwy.Unpack(&words[p], &lanes)
		for l, v := range lanes {
			out[p*hwy.NumLanes+l] = float64(int16(v))
		}
	}
}

// RMS returns the root-mean-square difference of ref and out, which must
// have equal length. It is 0 for empty input.
func RMS(ref, out []float64) float64 {
	if len(ref) == 0 {
		return 0
	}
	return floats.Distance(ref, out, 2) / math.Sqrt(float64(len(ref)))
}

// Evaluate compares calibrated words with the dataset's reference. The
// reference and the decoded outputs are built across pool, one contiguous
// packet range per worker; a nil pool builds them sequentially.
func Evaluate(pool *workerpool.Pool, ds *Dataset, words []hwy.Word) (Summary, error) {
	if len(words) != len(ds.Raw) {
		return Summary{}, fmt.Errorf("testbench: %d output words for %d packets", len(words), len(ds.Raw))
	}
	ref := make([]float64, ds.Lanes())
	out := make([]float64, ds.Lanes())
	fill := func(start, end int) {
		referenceRange(ds, ref, start, end)
		outputsRange(words, out, start, end)
	}
	if pool == nil {
		fill(0, len(words))
	} else {
		pool.ParallelFor(len(words), fill)
	}

	s := Summary{Lanes: len(ref)}
	if len(ref) == 0 {
		return s, nil
	}
	diff := make([]float64, len(ref))
	floats.SubTo(diff, out, ref)
	for _, r := range ref {
		if r == float64(calib.Sentinel) {
			s.Invalid++
		}
	}
	s.RMS = RMS(ref, out)
	s.MeanError, s.StdDevError = stat.PopMeanStdDev(diff, nil)
	s.MaxAbsError = math.Max(math.Abs(floats.Max(diff)), math.Abs(floats.Min(diff)))
	return s, nil
}
