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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

// fillMemory writes random raw words and in-range constants for reg and
// returns the constants it wrote.
func fillMemory(t *testing.T, rng *rand.Rand, mem []hwy.Word, reg *Register, v calib.Variant) []calib.Pair {
	t.Helper()
	in := reg.OffsetIn / hwy.WordBytes
	for i := range reg.NPackets {
		rng.Read(mem[in+i][:])
	}
	n := int(reg.NPackets) * hwy.NumLanes
	pairs := make([]calib.Pair, v.NumPairs())
	for m := range pairs {
		pairs[m].Pedestal = make([]float64, n)
		pairs[m].Gain = make([]float64, n)
		r := calib.GainRanges[m]
		for i := range n {
			pairs[m].Pedestal[i] = rng.Float64() * 16383
			pairs[m].Gain[i] = r.Min + rng.Float64()*(r.Max-r.Min)
		}
		require.NoError(t, WriteConstants(mem, reg.OffsetPedestal[m], pairs[m].Pedestal))
		require.NoError(t, WriteConstants(mem, reg.OffsetGain[m], pairs[m].Gain))
	}
	return pairs
}

func TestRunMatchesConvert(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()
	rng := rand.New(rand.NewSource(16781))

	for _, v := range []calib.Variant{calib.VariantSingle, calib.VariantMulti} {
		t.Run(v.String(), func(t *testing.T) {
			reg, words := Contiguous(600, v)
			mem := make([]hwy.Word, words)
			pairs := fillMemory(t, rng, mem, &reg, v)

			require.NoError(t, Run(t.Context(), mem, &reg, v, pool))

			pol, err := calib.NewPolicy(v, pairs)
			require.NoError(t, err)
			src := mem[:reg.NPackets]
			want := make([]hwy.Word, reg.NPackets)
			require.NoError(t, calib.Convert(src, want, pol))
			out := reg.OffsetOut / hwy.WordBytes
			assert.Equal(t, want, mem[out:out+reg.NPackets])
		})
	}
}

func TestRunInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	reg, words := Contiguous(3, calib.VariantSingle)
	mem := make([]hwy.Word, words)
	pairs := fillMemory(t, rng, mem, &reg, calib.VariantSingle)

	src := append([]hwy.Word(nil), mem[:3]...)
	reg.OffsetOut = reg.OffsetIn
	require.NoError(t, Run(context.Background(), mem, &reg, calib.VariantSingle, nil))

	pol, err := calib.NewPolicy(calib.VariantSingle, pairs)
	require.NoError(t, err)
	want := make([]hwy.Word, 3)
	require.NoError(t, calib.Convert(src, want, pol))
	assert.Equal(t, want, mem[:3])
}

func TestRunCanceled(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	reg, words := Contiguous(4, calib.VariantMulti)
	mem := make([]hwy.Word, words)
	fillMemory(t, rng, mem, &reg, calib.VariantMulti)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, mem, &reg, calib.VariantMulti, nil)
	assert.ErrorIs(t, err, context.Canceled)

	out := reg.OffsetOut / hwy.WordBytes
	assert.Equal(t, make([]hwy.Word, 4), mem[out:out+4])
}

func TestRunInvalidRegister(t *testing.T) {
	reg, words := Contiguous(4, calib.VariantMulti)
	reg.OffsetIn = 1
	err := Run(context.Background(), make([]hwy.Word, words), &reg, calib.VariantMulti, nil)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func captureWarn(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	hwy.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { hwy.SetLogger(nil) })
	return &buf
}

func TestRunWarnsOnDataQuality(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	reg, words := Contiguous(8, calib.VariantMulti)
	mem := make([]hwy.Word, words)
	fillMemory(t, rng, mem, &reg, calib.VariantMulti)

	gains, err := StageConstants(mem, reg.OffsetGain[2], 8*hwy.NumLanes)
	require.NoError(t, err)
	gains[17] = 3
	require.NoError(t, WriteConstants(mem, reg.OffsetGain[2], gains))
	invalid := calib.CountInvalid(mem[:reg.NPackets])
	require.Positive(t, invalid)

	buf := captureWarn(t)
	require.NoError(t, Run(t.Context(), mem, &reg, calib.VariantMulti, nil))

	log := buf.String()
	assert.Contains(t, log, "level=WARN")
	assert.Contains(t, log, "constants outside documented ranges")
	assert.Contains(t, log, "count=1")
	assert.Contains(t, log, "invalid mode codes")
	assert.Contains(t, log, fmt.Sprintf("lanes=%d", invalid))
}

func TestRunQuietOnCleanData(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	reg, words := Contiguous(8, calib.VariantSingle)
	mem := make([]hwy.Word, words)
	fillMemory(t, rng, mem, &reg, calib.VariantSingle)

	buf := captureWarn(t)
	require.NoError(t, Run(t.Context(), mem, &reg, calib.VariantSingle, nil))
	assert.Empty(t, buf.String())
}
