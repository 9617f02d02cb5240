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
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

type batch struct {
	src    []hwy.Word
	multi  *Multi
	single *Single
}

func randomBatch(t testing.TB, rng *rand.Rand, packets int) batch {
	t.Helper()
	n := packets * hwy.NumLanes
	src := make([]hwy.Word, packets)
	for i := range src {
		rng.Read(src[i][:])
	}
	var c [2 * NumModes][]float64
	for k := range c {
		c[k] = make([]float64, n)
	}
	for i := range n {
		for m := range NumModes {
			c[2*m][i] = rng.Float64() * 16383
			r := GainRanges[m]
			c[2*m+1][i] = r.Min + rng.Float64()*(r.Max-r.Min)
		}
	}
	multi, err := NewMulti(c[0], c[1], c[2], c[3], c[4], c[5])
	require.NoError(t, err)
	single, err := NewSingle(c[0], c[5])
	require.NoError(t, err)
	return batch{src: src, multi: multi, single: single}
}

func TestConvertMatchesPerLane(t *testing.T) {
	rng := rand.New(rand.NewSource(16781))
	b := randomBatch(t, rng, 40)

	for _, pol := range []Policy{b.single, b.multi} {
		dst := make([]hwy.Word, len(b.src))
		require.NoError(t, Convert(b.src, dst, pol))

		for p := range b.src {
			for l := range hwy.NumLanes {
				raw := b.src[p].Lane(l)
				abs := p*hwy.NumLanes + l
				var want int16
				switch pol := pol.(type) {
				case *Single:
					want = pol.Calibrate(abs, raw)
				case *Multi:
					want = pol.Calibrate(abs, raw)
				}
				if got := int16(dst[p].Lane(l)); got != want {
					t.Fatalf("%s packet %d lane %d: got %d, want %d", pol.Name(), p, l, got, want)
				}
			}
		}
	}
}

func TestConvertPacketIndexing(t *testing.T) {
	// Pedestal equals the absolute lane index, gain 1, raw 0x1000:
	// lane output is 4096 - abs.
	const packets = 3
	n := packets * hwy.NumLanes
	p := make([]float64, n)
	g := make([]float64, n)
	for i := range n {
		p[i] = float64(i)
		g[i] = 1
	}
	pol, err := NewSingle(p, g)
	require.NoError(t, err)

	src := make([]hwy.Word, packets)
	for i := range src {
		for l := range hwy.NumLanes {
			src[i].SetLane(l, 0x1000)
		}
	}
	dst := make([]hwy.Word, packets)
	require.NoError(t, Convert(src, dst, pol))

	for i := range dst {
		var out hwy.Lanes
		hwy.Unpack(&dst[i], &out)
		for l := range out {
			assert.Equal(t, int16(4096-(i*hwy.NumLanes+l)), int16(out[l]))
		}
	}
}

func TestParallelConvertIdentical(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	rng := rand.New(rand.NewSource(1))
	for _, packets := range []int{0, 1, MinParallelPackets - 1, MinParallelPackets, 1000, 4096} {
		b := randomBatch(t, rng, packets)
		for _, pol := range []Policy{b.single, b.multi} {
			seq := make([]hwy.Word, packets)
			par := make([]hwy.Word, packets)
			require.NoError(t, Convert(b.src, seq, pol))
			require.NoError(t, ParallelConvert(pool, b.src, par, pol))
			if diff := cmp.Diff(hwy.StoreWords(seq), hwy.StoreWords(par)); diff != "" {
				t.Fatalf("%s, %d packets: parallel output differs (-seq +par):\n%s", pol.Name(), packets, diff)
			}

			nilPool := make([]hwy.Word, packets)
			require.NoError(t, ParallelConvert(nil, b.src, nilPool, pol))
			assert.Equal(t, seq, nilPool)
		}
	}
}

func TestConvertExtents(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := randomBatch(t, rng, 4)

	err := Convert(b.src, make([]hwy.Word, 3), b.multi)
	assert.ErrorIs(t, err, ErrShortDestination)

	short, err := NewSingle(make([]float64, 3*hwy.NumLanes), make([]float64, 3*hwy.NumLanes))
	require.NoError(t, err)
	dst := make([]hwy.Word, 4)
	err = ParallelConvert(nil, b.src, dst, short)
	assert.ErrorIs(t, err, ErrShortConstants)
	assert.Equal(t, make([]hwy.Word, 4), dst, "destination written after a precondition failure")

	// A longer destination is allowed; the extra words are untouched.
	long := make([]hwy.Word, 6)
	long[5][0] = 0xaa
	require.NoError(t, Convert(b.src, long, b.single))
	assert.Equal(t, hwy.Word{}, long[4])
	assert.Equal(t, byte(0xaa), long[5][0])
}

func BenchmarkConvert(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	const packets = 1 << 14
	bt := randomBatch(b, rng, packets)
	dst := make([]hwy.Word, packets)
	pool := workerpool.New(0)
	defer pool.Close()

	b.Run("sequential", func(b *testing.B) {
		b.SetBytes(packets * hwy.WordBytes)
		for b.Loop() {
			_ = Convert(bt.src, dst, bt.multi)
		}
	})
	b.Run("parallel", func(b *testing.B) {
		b.SetBytes(packets * hwy.WordBytes)
		for b.Loop() {
			_ = ParallelConvert(pool, bt.src, dst, bt.multi)
		}
	})
}
