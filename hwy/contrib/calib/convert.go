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
	"fmt"
	"log/slog"
	"time"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

// Parallel tuning parameters for packet-parallel conversion.
const (
	// MinParallelPackets is the minimum batch size before ParallelConvert
	// hands packets to the pool. Below it the hand-off costs more than the
	// 32 lanes per packet it would spread.
	MinParallelPackets = 256

	// PacketBatch is the number of packets handed to a worker per grab.
	PacketBatch = 64
)

// ConvertPacket calibrates the 32 lanes of src into dst. packet is the index
// of src in its batch and selects constants [32*packet, 32*packet+32).
func ConvertPacket(src, dst *hwy.Word, packet int, pol Policy) {
	var in, out hwy.Lanes
	hwy.Unpack(src, &in)
	pol.CalibrateLanes(packet*hwy.NumLanes, &in, &out)
	hwy.Pack(&out, dst)
}

// convertRange calibrates packets [start, end).
func convertRange(src, dst []hwy.Word, pol Policy, start, end int) {
	for i := start; i < end; i++ {
		ConvertPacket(&src[i], &dst[i], i, pol)
	}
}

// checkBatch verifies a batch's extents before any output is written.
func checkBatch(src, dst []hwy.Word, pol Policy) error {
	if len(dst) < len(src) {
		return fmt.Errorf("%w: %d words for %d packets", ErrShortDestination, len(dst), len(src))
	}
	if need := len(src) * hwy.NumLanes; pol.Len() < need {
		return fmt.Errorf("%w: %s policy has %d lanes, batch needs %d", ErrShortConstants, pol.Name(), pol.Len(), need)
	}
	return nil
}

// Convert calibrates every packet of src into the matching word of dst, in
// packet order, on the calling goroutine. The number of packets is len(src).
//
// Extents are checked before packet 0; on error dst is untouched.
func Convert(src, dst []hwy.Word, pol Policy) error {
	if err := checkBatch(src, dst, pol); err != nil {
		return err
	}
	begin := time.Now()
	convertRange(src, dst, pol, 0, len(src))
	logBatch(pol, len(src), 1, begin)
	return nil
}

// ParallelConvert is Convert with packets partitioned across pool. Each
// output word is written by exactly one worker, and the result is
// byte-identical to Convert.
//
// Falls back to sequential execution when pool is nil or the batch is below
// MinParallelPackets.
func ParallelConvert(pool *workerpool.Pool, src, dst []hwy.Word, pol Policy) error {
	if err := checkBatch(src, dst, pol); err != nil {
		return err
	}
	n := len(src)
	if pool == nil || n < MinParallelPackets {
		begin := time.Now()
		convertRange(src, dst, pol, 0, n)
		logBatch(pol, n, 1, begin)
		return nil
	}

	begin := time.Now()
	pool.ParallelForAtomicBatched(n, PacketBatch, func(start, end int) {
		convertRange(src, dst, pol, start, end)
	})
	logBatch(pol, n, pool.NumWorkers(), begin)
	return nil
}

func logBatch(pol Policy, packets, workers int, begin time.Time) {
	hwy.Logger().Debug("calib: batch converted",
		slog.String("policy", pol.Name()),
		slog.Int("packets", packets),
		slog.Int("workers", workers),
		slog.Duration("elapsed", time.Since(begin)))
}
