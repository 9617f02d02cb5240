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
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

// Stage loads every constant array reg names for variant v. Arrays are
// staged concurrently; the first failure is returned.
func Stage(ctx context.Context, mem []hwy.Word, reg *Register, v calib.Variant) ([]calib.Pair, error) {
	if reg.NPackets > uint64(len(mem)) {
		return nil, fmt.Errorf("%w: %d packets in memory of %d words", ErrOutOfRange, reg.NPackets, len(mem))
	}
	n := int(reg.NPackets) * hwy.NumLanes
	pairs := make([]calib.Pair, v.NumPairs())

	g, ctx := errgroup.WithContext(ctx)
	for m := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := StageConstants(mem, reg.OffsetPedestal[m], n)
			if err != nil {
				return fmt.Errorf("pedestal %d: %w", m, err)
			}
			pairs[m].Pedestal = p
			return nil
		})
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gain, err := StageConstants(mem, reg.OffsetGain[m], n)
			if err != nil {
				return fmt.Errorf("gain %d: %w", m, err)
			}
			pairs[m].Gain = gain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// Run validates reg, stages its constants, and converts the input region
// into the output region. Constants are fully staged before packet 0 is
// converted.
//
// ctx is checked before staging and before conversion; a started conversion
// always runs to completion. pool may be nil for a sequential batch.
func Run(ctx context.Context, mem []hwy.Word, reg *Register, v calib.Variant, pool *workerpool.Pool) error {
	if err := reg.Validate(len(mem), v); err != nil {
		return err
	}

	pairs, err := Stage(ctx, mem, reg, v)
	if err != nil {
		return fmt.Errorf("action: staging constants: %w", err)
	}
	pol, err := calib.NewPolicy(v, pairs)
	if err != nil {
		return err
	}
	hwy.Logger().Debug("action: constants staged",
		slog.String("variant", v.String()),
		slog.Uint64("packets", reg.NPackets))

	in := reg.OffsetIn / hwy.WordBytes
	out := reg.OffsetOut / hwy.WordBytes
	src := mem[in : in+reg.NPackets]
	checkQuality(ctx, v, pol, src)

	if err := ctx.Err(); err != nil {
		return err
	}

	dst := mem[out : out+reg.NPackets]
	return calib.ParallelConvert(pool, src, dst, pol)
}

// checkQuality logs constants outside the documented ranges and, for the
// multi-mode variant, input lanes with an invalid mode code. It runs only
// when the logger accepts Warn records and never fails the batch.
func checkQuality(ctx context.Context, v calib.Variant, pol calib.Policy, src []hwy.Word) {
	log := hwy.Logger()
	if !log.Enabled(ctx, slog.LevelWarn) {
		return
	}
	if n := calib.CountOutOfRange(pol); n > 0 {
		log.Warn("action: constants outside documented ranges",
			slog.String("variant", v.String()),
			slog.Int("count", n))
	}
	if v != calib.VariantMulti {
		return
	}
	if n := calib.CountInvalid(src); n > 0 {
		log.Warn("action: invalid mode codes",
			slog.Int("lanes", n),
			slog.Int("sentinel", int(calib.Sentinel)))
	}
}
