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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/action"
	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

func newConvertCmd(g *globalFlags) *cobra.Command {
	var (
		inPath    string
		outPath   string
		constants []string
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Calibrate a file of raw words",
		Long: "convert reads raw 512-bit words and the constant files, calibrates every\n" +
			"packet, and writes the calibrated words. --constants lists pedestal and\n" +
			"gain files in pairs: p0,g0 for single; p0,g0,p1,g1,p2,g2 for multi.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(cmd, g)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), s, inPath, outPath, constants)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "raw word file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "calibrated word file (required)")
	cmd.Flags().StringSliceVar(&constants, "constants", nil, "pedestal,gain files per mode (required)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("constants")
	return cmd
}

func readWords(path string) ([]hwy.Word, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := hwy.LoadWords(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

func runConvert(ctx context.Context, s *settings, inPath, outPath string, constants []string) error {
	if want := 2 * s.variant.NumPairs(); len(constants) != want {
		return fmt.Errorf("%v variant needs %d constant files (%s), got %d",
			s.variant, want, strings.Join(variantFiles(s.variant), ","), len(constants))
	}

	raw, err := readWords(inPath)
	if err != nil {
		return err
	}
	npackets := uint64(len(raw))
	reg, size := action.Contiguous(npackets, s.variant)
	mem := make([]hwy.Word, size)
	copy(mem[reg.OffsetIn/hwy.WordBytes:], raw)

	cw := action.ConstantWords(npackets)
	for i, path := range constants {
		words, err := readWords(path)
		if err != nil {
			return err
		}
		if uint64(len(words)) < cw {
			return fmt.Errorf("%s: %d words, need %d for %d packets", path, len(words), cw, npackets)
		}
		off := reg.OffsetPedestal[i/2]
		if i%2 == 1 {
			off = reg.OffsetGain[i/2]
		}
		copy(mem[off/hwy.WordBytes:off/hwy.WordBytes+cw], words)
	}

	var pool *workerpool.Pool
	if s.workers != 1 {
		pool = workerpool.New(s.workers)
		defer pool.Close()
	}
	if err := action.Run(ctx, mem, &reg, s.variant, pool); err != nil {
		return err
	}

	out := reg.OffsetOut / hwy.WordBytes
	if err := os.WriteFile(outPath, hwy.StoreWords(mem[out:out+npackets]), 0o644); err != nil {
		return err
	}
	return nil
}

// variantFiles names the constant files convert expects for v, in order.
func variantFiles(v calib.Variant) []string {
	names := make([]string, 0, 2*v.NumPairs())
	for m := range v.NumPairs() {
		names = append(names, fmt.Sprintf("p%d", m), fmt.Sprintf("g%d", m))
	}
	return names
}
