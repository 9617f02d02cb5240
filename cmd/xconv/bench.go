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
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraycal/xconv/hwy"
	"github.com/xraycal/xconv/hwy/contrib/calib"
	"github.com/xraycal/xconv/hwy/contrib/testbench"
	"github.com/xraycal/xconv/hwy/contrib/workerpool"
)

func newBenchCmd(g *globalFlags) *cobra.Command {
	var (
		packets int
		seed    uint64
		rounds  int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Calibrate a generated batch and check its rounding error",
		Long: "bench generates random raw samples and constants, calibrates them, and\n" +
			"compares the result with an unrounded reference. It fails when the RMS\n" +
			fmt.Sprintf("deviation exceeds %v.", testbench.MaxRMS),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("packets") {
				s.cfg.Packets = &packets
			}
			if cmd.Flags().Changed("seed") {
				s.cfg.Seed = &seed
			}
			if rounds < 1 {
				return fmt.Errorf("--rounds must be >= 1, got %d", rounds)
			}
			return runBench(cmd, s, rounds)
		},
	}
	cmd.Flags().IntVar(&packets, "packets", testbench.DefaultConfig().Packets, "packets (512-bit words) per batch")
	cmd.Flags().Uint64Var(&seed, "seed", testbench.DefaultConfig().Seed, "random seed")
	cmd.Flags().IntVar(&rounds, "rounds", 1, "timed conversions of the batch")
	return cmd
}

func runBench(cmd *cobra.Command, s *settings, rounds int) error {
	bc := s.cfg.Bench()
	if err := bc.Validate(); err != nil {
		return err
	}
	ds, err := testbench.Generate(bc, s.variant)
	if err != nil {
		return err
	}
	pol, err := ds.Policy()
	if err != nil {
		return err
	}

	pool := workerpool.New(s.workers)
	defer pool.Close()

	out := make([]hwy.Word, len(ds.Raw))
	begin := time.Now()
	for range rounds {
		if err := calib.ParallelConvert(pool, ds.Raw, out, pol); err != nil {
			return err
		}
	}
	elapsed := time.Since(begin)

	sum, err := testbench.Evaluate(pool, ds, out)
	if err != nil {
		return err
	}
	hwy.Logger().Info("bench complete",
		slog.String("variant", s.variant.String()),
		slog.Int("packets", bc.Packets),
		slog.Int("workers", pool.NumWorkers()),
		slog.Duration("elapsed", elapsed))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "variant:    %s\n", s.variant)
	fmt.Fprintf(w, "dispatch:   %s\n", hwy.CurrentName())
	fmt.Fprintf(w, "workers:    %d\n", pool.NumWorkers())
	fmt.Fprintf(w, "packets:    %d x %d rounds\n", bc.Packets, rounds)
	if secs := elapsed.Seconds(); secs > 0 {
		bytes := float64(bc.Packets * hwy.WordBytes * rounds)
		fmt.Fprintf(w, "throughput: %.1f MB/s\n", bytes/secs/1e6)
	}
	fmt.Fprintf(w, "result:     %s\n", sum)

	if !sum.Pass() {
		return fmt.Errorf("rms deviation %.4f exceeds %v", sum.RMS, testbench.MaxRMS)
	}
	return nil
}
