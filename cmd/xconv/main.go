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

// Command xconv calibrates packed detector samples and benchmarks the
// calibration kernels.
//
// Usage:
//
//	xconv info
//	xconv bench --variant multi --packets 16384 --workers 8
//	xconv bench --config bench.json
//	xconv convert --variant single --in raw.bin --out cal.bin --constants p0.bin,g0.bin
//
// Word files are raw 512-bit words, 64 bytes each. Constant files hold
// IEEE-754 doubles in the same word layout, eight per word.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/xraycal/xconv/hwy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	workers    int
	variant    string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "xconv",
		Short:         "Calibrate packed 16-bit detector samples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd, g.logLevel)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "JSON config file")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.IntVar(&g.workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	pf.StringVar(&g.variant, "variant", "multi", "calibration variant (single, multi)")

	root.AddCommand(newInfoCmd(), newBenchCmd(g), newConvertCmd(g))
	return root
}

func setupLogging(cmd *cobra.Command, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	hwy.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})))
	return nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the detected dispatch level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "level:            %s\n", hwy.CurrentName())
			fmt.Fprintf(out, "register width:   %d bytes\n", hwy.CurrentWidth())
			fmt.Fprintf(out, "words/register:   %d\n", hwy.WordsPerRegister())
			fmt.Fprintf(out, "HWY_NO_SIMD:      %v\n", hwy.NoSimdEnv())
			return nil
		},
	}
}
