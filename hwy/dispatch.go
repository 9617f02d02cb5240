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

package hwy

import (
	"log/slog"
	"os"
	"strconv"
)

// DispatchLevel represents the instruction set level detected for this runtime.
//
// The level picks between two pure Go codecs: DispatchScalar binds the
// per-lane Base codec, and every other level binds a 64-bit SWAR codec that
// moves four lanes per load. Levels above scalar differ only in the register
// width reported by CurrentWidth and WordsPerRegister.
type DispatchLevel int

const (
	// DispatchScalar indicates no SIMD, pure Go per-lane implementation.
	DispatchScalar DispatchLevel = iota

	// DispatchSSE2 indicates SSE2 instructions (x86-64 baseline).
	DispatchSSE2

	// DispatchAVX2 indicates AVX2 instructions (256-bit SIMD).
	DispatchAVX2

	// DispatchAVX512 indicates AVX-512 instructions (512-bit SIMD).
	DispatchAVX512

	// DispatchNEON indicates ARM NEON instructions (128-bit SIMD).
	DispatchNEON
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel is the detected level for this runtime.
// Set by init() in dispatch_*.go files.
var currentLevel DispatchLevel

// currentWidth is the register width in bytes for the current level.
// Set by init() in dispatch_*.go files.
var currentWidth int

// CurrentLevel returns the instruction set level being used.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the register width in bytes.
// For example: 16 for SSE2/NEON, 32 for AVX2, 64 for AVX-512.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName returns a human-readable name for the current level.
func CurrentName() string {
	return currentLevel.String()
}

// WordsPerRegister returns how many wide words fit in one register at the
// current level, never less than one.
func WordsPerRegister() int {
	return max(1, currentWidth/WordBytes)
}

// NoSimdEnv checks if the HWY_NO_SIMD environment variable is set.
// When set, the scalar codec is used regardless of CPU capabilities.
// This is useful for testing and debugging.
func NoSimdEnv() bool {
	val := os.Getenv("HWY_NO_SIMD")
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // Use 16-byte registers even in scalar mode for consistency
}

// setLevel records the detected level and binds the matching codec.
func setLevel(level DispatchLevel, width int) {
	currentLevel = level
	currentWidth = width
	bindCodec(level)
	Logger().Debug("hwy: dispatch selected",
		slog.String("target", level.String()),
		slog.Int("width", width))
}
