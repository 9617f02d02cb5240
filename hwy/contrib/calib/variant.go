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
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned by ParseVariant for unrecognized names.
var ErrUnknownVariant = errors.New("calib: unknown variant")

// Variant names the constant layout of a batch.
type Variant int

const (
	// VariantSingle uses one pedestal/gain pair per lane.
	VariantSingle Variant = iota
	// VariantMulti uses three pedestal/gain pairs per lane selected by mode.
	VariantMulti
)

// ParseVariant parses "single" or "multi", case-insensitively.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return VariantSingle, nil
	case "multi":
		return VariantMulti, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// NumPairs returns how many pedestal/gain pairs the variant carries.
func (v Variant) NumPairs() int {
	if v == VariantMulti {
		return NumModes
	}
	return 1
}

func (v Variant) String() string {
	switch v {
	case VariantSingle:
		return "single"
	case VariantMulti:
		return "multi"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// NewPolicy builds the policy for v from pairs, which must hold exactly
// v.NumPairs() entries.
func NewPolicy(v Variant, pairs []Pair) (Policy, error) {
	if len(pairs) != v.NumPairs() {
		return nil, fmt.Errorf("calib: %v variant needs %d constant pairs, got %d", v, v.NumPairs(), len(pairs))
	}
	switch v {
	case VariantSingle:
		s, err := NewSingle(pairs[0].Pedestal, pairs[0].Gain)
		if err != nil {
			return nil, err
		}
		return s, nil
	case VariantMulti:
		m, err := NewMulti(
			pairs[0].Pedestal, pairs[0].Gain,
			pairs[1].Pedestal, pairs[1].Gain,
			pairs[2].Pedestal, pairs[2].Gain,
		)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
}
