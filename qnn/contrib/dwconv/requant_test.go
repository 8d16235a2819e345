// Copyright 2026 go-qnn Authors
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

package dwconv

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ajroetker/go-qnn/qnn"
)

// testRNG returns a seeded random number generator for reproducible tests.
func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNewRequantParamsDerivation(t *testing.T) {
	testCases := []struct {
		name          string
		scale         float32
		wantMult      int32
		wantShift     uint32
		wantMask      int32
		wantThreshold int32
	}{
		{"half", 0.5, 0x40000000, 0, 0, 0},
		{"quarter", 0.25, 0x40000000, 1, 1, 0},
		{"eighth", 0.125, 0x40000000, 2, 3, 1},
		{"two_to_minus_8", 0x1p-8, 0x40000000, 7, 0x7F, 0x3F},
		{"near_one", 0x1.fffffep-1, 0x7FFFFF80, 0, 0, 0},
		{"three_quarters", 0.75, 0x60000000, 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewRequantParams(tc.scale, 0, -128, 127)
			if err != nil {
				t.Fatalf("NewRequantParams(%v): %v", tc.scale, err)
			}
			if p.Multiplier != tc.wantMult {
				t.Errorf("multiplier = %#x, want %#x", p.Multiplier, tc.wantMult)
			}
			if p.Shift != tc.wantShift {
				t.Errorf("shift = %d, want %d", p.Shift, tc.wantShift)
			}
			if p.RemainderMask != tc.wantMask {
				t.Errorf("remainder mask = %#x, want %#x", p.RemainderMask, tc.wantMask)
			}
			if p.RemainderThreshold != tc.wantThreshold {
				t.Errorf("remainder threshold = %#x, want %#x", p.RemainderThreshold, tc.wantThreshold)
			}
			// The decomposition must reproduce the scale exactly: float32
			// scales carry 24 significant bits and the multiplier holds 31.
			got := float64(p.Multiplier) / math.Pow(2, float64(31+p.Shift))
			if got != float64(tc.scale) {
				t.Errorf("multiplier 2^-(31+shift) = %v, want %v", got, tc.scale)
			}
		})
	}
}

func TestNewRequantParamsRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name     string
		scale    float32
		min, max int8
	}{
		{"scale_one", 1.0, -128, 127},
		{"scale_above_one", 1.5, -128, 127},
		{"scale_zero", 0, -128, 127},
		{"scale_negative", -0.5, -128, 127},
		{"scale_too_small", 0x1p-33, -128, 127},
		{"min_above_max", 0.5, 10, -10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRequantParams(tc.scale, 0, tc.min, tc.max); err == nil {
				t.Errorf("NewRequantParams(%v, min=%d, max=%d) succeeded, want error", tc.scale, tc.min, tc.max)
			}
		})
	}
}

// TestRequantizeExactPowersOfTwo checks the full pipeline against
// hand-computed round-to-nearest division by a power of two.
func TestRequantizeExactPowersOfTwo(t *testing.T) {
	p, err := NewRequantParams(0.125, 0, -128, 127) // divide by 8
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		acc  int32
		want int8
	}{
		{0, 0},
		{8, 1},
		{-8, -1},
		// The Q31 step pre-rounds acc/2 to nearest before the shift by 2,
		// so 11 becomes 6 and then 6/4 rounds away from zero to 2.
		{11, 2},
		{13, 2}, // 1.625 rounds to 2
		{12, 2}, // 1.5 rounds away from zero
		{-12, -2},
		{-11, -1},
		{-13, -2},
		{100, 13},   // 12.5 rounds away from zero
		{-100, -13},
		{1016, 127},
		{1024, 127},  // 128 saturates
		{9999, 127},
		{-1024, -128},
		{-9999, -128},
	}

	for _, tc := range testCases {
		if got := p.Requantize(tc.acc); got != tc.want {
			t.Errorf("Requantize(%d) = %d, want %d", tc.acc, got, tc.want)
		}
	}
}

// TestRequantizeRoundingSymmetry verifies there is no systematic bias
// toward negative infinity: requantizing v and -v must produce results of
// (nearly) equal magnitude, within one unit in the last place.
func TestRequantizeRoundingSymmetry(t *testing.T) {
	rng := testRNG()

	scales := []float32{0.5, 0.25, 0x1p-7, 0.33, 0.00217, 0x1.8p-11}
	for _, scale := range scales {
		p, err := NewRequantParams(scale, 0, -128, 127)
		if err != nil {
			t.Fatalf("scale %v: %v", scale, err)
		}

		for range 10000 {
			// Keep the rescaled magnitude inside the output range so
			// saturation never masks a rounding asymmetry.
			limit := int32(float64(126) / float64(scale))
			acc := rng.Int31n(limit + 1)

			pos := int32(p.Requantize(acc))
			neg := int32(p.Requantize(-acc))
			if diff := pos + neg; diff < -1 || diff > 1 {
				t.Fatalf("scale %v: Requantize(%d) = %d but Requantize(%d) = %d", scale, acc, pos, -acc, neg)
			}
		}
	}
}

// TestRequantizeZeroPointAndClamp covers steps 4-6: the saturating
// zero-point add and the min/max clamp.
func TestRequantizeZeroPointAndClamp(t *testing.T) {
	testCases := []struct {
		name     string
		scale    float32
		zp       int8
		min, max int8
		acc      int32
		want     int8
	}{
		{"zp_shift", 0.5, 10, -128, 127, 20, 20},
		{"zp_negative", 0.5, -10, -128, 127, 20, 0},
		{"clamp_max", 0.5, 0, -10, 10, 100, 10},
		{"clamp_min", 0.5, 0, -10, 10, -100, -10},
		{"clamp_window_with_zp", 0.5, 5, 0, 20, -100, 0},
		{"saturate_before_clamp", 0x1.fffffep-1, 100, -128, 127, 2147483647, 127},
		{"saturate_negative", 0x1.fffffep-1, -100, -128, 127, -2147483648, -128},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewRequantParams(tc.scale, tc.zp, tc.min, tc.max)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.Requantize(tc.acc); got != tc.want {
				t.Errorf("Requantize(%d) = %d, want %d", tc.acc, got, tc.want)
			}
		})
	}
}

// TestRequantizeVecMatchesScalar pins the vectorized pipeline to the
// scalar reference lane by lane, including partial (tail) vectors.
func TestRequantizeVecMatchesScalar(t *testing.T) {
	rng := testRNG()
	lanes := qnn.MaxLanes[int32]()

	scales := []float32{0.5, 0x1p-9, 0.73, 0.0041}
	for _, scale := range scales {
		p, err := NewRequantParams(scale, 3, -100, 110)
		if err != nil {
			t.Fatalf("scale %v: %v", scale, err)
		}

		for _, n := range []int{lanes, lanes - 1, 1} {
			if n <= 0 {
				continue
			}
			for range 1000 {
				accs := make([]int32, n)
				for i := range accs {
					accs[i] = rng.Int31() - (1 << 30)
				}

				got := requantize(qnn.Load(accs), &p)
				if got.NumLanes() != n {
					t.Fatalf("scale %v n=%d: got %d lanes", scale, n, got.NumLanes())
				}
				for i, lane := range got.Data() {
					if want := p.Requantize(accs[i]); lane != want {
						t.Fatalf("scale %v: lane %d of %d: requantize(%d) = %d, scalar = %d", scale, i, n, accs[i], lane, want)
					}
				}
			}
		}
	}
}
