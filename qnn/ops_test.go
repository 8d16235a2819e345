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

package qnn

import (
	"math"
	"slices"
	"testing"
)

func TestLoadStoreRoundTrip(t *testing.T) {
	lanes := MaxLanes[int32]()
	src := make([]int32, lanes)
	for i := range src {
		src[i] = int32(i * 3)
	}

	v := Load(src)
	if v.NumLanes() != lanes {
		t.Fatalf("NumLanes() = %d, want %d", v.NumLanes(), lanes)
	}

	dst := make([]int32, lanes)
	Store(v, dst)
	if !slices.Equal(dst, src) {
		t.Errorf("Store round trip: got %v, want %v", dst, src)
	}

	// The method form matches the function form.
	dst2 := make([]int32, lanes)
	v.Store(dst2)
	if !slices.Equal(dst2, src) {
		t.Errorf("Vec.Store round trip: got %v, want %v", dst2, src)
	}
}

// TestLoadShortSlice covers the tail mechanism: a short slice yields a
// short vector, and operations propagate the shorter lane count.
func TestLoadShortSlice(t *testing.T) {
	lanes := MaxLanes[int32]()
	if lanes < 2 {
		t.Skip("single-lane configuration")
	}

	short := Load([]int32{5, 6})
	if short.NumLanes() != 2 {
		t.Fatalf("NumLanes() = %d, want 2", short.NumLanes())
	}

	sum := Add(short, Set[int32](10))
	if sum.NumLanes() != 2 {
		t.Fatalf("Add propagated %d lanes, want 2", sum.NumLanes())
	}
	if got := sum.Data(); got[0] != 15 || got[1] != 16 {
		t.Errorf("Add = %v, want [15 16]", got)
	}
}

func TestLoadTruncatesLongSlice(t *testing.T) {
	lanes := MaxLanes[int8]()
	long := make([]int8, lanes+7)
	v := Load(long)
	if v.NumLanes() != lanes {
		t.Errorf("NumLanes() = %d, want %d", v.NumLanes(), lanes)
	}
}

func TestStoreN(t *testing.T) {
	v := Set[int32](9)
	dst := make([]int32, v.NumLanes())
	StoreN(v, dst, 2)
	for i, got := range dst {
		want := int32(0)
		if i < 2 {
			want = 9
		}
		if got != want {
			t.Errorf("dst[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSetAndZero(t *testing.T) {
	v := Set[int16](-7)
	if v.NumLanes() != MaxLanes[int16]() {
		t.Fatalf("Set lanes = %d, want %d", v.NumLanes(), MaxLanes[int16]())
	}
	for i, lane := range v.Data() {
		if lane != -7 {
			t.Errorf("Set lane %d = %d", i, lane)
		}
	}

	z := Zero[int64]()
	if z.NumLanes() != MaxLanes[int64]() {
		t.Fatalf("Zero lanes = %d, want %d", z.NumLanes(), MaxLanes[int64]())
	}
	for i, lane := range z.Data() {
		if lane != 0 {
			t.Errorf("Zero lane %d = %d", i, lane)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := Load([]int32{1, -2, 30, 40})
	b := Load([]int32{5, 6, -7, 8})

	checks := []struct {
		name string
		got  Vec[int32]
		want []int32
	}{
		{"add", Add(a, b), []int32{6, 4, 23, 48}},
		{"sub", Sub(a, b), []int32{-4, -8, 37, 32}},
		{"mul", Mul(a, b), []int32{5, -12, -210, 320}},
		{"muladd", MulAdd(a, b, Set[int32](1)), []int32{6, -11, -209, 321}},
		{"min", Min(a, b), []int32{1, -2, -7, 8}},
		{"max", Max(a, b), []int32{5, 6, 30, 40}},
	}
	for _, c := range checks {
		n := min(len(c.want), c.got.NumLanes())
		if !slices.Equal(c.got.Data()[:n], c.want[:n]) {
			t.Errorf("%s = %v, want %v", c.name, c.got.Data()[:n], c.want[:n])
		}
	}
}

// TestAddWraps pins the wrapping (non-saturating) overflow contract.
func TestAddWraps(t *testing.T) {
	a := Load([]int32{math.MaxInt32})
	sum := Add(a, Set[int32](1))
	if got := sum.Data()[0]; got != math.MinInt32 {
		t.Errorf("MaxInt32 + 1 = %d, want wraparound %d", got, math.MinInt32)
	}
}

// TestMulKeepsLowBits pins the mullo contract: the product keeps the low
// 32 bits only.
func TestMulKeepsLowBits(t *testing.T) {
	a := Load([]int32{1 << 20})
	p := Mul(a, a)
	if got := p.Data()[0]; got != 0 {
		t.Errorf("(1<<20)^2 low bits = %d, want 0", got)
	}
}

func TestComparisonsAndSelect(t *testing.T) {
	a := Load([]int32{1, 5, 3})
	b := Load([]int32{2, 4, 3})

	lt := LessThan(a, b)
	gt := GreaterThan(a, b)
	wantLt := []bool{true, false, false}
	wantGt := []bool{false, true, false}
	for i := range min(3, lt.NumLanes()) {
		sel := IfThenElse(lt, Set[int32](1), Set[int32](0))
		if got := sel.Data()[i] == 1; got != wantLt[i] {
			t.Errorf("LessThan lane %d = %v, want %v", i, got, wantLt[i])
		}
		sel = IfThenElse(gt, Set[int32](1), Set[int32](0))
		if got := sel.Data()[i] == 1; got != wantGt[i] {
			t.Errorf("GreaterThan lane %d = %v, want %v", i, got, wantGt[i])
		}
	}

	if lt.AllTrue() {
		t.Error("AllTrue on mixed mask")
	}
	if !lt.AnyTrue() {
		t.Error("AnyTrue false on mixed mask")
	}
	all := LessThan(Zero[int32](), Set[int32](1))
	if !all.AllTrue() {
		t.Error("AllTrue false on all-active mask")
	}
	none := GreaterThan(Zero[int32](), Set[int32](1))
	if none.AnyTrue() {
		t.Error("AnyTrue on empty mask")
	}
}

func TestBitOps(t *testing.T) {
	v := Load([]int32{0b1100, -8, 21})

	and := And(v, Set[int32](0b1010))
	wantAnd := []int32{0b1000, 0b1000, 0}
	for i := range min(3, and.NumLanes()) {
		if and.Data()[i] != wantAnd[i] {
			t.Errorf("And lane %d = %d, want %d", i, and.Data()[i], wantAnd[i])
		}
	}

	shl := ShiftLeft(v, 2)
	wantShl := []int32{0b110000, -32, 84}
	for i := range min(3, shl.NumLanes()) {
		if shl.Data()[i] != wantShl[i] {
			t.Errorf("ShiftLeft lane %d = %d, want %d", i, shl.Data()[i], wantShl[i])
		}
	}

	// Arithmetic right shift preserves the sign: -8 >> 2 = -2, not a
	// logical shift result.
	shr := ShiftRight(v, 2)
	wantShr := []int32{0b11, -2, 5}
	for i := range min(3, shr.NumLanes()) {
		if shr.Data()[i] != wantShr[i] {
			t.Errorf("ShiftRight lane %d = %d, want %d", i, shr.Data()[i], wantShr[i])
		}
	}

	// Unsigned right shift is logical.
	u := ShiftRight(Load([]uint32{0x80000000}), 31)
	if got := u.Data()[0]; got != 1 {
		t.Errorf("logical shift = %d, want 1", got)
	}
}
