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

import "math"

// This file provides saturated arithmetic and related operations.
// Saturated operations clamp results to the type's valid range instead
// of wrapping, matching the behavior of the adds/subs families of SIMD
// instructions.

// SaturatedAdd performs element-wise addition with saturation.
// Results are clamped to the type's valid range instead of wrapping.
// For example, int16: 32760 + 10 = 32767 (not -32766).
func SaturatedAdd[T SignedInts](a, b Vec[T]) Vec[T] {
	n := min(len(b.data), len(a.data))
	result := make([]T, n)
	for i := range n {
		result[i] = saturatedAdd(a.data[i], b.data[i])
	}
	return Vec[T]{data: result}
}

// SaturatedSub performs element-wise subtraction with saturation.
func SaturatedSub[T SignedInts](a, b Vec[T]) Vec[T] {
	n := min(len(b.data), len(a.data))
	result := make([]T, n)
	for i := range n {
		result[i] = saturatedSub(a.data[i], b.data[i])
	}
	return Vec[T]{data: result}
}

// Clamp clamps each element to the range [lo, hi].
// Elements less than lo become lo, elements greater than hi become hi.
func Clamp[T Lanes](v, lo, hi Vec[T]) Vec[T] {
	n := min(len(hi.data), min(len(lo.data), len(v.data)))
	result := make([]T, n)
	for i := range n {
		val := v.data[i]
		if val < lo.data[i] {
			val = lo.data[i]
		}
		if val > hi.data[i] {
			val = hi.data[i]
		}
		result[i] = val
	}
	return Vec[T]{data: result}
}

// Helper functions for saturated arithmetic.
// The quantized kernels only need the signed types.

func saturatedAdd[T SignedInts](a, b T) T {
	switch any(a).(type) {
	case int8:
		sum := int16(any(a).(int8)) + int16(any(b).(int8))
		return T(any(int8(clampInt64(int64(sum), math.MinInt8, math.MaxInt8))).(int8))
	case int16:
		sum := int32(any(a).(int16)) + int32(any(b).(int16))
		return T(any(int16(clampInt64(int64(sum), math.MinInt16, math.MaxInt16))).(int16))
	case int32:
		sum := int64(any(a).(int32)) + int64(any(b).(int32))
		return T(any(int32(clampInt64(sum, math.MinInt32, math.MaxInt32))).(int32))
	case int64:
		av := any(a).(int64)
		bv := any(b).(int64)
		// Check for overflow before adding
		if bv > 0 && av > math.MaxInt64-bv {
			return T(any(int64(math.MaxInt64)).(int64))
		}
		if bv < 0 && av < math.MinInt64-bv {
			return T(any(int64(math.MinInt64)).(int64))
		}
		return T(any(av + bv).(int64))
	default:
		return a + b
	}
}

func saturatedSub[T SignedInts](a, b T) T {
	switch any(a).(type) {
	case int8:
		diff := int16(any(a).(int8)) - int16(any(b).(int8))
		return T(any(int8(clampInt64(int64(diff), math.MinInt8, math.MaxInt8))).(int8))
	case int16:
		diff := int32(any(a).(int16)) - int32(any(b).(int16))
		return T(any(int16(clampInt64(int64(diff), math.MinInt16, math.MaxInt16))).(int16))
	case int32:
		diff := int64(any(a).(int32)) - int64(any(b).(int32))
		return T(any(int32(clampInt64(diff, math.MinInt32, math.MaxInt32))).(int32))
	case int64:
		av := any(a).(int64)
		bv := any(b).(int64)
		if bv < 0 && av > math.MaxInt64+bv {
			return T(any(int64(math.MaxInt64)).(int64))
		}
		if bv > 0 && av < math.MinInt64+bv {
			return T(any(int64(math.MinInt64)).(int64))
		}
		return T(any(av - bv).(int64))
	default:
		return a - b
	}
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
