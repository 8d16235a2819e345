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

// This file provides type promotion and demotion operations.
//
// PromoteTo operations widen types with sign extension (int8 -> int32).
// DemoteTo operations narrow types with saturation, matching the packs
// family of SIMD instructions. TruncateTo operations narrow by discarding
// high bits, matching a plain integer conversion.
//
// Go generics don't support type relationships like "T is narrower than U",
// so concrete type-specific functions are provided.

// PromoteI8ToI16 widens int8 to int16 (sign-extended).
func PromoteI8ToI16(v Vec[int8]) Vec[int16] {
	result := make([]int16, len(v.data))
	for i := range v.data {
		result[i] = int16(v.data[i])
	}
	return Vec[int16]{data: result}
}

// PromoteI16ToI32 widens int16 to int32 (sign-extended).
func PromoteI16ToI32(v Vec[int16]) Vec[int32] {
	result := make([]int32, len(v.data))
	for i := range v.data {
		result[i] = int32(v.data[i])
	}
	return Vec[int32]{data: result}
}

// PromoteI8ToI32 widens int8 directly to int32 (sign-extended).
// This is the load shape of the mul32 quantized kernels: eight int8
// values widened to a full vector of 32-bit lanes in one step
// (like _mm256_cvtepi8_epi32).
func PromoteI8ToI32(v Vec[int8]) Vec[int32] {
	result := make([]int32, len(v.data))
	for i := range v.data {
		result[i] = int32(v.data[i])
	}
	return Vec[int32]{data: result}
}

// PromoteLowerI32ToI64 promotes the lower half of int32 lanes to int64.
func PromoteLowerI32ToI64(v Vec[int32]) Vec[int64] {
	n := len(v.data) / 2
	result := make([]int64, n)
	for i := range n {
		result[i] = int64(v.data[i])
	}
	return Vec[int64]{data: result}
}

// PromoteUpperI32ToI64 promotes the upper half of int32 lanes to int64.
// For an odd lane count the upper half is the larger one, so that
// Lower+Upper always covers every lane exactly once.
func PromoteUpperI32ToI64(v Vec[int32]) Vec[int64] {
	half := len(v.data) / 2
	n := len(v.data) - half
	result := make([]int64, n)
	for i := range n {
		result[i] = int64(v.data[half+i])
	}
	return Vec[int64]{data: result}
}

// DemoteI32ToI16 narrows int32 to int16 (saturating).
// Values outside int16 range are clamped to [-32768, 32767].
func DemoteI32ToI16(v Vec[int32]) Vec[int16] {
	result := make([]int16, len(v.data))
	for i := range v.data {
		result[i] = saturateInt32ToInt16(v.data[i])
	}
	return Vec[int16]{data: result}
}

// DemoteTwoI32ToI16 demotes two int32 vectors to a single int16 vector
// (saturating), like _mm_packs_epi32.
func DemoteTwoI32ToI16(lo, hi Vec[int32]) Vec[int16] {
	n := len(lo.data) + len(hi.data)
	result := make([]int16, n)
	for i, val := range lo.data {
		result[i] = saturateInt32ToInt16(val)
	}
	for i, val := range hi.data {
		result[len(lo.data)+i] = saturateInt32ToInt16(val)
	}
	return Vec[int16]{data: result}
}

// DemoteI16ToI8 narrows int16 to int8 (saturating).
// Values outside int8 range are clamped to [-128, 127].
func DemoteI16ToI8(v Vec[int16]) Vec[int8] {
	result := make([]int8, len(v.data))
	for i := range v.data {
		result[i] = saturateInt16ToInt8(v.data[i])
	}
	return Vec[int8]{data: result}
}

// TruncateI64ToI32 narrows int64 to int32 by discarding the high bits.
func TruncateI64ToI32(v Vec[int64]) Vec[int32] {
	result := make([]int32, len(v.data))
	for i := range v.data {
		result[i] = int32(v.data[i])
	}
	return Vec[int32]{data: result}
}

// TruncateTwoI64ToI32 truncates two int64 vectors to a single int32 vector.
func TruncateTwoI64ToI32(lo, hi Vec[int64]) Vec[int32] {
	n := len(lo.data) + len(hi.data)
	result := make([]int32, n)
	for i, val := range lo.data {
		result[i] = int32(val)
	}
	for i, val := range hi.data {
		result[len(lo.data)+i] = int32(val)
	}
	return Vec[int32]{data: result}
}

func saturateInt32ToInt16(val int32) int16 {
	if val > 32767 {
		return 32767
	}
	if val < -32768 {
		return -32768
	}
	return int16(val)
}

func saturateInt16ToInt8(val int16) int8 {
	if val > 127 {
		return 127
	}
	if val < -128 {
		return -128
	}
	return int8(val)
}
