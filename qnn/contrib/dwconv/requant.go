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
	"fmt"
	"math"

	"github.com/ajroetker/go-qnn/qnn"
)

// RoundingConstant is the additive bias applied to the 64-bit product
// before extracting the Q31 result. Adding 2^30 and shifting right by 31
// implements round-to-nearest on the fixed-point multiply.
const RoundingConstant = int64(1) << 30

// RequantParams holds the per-tensor fixed-point constants that convert a
// 32-bit accumulator back into the int8 output range. They are derived
// once per convolution by NewRequantParams and are immutable afterwards;
// concurrent kernel calls share them read-only.
type RequantParams struct {
	// Multiplier is a Q31 fixed-point fraction in [2^30, 2^31) encoding
	// the requantization scale together with Shift.
	Multiplier int32

	// Shift is the arithmetic right-shift applied after the Q31 multiply,
	// in [0, 31].
	Shift uint32

	// RemainderMask and RemainderThreshold correct the floor bias of the
	// arithmetic shift so rounding-to-nearest holds symmetrically for
	// negative and positive values. Both are derived from Shift.
	RemainderMask      int32
	RemainderThreshold int32

	// OutputZeroPoint is added (with 16-bit saturation) after rescaling.
	OutputZeroPoint int16

	// OutputMin and OutputMax clamp the result before the final narrowing
	// to int8. Invariant: OutputMin <= OutputMax, both within int8 range.
	OutputMin int16
	OutputMax int16
}

// NewRequantParams derives the fixed-point constants for a requantization
// scale. The scale is the ratio accumulator-scale / output-scale, typically
// inputScale * kernelScale / outputScale, and must lie in [2^-32, 1):
// the Q31 encoding cannot represent scales of 1.0 or above.
func NewRequantParams(scale float32, outputZeroPoint, outputMin, outputMax int8) (RequantParams, error) {
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		return RequantParams{}, fmt.Errorf("dwconv: requantization scale %v is not positive and finite", scale)
	}
	if scale >= 1.0 {
		return RequantParams{}, fmt.Errorf("dwconv: requantization scale %v must be below 1.0", scale)
	}
	if scale < 0x1p-32 {
		return RequantParams{}, fmt.Errorf("dwconv: requantization scale %v must be at least 2^-32", scale)
	}
	if outputMin > outputMax {
		return RequantParams{}, fmt.Errorf("dwconv: output min %d exceeds output max %d", outputMin, outputMax)
	}

	// Decompose scale = multiplier * 2^-31 * 2^-shift with the multiplier
	// normalized into [2^30, 2^31): the float32 mantissa (with its implicit
	// leading bit) becomes the multiplier, the exponent becomes the shift.
	scaleBits := math.Float32bits(scale)
	multiplier := int32(((scaleBits & 0x007FFFFF) | 0x00800000) << 7)
	shift := 127 + 31 - 32 - int32(scaleBits>>23)
	if shift < 0 || shift > 31 {
		return RequantParams{}, fmt.Errorf("dwconv: requantization scale %v produces shift %d outside [0, 31]", scale, shift)
	}

	mask := int32((uint32(1) << uint(shift)) - 1)
	return RequantParams{
		Multiplier:         multiplier,
		Shift:              uint32(shift),
		RemainderMask:      mask,
		RemainderThreshold: mask >> 1,
		OutputZeroPoint:    int16(outputZeroPoint),
		OutputMin:          int16(outputMin),
		OutputMax:          int16(outputMax),
	}, nil
}

// Requantize converts one 32-bit accumulator to the int8 output range.
// This is the scalar reference for the vectorized pipeline in the kernel;
// the two are bit-identical by construction and the tests pin that.
//
// The pipeline:
//  1. full 64-bit product acc * Multiplier
//  2. add 2^30, arithmetic shift right 31 -> 32-bit Q31 product
//  3. remainder-corrected arithmetic shift by Shift (round-to-nearest,
//     symmetric for negative values)
//  4. narrow to 16 bits with saturation, saturating-add the zero point
//  5. clamp to [OutputMin, OutputMax]
//  6. narrow to int8 with saturation
func (p *RequantParams) Requantize(acc int32) int8 {
	prod := int64(acc)*int64(p.Multiplier) + RoundingConstant
	q31 := int32(prod >> 31)

	rem := q31 & p.RemainderMask
	if q31 < 0 {
		rem--
	}
	scaled := q31 >> uint(p.Shift)
	if rem > p.RemainderThreshold {
		scaled++
	}

	with16 := saturatedAddInt16(saturateInt32ToInt16(scaled), p.OutputZeroPoint)
	if with16 < p.OutputMin {
		with16 = p.OutputMin
	}
	if with16 > p.OutputMax {
		with16 = p.OutputMax
	}
	return saturateInt16ToInt8(with16)
}

// requantize is the vectorized form of Requantize, applied to a tile of
// accumulators. It mirrors the SIMD shape of the mul32 kernels: the
// odd/even 64-bit products, the Q31 extraction, the remainder correction
// via compare masks, the packs narrowing, and the min/max clamp.
func requantize(acc qnn.Vec[int32], p *RequantParams) qnn.Vec[int8] {
	multiplier := qnn.Set(int64(p.Multiplier))
	rounding := qnn.Set(RoundingConstant)

	prodLo := qnn.Add(qnn.Mul(qnn.PromoteLowerI32ToI64(acc), multiplier), rounding)
	prodHi := qnn.Add(qnn.Mul(qnn.PromoteUpperI32ToI64(acc), multiplier), rounding)

	// The shifted products fit int32 exactly: |acc * multiplier| < 2^62,
	// so no saturation is needed on this narrowing.
	q31 := qnn.TruncateTwoI64ToI32(
		qnn.ShiftRight(prodLo, 31),
		qnn.ShiftRight(prodHi, 31),
	)

	zero := qnn.Zero[int32]()
	one := qnn.Set[int32](1)
	rem := qnn.And(q31, qnn.Set(p.RemainderMask))
	rem = qnn.IfThenElse(qnn.LessThan(q31, zero), qnn.Sub(rem, one), rem)

	scaled := qnn.ShiftRight(q31, uint(p.Shift))
	scaled = qnn.IfThenElse(qnn.GreaterThan(rem, qnn.Set(p.RemainderThreshold)), qnn.Add(scaled, one), scaled)

	with16 := qnn.SaturatedAdd(qnn.DemoteI32ToI16(scaled), qnn.Set(p.OutputZeroPoint))
	with16 = qnn.Clamp(with16, qnn.Set(p.OutputMin), qnn.Set(p.OutputMax))
	return qnn.DemoteI16ToI8(with16)
}

func saturatedAddInt16(a, b int16) int16 {
	return saturateInt32ToInt16(int32(a) + int32(b))
}

func saturateInt32ToInt16(val int32) int16 {
	if val > math.MaxInt16 {
		return math.MaxInt16
	}
	if val < math.MinInt16 {
		return math.MinInt16
	}
	return int16(val)
}

func saturateInt16ToInt8(val int16) int8 {
	if val > math.MaxInt8 {
		return math.MaxInt8
	}
	if val < math.MinInt8 {
		return math.MinInt8
	}
	return int8(val)
}
