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

// Package qnn provides the portable integer lane operations underlying the
// quantized neural-network kernels in this module.
//
// It follows the Highway design philosophy: write a kernel once against
// generic lane operations, let the runtime pick the lane width. The base
// implementations here are scalar Go; the lane width (and therefore the
// channel tile width of the kernels built on top) is chosen at init time
// from the CPU's vector register width.
//
// Basic usage:
//
//	a := qnn.Load(data1)
//	b := qnn.Load(data2)
//	sum := qnn.Add(a, b)
//	qnn.Store(sum, output)
package qnn

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Lanes is a constraint for all types that can be stored in lanes.
// The quantized kernels operate exclusively on integer lanes.
type Lanes interface {
	Integers
}

// Vec is a portable vector handle. In base (scalar) mode it wraps a slice;
// SIMD builds may back it with architecture-specific vector types.
//
// Vec instances should not be created directly; use Load, Set, or Zero.
// A Vec may carry fewer than MaxLanes lanes when loaded from a short
// slice — operations propagate the shorter lane count, which is how the
// kernels express tail (remainder) tiles.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying slice representation of the vector.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	return v.data
}

// Store writes the vector's data to a slice.
// This is the method form of the qnn.Store function.
func (v Vec[T]) Store(dst []T) {
	n := min(len(dst), len(v.data))
	copy(dst[:n], v.data[:n])
}

// Mask represents the result of a comparison operation. It is consumed by
// IfThenElse to perform conditional selection without branching on lanes.
//
// Mask instances should not be created directly; use comparison operations
// like LessThan or GreaterThan instead.
type Mask[T Lanes] struct {
	// bits stores which lanes are active (true).
	bits []bool
}

// NumLanes returns the number of lanes in this mask.
func (m Mask[T]) NumLanes() int {
	return len(m.bits)
}

// AllTrue returns true if all lanes in the mask are active.
func (m Mask[T]) AllTrue() bool {
	for _, bit := range m.bits {
		if !bit {
			return false
		}
	}
	return true
}

// AnyTrue returns true if at least one lane in the mask is active.
func (m Mask[T]) AnyTrue() bool {
	for _, bit := range m.bits {
		if bit {
			return true
		}
	}
	return false
}
