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

// This file provides bitwise lane operations.

// And performs element-wise bitwise AND.
func And[T Integers](a, b Vec[T]) Vec[T] {
	n := min(len(b.data), len(a.data))
	result := make([]T, n)
	for i := range n {
		result[i] = a.data[i] & b.data[i]
	}
	return Vec[T]{data: result}
}

// ShiftLeft shifts each element left by count bits.
func ShiftLeft[T Integers](v Vec[T], count uint) Vec[T] {
	result := make([]T, len(v.data))
	for i := range v.data {
		result[i] = v.data[i] << count
	}
	return Vec[T]{data: result}
}

// ShiftRight shifts each element right by count bits.
// For signed types this is an arithmetic shift (sign-preserving);
// for unsigned types it is a logical shift.
func ShiftRight[T Integers](v Vec[T], count uint) Vec[T] {
	result := make([]T, len(v.data))
	for i := range v.data {
		result[i] = v.data[i] >> count
	}
	return Vec[T]{data: result}
}
