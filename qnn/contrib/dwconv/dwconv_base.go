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
	"encoding/binary"

	"github.com/ajroetker/go-qnn/qnn"
)

// BaseDepthwiseConvMinmax computes outputWidth quantized depthwise
// convolution pixels, channels each, into output.
//
//   - taps holds the tap references for the first pixel at taps[0:footprint];
//     the cursor advances by tapStride between pixels
//   - columnOffset translates real taps to this call's read position
//     (batch offset into input); zero taps are left untouched
//   - input is the int8 input tensor backing store
//   - zero is the shared zero buffer from NewZeroBuffer, read by zero taps
//   - weights is the packed block from PackWeights, packed with
//     tileWidth == qnn.MaxLanes[int32]()
//   - outputIncrement is added to the output cursor after each pixel's
//     channels, to skip any layout padding between pixels
//
// The kernel is a pure, stateless transform: no allocation beyond lane
// temporaries, no I/O, no locking. Concurrent calls are safe as long as
// their output regions are disjoint; taps, weights, zero, and params are
// only read.
//
// channels > 0 and outputWidth > 0 are caller-guaranteed preconditions,
// checked here by panic rather than surfaced as errors.
func BaseDepthwiseConvMinmax(
	channels int,
	outputWidth int,
	taps []TapRef,
	tapStride int,
	columnOffset int32,
	input []int8,
	zero []int8,
	weights []byte,
	footprint int,
	output []int8,
	outputIncrement int,
	params *RequantParams,
) {
	if channels <= 0 {
		panic("dwconv: channels must be positive")
	}
	if outputWidth <= 0 {
		panic("dwconv: output width must be positive")
	}
	if footprint <= 0 || tapStride < footprint {
		panic("dwconv: tap stride below footprint")
	}
	if len(taps) < (outputWidth-1)*tapStride+footprint {
		panic("dwconv: tap table too short")
	}
	if len(weights) < PackedWeightsSize(channels, footprint) {
		panic("dwconv: packed weights too short")
	}
	if len(zero) < channels {
		panic("dwconv: zero buffer too short")
	}
	if len(output) < outputWidth*channels+(outputWidth-1)*outputIncrement {
		panic("dwconv: output slice too short")
	}

	lanes := qnn.MaxLanes[int32]()

	tapBase := 0
	outPos := 0
	for range outputWidth {
		pixelTaps := taps[tapBase : tapBase+footprint]

		// Walk the packed weight block tile by tile. Each tile holds the
		// biases followed by one weight group per tap; the cursor advances
		// past both, so the tail tile naturally starts where the last full
		// tile ended (the block carries no padding).
		w := 0
		for cBase := 0; cBase < channels; cBase += lanes {
			tile := min(lanes, channels-cBase)

			acc := loadBias(weights[w:], tile)
			w += tile * 4

			for k, tap := range pixelTaps {
				// Padding taps read the shared zero buffer at the same
				// channel offset a real row would be read at; real taps
				// are translated by columnOffset.
				var src []int8
				if tap.Zero {
					src = zero[cBase:]
				} else {
					src = input[int(tap.Offset+columnOffset)+cBase:]
				}

				vi := qnn.PromoteI8ToI32(qnn.Load(src[:tile]))
				vk := qnn.PromoteI8ToI32(loadInt8(weights[w+k*tile:], tile))
				acc = qnn.Add(acc, qnn.Mul(vi, vk))
			}
			w += footprint * tile

			out := requantize(acc, params)
			if tile == lanes {
				qnn.Store(out, output[outPos:])
			} else {
				storeTail(out, output[outPos:], tile)
			}
			outPos += tile
		}

		tapBase += tapStride
		outPos += outputIncrement
	}
}

// loadBias reads n packed little-endian int32 biases into an accumulator.
func loadBias(w []byte, n int) qnn.Vec[int32] {
	bias := make([]int32, n)
	for i := range bias {
		bias[i] = int32(binary.LittleEndian.Uint32(w[i*4:]))
	}
	return qnn.Load(bias)
}

// loadInt8 loads n packed int8 weights into a vector.
func loadInt8(w []byte, n int) qnn.Vec[int8] {
	vals := make([]int8, n)
	for i := range vals {
		vals[i] = int8(w[i])
	}
	return qnn.Load(vals)
}

// storeTail stores the first n lanes of a tail tile, largest sub-width
// first (half, quarter, ... single element), mirroring the narrowing
// store sequence of the SIMD kernels.
func storeTail(v qnn.Vec[int8], dst []int8, n int) {
	data := v.Data()
	pos := 0
	for width := qnn.MaxLanes[int32]() / 2; width >= 1; width /= 2 {
		if n&width != 0 {
			copy(dst[pos:pos+width], data[pos:pos+width])
			pos += width
		}
	}
}
