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

import "encoding/binary"

// The packed weight block is the kernel's only wire format: a contiguous
// byte buffer partitioned into channel tiles of width tileWidth. Each tile
// holds tileWidth little-endian int32 biases followed by footprint groups
// of tileWidth int8 weights, one group per tap, channel-minor within the
// group. A final partial tile (channels % tileWidth) is packed without
// trailing padding, so the total size is channels * (4 + footprint) bytes
// regardless of tiling.

// PackedWeightsSize returns the byte size of a packed weight block.
func PackedWeightsSize(channels, footprint int) int {
	return channels * (4 + footprint)
}

// PackWeights lays out per-channel biases and per-tap weights into the
// kernel's tile-major layout.
//
//   - bias is [channels]
//   - weights is [footprint * channels], tap-major: weights[k*channels+c]
//     is the weight of tap k for channel c
//   - tileWidth is the channel tile width the kernel will run with
//
// The layout is fixed at pack time and read-only thereafter. Packing is a
// bijection on (bias, weights): UnpackWeights inverts it exactly.
func PackWeights(bias []int32, weights []int8, channels, footprint, tileWidth int) []byte {
	if channels <= 0 {
		panic("dwconv: channels must be positive")
	}
	if footprint <= 0 {
		panic("dwconv: footprint must be positive")
	}
	if tileWidth <= 0 {
		panic("dwconv: tile width must be positive")
	}
	if len(bias) < channels {
		panic("dwconv: bias slice too short")
	}
	if len(weights) < footprint*channels {
		panic("dwconv: weights slice too short")
	}

	packed := make([]byte, 0, PackedWeightsSize(channels, footprint))
	for cBase := 0; cBase < channels; cBase += tileWidth {
		tile := min(tileWidth, channels-cBase)
		for i := range tile {
			packed = binary.LittleEndian.AppendUint32(packed, uint32(bias[cBase+i]))
		}
		for k := range footprint {
			for i := range tile {
				packed = append(packed, byte(weights[k*channels+cBase+i]))
			}
		}
	}
	return packed
}

// UnpackWeights reads a packed weight block back into (bias, weights),
// inverting PackWeights for the same channels/footprint/tileWidth.
func UnpackWeights(packed []byte, channels, footprint, tileWidth int) ([]int32, []int8) {
	if len(packed) < PackedWeightsSize(channels, footprint) {
		panic("dwconv: packed weights too short")
	}

	bias := make([]int32, channels)
	weights := make([]int8, footprint*channels)
	w := 0
	for cBase := 0; cBase < channels; cBase += tileWidth {
		tile := min(tileWidth, channels-cBase)
		for i := range tile {
			bias[cBase+i] = int32(binary.LittleEndian.Uint32(packed[w:]))
			w += 4
		}
		for k := range footprint {
			for i := range tile {
				weights[k*channels+cBase+i] = int8(packed[w])
				w++
			}
		}
	}
	return bias, weights
}
