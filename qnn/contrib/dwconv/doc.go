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

// Package dwconv implements quantized (int8) depthwise convolution.
//
// The package is built around a single micro-kernel,
// BaseDepthwiseConvMinmax, which computes one row of output pixels from a
// pre-built indirection table of tap references and a packed weight block,
// then requantizes the 32-bit accumulators back to int8 with bit-exact
// fixed-point rounding. Everything else — the weight packer, the
// indirection builder, the requantization-parameter derivation, and the
// DepthwiseConv2D operator — exists to feed that kernel.
//
// Typical usage goes through the operator:
//
//	op, err := dwconv.NewDepthwiseConv2D(geom, kernel, bias,
//	    inputScale, kernelScale, outputScale, outputZeroPoint, -128, 127)
//	if err != nil {
//	    ...
//	}
//	err = op.Run(pool, input, output)
//
// The kernel processes channels in tiles whose width matches the lane
// count of the running vector unit (qnn.MaxLanes[int32]()); a final
// partial tile takes the numerically identical path and only narrows
// the store.
package dwconv
