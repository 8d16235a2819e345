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

	"github.com/ajroetker/go-qnn/qnn"
	"github.com/ajroetker/go-qnn/qnn/contrib/workerpool"
)

// DepthwiseConv2D is a configured depthwise convolution operator. Creation
// packs the weights, derives the requantization constants, and builds the
// indirection table; Run then only reads that state, so a single operator
// may serve concurrent Run calls on distinct tensors.
type DepthwiseConv2D struct {
	geom      ConvGeometry
	footprint int
	outH      int
	outW      int

	weights []byte
	taps    []TapRef
	zero    []int8
	params  RequantParams
}

// NewDepthwiseConv2D configures a depthwise convolution operator.
//
//   - kernel is [KernelHeight * KernelWidth * Channels], tap-major:
//     kernel[(ky*KernelWidth+kx)*Channels + c]
//   - bias is [Channels], in accumulator scale
//   - inputScale, kernelScale, outputScale are the float quantization
//     scales of the respective tensors; their ratio must land in [2^-32, 1)
//   - outputZeroPoint, outputMin, outputMax bound the int8 output
func NewDepthwiseConv2D(
	geom ConvGeometry,
	kernel []int8,
	bias []int32,
	inputScale, kernelScale, outputScale float32,
	outputZeroPoint, outputMin, outputMax int8,
) (*DepthwiseConv2D, error) {
	if err := validateGeometry(geom); err != nil {
		return nil, err
	}
	footprint := geom.Footprint()
	if len(kernel) != footprint*geom.Channels {
		return nil, fmt.Errorf("dwconv: kernel has %d elements, geometry needs %d", len(kernel), footprint*geom.Channels)
	}
	if len(bias) != geom.Channels {
		return nil, fmt.Errorf("dwconv: bias has %d elements, geometry needs %d", len(bias), geom.Channels)
	}
	outH, outW := geom.OutputSize()
	if outH == 0 || outW == 0 {
		return nil, fmt.Errorf("dwconv: geometry produces empty %dx%d output", outH, outW)
	}

	params, err := NewRequantParams(inputScale*kernelScale/outputScale, outputZeroPoint, outputMin, outputMax)
	if err != nil {
		return nil, err
	}

	return &DepthwiseConv2D{
		geom:      geom,
		footprint: footprint,
		outH:      outH,
		outW:      outW,
		weights:   PackWeights(bias, kernel, geom.Channels, footprint, qnn.MaxLanes[int32]()),
		taps:      BuildIndirection(geom),
		zero:      NewZeroBuffer(geom.Channels),
		params:    params,
	}, nil
}

// OutputSize returns the spatial output dimensions.
func (op *DepthwiseConv2D) OutputSize() (height, width int) {
	return op.outH, op.outW
}

// Params returns the derived requantization constants.
func (op *DepthwiseConv2D) Params() RequantParams {
	return op.params
}

// Run convolves input into output. Both tensors are NHWC int8; the batch
// size is inferred from len(input), and output must hold the matching
// batch of outputs. When pool is non-nil, output rows are partitioned
// across its workers — each row is an independent kernel call writing a
// disjoint output region, so no locking is involved.
func (op *DepthwiseConv2D) Run(pool *workerpool.Pool, input, output []int8) error {
	g := op.geom
	inputPixels := g.InputHeight * g.InputWidth * g.Channels
	outputPixels := op.outH * op.outW * g.Channels

	if len(input) == 0 || len(input)%inputPixels != 0 {
		return fmt.Errorf("dwconv: input length %d is not a multiple of the %d-element image", len(input), inputPixels)
	}
	batch := len(input) / inputPixels
	if len(output) < batch*outputPixels {
		return fmt.Errorf("dwconv: output length %d below %d", len(output), batch*outputPixels)
	}

	rowTaps := op.outW * op.footprint
	runRow := func(row int) {
		b := row / op.outH
		y := row % op.outH
		BaseDepthwiseConvMinmax(
			g.Channels,
			op.outW,
			op.taps[y*rowTaps:],
			op.footprint,
			int32(b*inputPixels),
			input,
			op.zero,
			op.weights,
			op.footprint,
			output[b*outputPixels+y*op.outW*g.Channels:],
			0,
			&op.params,
		)
	}

	rows := batch * op.outH
	if pool == nil {
		for row := range rows {
			runRow(row)
		}
		return nil
	}
	pool.ParallelForAtomic(rows, runRow)
	return nil
}

func validateGeometry(g ConvGeometry) error {
	if g.Channels <= 0 {
		return fmt.Errorf("dwconv: channels %d must be positive", g.Channels)
	}
	if g.InputHeight <= 0 || g.InputWidth <= 0 {
		return fmt.Errorf("dwconv: input size %dx%d must be positive", g.InputHeight, g.InputWidth)
	}
	if g.KernelHeight <= 0 || g.KernelWidth <= 0 {
		return fmt.Errorf("dwconv: kernel size %dx%d must be positive", g.KernelHeight, g.KernelWidth)
	}
	if g.StrideHeight <= 0 || g.StrideWidth <= 0 {
		return fmt.Errorf("dwconv: stride %dx%d must be positive", g.StrideHeight, g.StrideWidth)
	}
	if g.DilationHeight <= 0 || g.DilationWidth <= 0 {
		return fmt.Errorf("dwconv: dilation %dx%d must be positive", g.DilationHeight, g.DilationWidth)
	}
	if g.PaddingTop < 0 || g.PaddingLeft < 0 || g.PaddingBottom < 0 || g.PaddingRight < 0 {
		return fmt.Errorf("dwconv: negative padding")
	}
	return nil
}
