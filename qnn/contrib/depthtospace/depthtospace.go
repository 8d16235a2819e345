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

// Package depthtospace implements the depth-to-space (pixel shuffle)
// rearrangement that moves channel blocks into spatial blocks, converting
// CHW input to HWC output in a single pass. It is pure data movement — no
// arithmetic — and is generic over the lane type.
package depthtospace

import (
	"fmt"

	"github.com/ajroetker/go-qnn/qnn"
	"github.com/ajroetker/go-qnn/qnn/contrib/workerpool"
)

// BaseDepthToSpaceCHW2HWC rearranges one CHW image into an HWC image with
// the spatial resolution scaled up by blockSize. All strides are in
// elements.
//
// For every input pixel (iy, ix), block position (by, bx), and output
// channel c:
//
//	output[(iy*blockSize+by)*outputHeightStride +
//	       (ix*blockSize+bx)*outputWidthStride + c] =
//	    input[(c*blockSize*blockSize + by*blockSize + bx)*inputChannelStride +
//	          iy*inputHeightStride + ix]
//
// outputChannels, inputHeight, inputWidth and blockSize must be positive;
// violations panic.
func BaseDepthToSpaceCHW2HWC[T qnn.Lanes](
	outputChannels int,
	inputHeight int,
	inputWidth int,
	blockSize int,
	input []T,
	output []T,
	inputChannelStride int,
	inputHeightStride int,
	outputHeightStride int,
	outputWidthStride int,
) {
	if outputChannels <= 0 {
		panic("depthtospace: output channels must be positive")
	}
	if inputHeight <= 0 || inputWidth <= 0 {
		panic("depthtospace: input size must be positive")
	}
	if blockSize <= 0 {
		panic("depthtospace: block size must be positive")
	}

	for iy := range inputHeight {
		for by := range blockSize {
			outRow := (iy*blockSize + by) * outputHeightStride
			for ix := range inputWidth {
				for bx := range blockSize {
					inPos := (by*blockSize+bx)*inputChannelStride + iy*inputHeightStride + ix
					outPos := outRow + (ix*blockSize+bx)*outputWidthStride
					for c := range outputChannels {
						output[outPos+c] = input[inPos+c*blockSize*blockSize*inputChannelStride]
					}
				}
			}
		}
	}
}

// DepthToSpace2D is a configured depth-to-space operator over contiguous
// CHW input and HWC output tensors.
type DepthToSpace2D[T qnn.Lanes] struct {
	OutputChannels int
	InputHeight    int
	InputWidth     int
	BlockSize      int
}

// NewDepthToSpace2D validates the shape and returns an operator.
func NewDepthToSpace2D[T qnn.Lanes](outputChannels, inputHeight, inputWidth, blockSize int) (*DepthToSpace2D[T], error) {
	if outputChannels <= 0 {
		return nil, fmt.Errorf("depthtospace: output channels %d must be positive", outputChannels)
	}
	if inputHeight <= 0 || inputWidth <= 0 {
		return nil, fmt.Errorf("depthtospace: input size %dx%d must be positive", inputHeight, inputWidth)
	}
	if blockSize < 2 {
		return nil, fmt.Errorf("depthtospace: block size %d must be at least 2", blockSize)
	}
	return &DepthToSpace2D[T]{
		OutputChannels: outputChannels,
		InputHeight:    inputHeight,
		InputWidth:     inputWidth,
		BlockSize:      blockSize,
	}, nil
}

// InputChannels returns the CHW channel count consumed per image.
func (op *DepthToSpace2D[T]) InputChannels() int {
	return op.OutputChannels * op.BlockSize * op.BlockSize
}

// OutputSize returns the HWC spatial output dimensions.
func (op *DepthToSpace2D[T]) OutputSize() (height, width int) {
	return op.InputHeight * op.BlockSize, op.InputWidth * op.BlockSize
}

// Run rearranges input into output. The batch size is inferred from
// len(input). When pool is non-nil, images are partitioned across its
// workers; each image is an independent kernel call.
func (op *DepthToSpace2D[T]) Run(pool *workerpool.Pool, input, output []T) error {
	inputImage := op.InputChannels() * op.InputHeight * op.InputWidth
	outH, outW := op.OutputSize()
	outputImage := outH * outW * op.OutputChannels

	if len(input) == 0 || len(input)%inputImage != 0 {
		return fmt.Errorf("depthtospace: input length %d is not a multiple of the %d-element image", len(input), inputImage)
	}
	batch := len(input) / inputImage
	if len(output) < batch*outputImage {
		return fmt.Errorf("depthtospace: output length %d below %d", len(output), batch*outputImage)
	}

	inChStride := op.InputHeight * op.InputWidth
	runImage := func(b int) {
		BaseDepthToSpaceCHW2HWC(
			op.OutputChannels,
			op.InputHeight,
			op.InputWidth,
			op.BlockSize,
			input[b*inputImage:],
			output[b*outputImage:],
			inChStride,
			op.InputWidth,
			outW*op.OutputChannels,
			op.OutputChannels,
		)
	}

	if pool == nil {
		for b := range batch {
			runImage(b)
		}
		return nil
	}
	pool.ParallelForAtomic(batch, runImage)
	return nil
}
