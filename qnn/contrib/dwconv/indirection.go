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

// TapRef selects the source of one filter tap for one output pixel: either
// a real position in the input tensor, or the shared zero buffer standing
// in for an out-of-bounds (padding) tap. This is the tagged-reference form
// of the classic "zero sentinel pointer" trick — no pointer identity
// comparisons, just a flag resolved per tap per pixel.
type TapRef struct {
	// Offset is the element offset of the tap's base position within the
	// input tensor (the kernel adds its columnOffset argument on top for
	// real taps). Ignored when Zero is set.
	Offset int32

	// Zero routes the tap to the shared zero buffer. Zero taps do not get
	// the columnOffset translation, so they keep reading zeros.
	Zero bool
}

// ConvGeometry describes the spatial shape of a depthwise convolution.
// Tensors are NHWC: the channel is the innermost (contiguous) dimension.
type ConvGeometry struct {
	InputHeight int
	InputWidth  int
	Channels    int

	KernelHeight int
	KernelWidth  int

	StrideHeight int
	StrideWidth  int

	DilationHeight int
	DilationWidth  int

	PaddingTop    int
	PaddingLeft   int
	PaddingBottom int
	PaddingRight  int
}

// Footprint returns the number of taps per output element (K), the
// flattened row-major kernel size.
func (g ConvGeometry) Footprint() int {
	return g.KernelHeight * g.KernelWidth
}

// OutputSize returns the output height and width for this geometry.
func (g ConvGeometry) OutputSize() (height, width int) {
	height = convOutputDim(g.InputHeight, g.PaddingTop+g.PaddingBottom, g.KernelHeight, g.DilationHeight, g.StrideHeight)
	width = convOutputDim(g.InputWidth, g.PaddingLeft+g.PaddingRight, g.KernelWidth, g.DilationWidth, g.StrideWidth)
	return height, width
}

func convOutputDim(input, padding, kernel, dilation, stride int) int {
	effective := (kernel-1)*dilation + 1
	padded := input + padding
	if padded < effective {
		return 0
	}
	return (padded-effective)/stride + 1
}

// BuildIndirection constructs the indirection table for a geometry: for
// each output pixel in row-major order, Footprint() tap references in
// row-major kernel order. Taps falling outside the input are Zero
// references; the mapping is fixed per pixel and never changes during a
// kernel call.
//
// The returned table has length outputHeight * outputWidth * Footprint()
// and a tap stride of Footprint() between consecutive pixels.
func BuildIndirection(g ConvGeometry) []TapRef {
	outH, outW := g.OutputSize()
	footprint := g.Footprint()
	taps := make([]TapRef, 0, outH*outW*footprint)

	for oy := range outH {
		for ox := range outW {
			for ky := range g.KernelHeight {
				iy := oy*g.StrideHeight + ky*g.DilationHeight - g.PaddingTop
				for kx := range g.KernelWidth {
					ix := ox*g.StrideWidth + kx*g.DilationWidth - g.PaddingLeft
					if iy < 0 || iy >= g.InputHeight || ix < 0 || ix >= g.InputWidth {
						taps = append(taps, TapRef{Zero: true})
						continue
					}
					taps = append(taps, TapRef{Offset: int32((iy*g.InputWidth + ix) * g.Channels)})
				}
			}
		}
	}
	return taps
}
