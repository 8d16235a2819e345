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
	"slices"
	"testing"

	"github.com/ajroetker/go-qnn/qnn/contrib/workerpool"
)

func TestNewDepthwiseConv2DValidation(t *testing.T) {
	good := geometry3x3(4, 4, 3)
	kernel := make([]int8, good.Footprint()*good.Channels)
	bias := make([]int32, good.Channels)

	if _, err := NewDepthwiseConv2D(good, kernel, bias, 0.02, 0.03, 0.1, 0, -128, 127); err != nil {
		t.Fatalf("valid configuration rejected: %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(*ConvGeometry)
	}{
		{"zero_channels", func(g *ConvGeometry) { g.Channels = 0 }},
		{"zero_input", func(g *ConvGeometry) { g.InputWidth = 0 }},
		{"zero_kernel", func(g *ConvGeometry) { g.KernelHeight = 0 }},
		{"zero_stride", func(g *ConvGeometry) { g.StrideWidth = 0 }},
		{"zero_dilation", func(g *ConvGeometry) { g.DilationHeight = 0 }},
		{"negative_padding", func(g *ConvGeometry) { g.PaddingLeft = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := good
			tc.mutate(&g)
			if _, err := NewDepthwiseConv2D(g, kernel, bias, 0.02, 0.03, 0.1, 0, -128, 127); err == nil {
				t.Error("invalid geometry accepted")
			}
		})
	}

	t.Run("kernel_size_mismatch", func(t *testing.T) {
		if _, err := NewDepthwiseConv2D(good, kernel[:5], bias, 0.02, 0.03, 0.1, 0, -128, 127); err == nil {
			t.Error("short kernel accepted")
		}
	})
	t.Run("bias_size_mismatch", func(t *testing.T) {
		if _, err := NewDepthwiseConv2D(good, kernel, bias[:1], 0.02, 0.03, 0.1, 0, -128, 127); err == nil {
			t.Error("short bias accepted")
		}
	})
	t.Run("scale_ratio_too_large", func(t *testing.T) {
		if _, err := NewDepthwiseConv2D(good, kernel, bias, 1.0, 1.0, 0.5, 0, -128, 127); err == nil {
			t.Error("scale ratio of 2.0 accepted")
		}
	})
	t.Run("empty_output", func(t *testing.T) {
		g := good
		g.InputHeight = 1
		g.PaddingTop, g.PaddingBottom = 0, 0
		if _, err := NewDepthwiseConv2D(g, kernel, bias, 0.02, 0.03, 0.1, 0, -128, 127); err == nil {
			t.Error("empty-output geometry accepted")
		}
	})
}

func TestDepthwiseConv2DRunMatchesReference(t *testing.T) {
	rng := testRNG()
	g := geometry3x3(5, 6, 7)
	input, kernel, bias := randomTensors(rng, g)

	const inScale, kScale, outScale = 0.02, 0.015, 0.5
	op, err := NewDepthwiseConv2D(g, kernel, bias, inScale, kScale, outScale, 4, -110, 115)
	if err != nil {
		t.Fatal(err)
	}
	params := op.Params()
	want := referenceConv(g, input, kernel, bias, &params)

	outH, outW := op.OutputSize()
	output := make([]int8, outH*outW*g.Channels)
	if err := op.Run(nil, input, output); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(output, want) {
		t.Error("operator output differs from reference")
	}
}

func TestDepthwiseConv2DRunBatched(t *testing.T) {
	rng := testRNG()
	g := geometry3x3(4, 4, 5)
	const batch = 3

	kernel := make([]int8, g.Footprint()*g.Channels)
	for i := range kernel {
		kernel[i] = int8(rng.Intn(256) - 128)
	}
	bias := make([]int32, g.Channels)
	for i := range bias {
		bias[i] = rng.Int31n(2000) - 1000
	}

	op, err := NewDepthwiseConv2D(g, kernel, bias, 0.03, 0.02, 0.25, 0, -128, 127)
	if err != nil {
		t.Fatal(err)
	}

	imageIn := g.InputHeight * g.InputWidth * g.Channels
	outH, outW := op.OutputSize()
	imageOut := outH * outW * g.Channels

	input := make([]int8, batch*imageIn)
	for i := range input {
		input[i] = int8(rng.Intn(256) - 128)
	}
	output := make([]int8, batch*imageOut)
	if err := op.Run(nil, input, output); err != nil {
		t.Fatal(err)
	}

	// Each batch image must equal its standalone reference.
	params := op.Params()
	for b := range batch {
		want := referenceConv(g, input[b*imageIn:(b+1)*imageIn], kernel, bias, &params)
		if !slices.Equal(output[b*imageOut:(b+1)*imageOut], want) {
			t.Errorf("batch image %d differs from reference", b)
		}
	}
}

func TestDepthwiseConv2DRunParallel(t *testing.T) {
	rng := testRNG()
	g := geometry3x3(16, 16, 9)
	const batch = 4

	kernel := make([]int8, g.Footprint()*g.Channels)
	for i := range kernel {
		kernel[i] = int8(rng.Intn(256) - 128)
	}
	bias := make([]int32, g.Channels)
	for i := range bias {
		bias[i] = rng.Int31n(2000) - 1000
	}

	op, err := NewDepthwiseConv2D(g, kernel, bias, 0.03, 0.02, 0.25, -1, -128, 127)
	if err != nil {
		t.Fatal(err)
	}

	imageIn := g.InputHeight * g.InputWidth * g.Channels
	outH, outW := op.OutputSize()
	imageOut := outH * outW * g.Channels

	input := make([]int8, batch*imageIn)
	for i := range input {
		input[i] = int8(rng.Intn(256) - 128)
	}

	serial := make([]int8, batch*imageOut)
	if err := op.Run(nil, input, serial); err != nil {
		t.Fatal(err)
	}

	pool := workerpool.New(4)
	defer pool.Close()
	parallel := make([]int8, batch*imageOut)
	if err := op.Run(pool, input, parallel); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(parallel, serial) {
		t.Error("parallel run differs from serial run")
	}
}

func TestDepthwiseConv2DRunRejectsBadLengths(t *testing.T) {
	g := geometry3x3(4, 4, 3)
	op, err := NewDepthwiseConv2D(g, make([]int8, g.Footprint()*g.Channels), make([]int32, g.Channels), 0.02, 0.03, 0.1, 0, -128, 127)
	if err != nil {
		t.Fatal(err)
	}

	imageIn := g.InputHeight * g.InputWidth * g.Channels
	outH, outW := op.OutputSize()
	imageOut := outH * outW * g.Channels

	if err := op.Run(nil, make([]int8, imageIn-1), make([]int8, imageOut)); err == nil {
		t.Error("ragged input length accepted")
	}
	if err := op.Run(nil, nil, make([]int8, imageOut)); err == nil {
		t.Error("empty input accepted")
	}
	if err := op.Run(nil, make([]int8, 2*imageIn), make([]int8, 2*imageOut-1)); err == nil {
		t.Error("short output accepted")
	}
}
