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

// qnnbench benchmarks the quantized kernels on the host CPU.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/ajroetker/go-qnn/qnn"
	"github.com/ajroetker/go-qnn/qnn/contrib/depthtospace"
	"github.com/ajroetker/go-qnn/qnn/contrib/dwconv"
	"github.com/ajroetker/go-qnn/qnn/contrib/workerpool"
)

func main() {
	app := &cli.Command{
		Name:  "qnnbench",
		Usage: "Quantized kernel benchmarks",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			dwconvCmd(),
			depthToSpaceCmd(),
			suiteCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Print the detected vector target",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("target:      %s\n", qnn.CurrentName())
			fmt.Printf("width:       %d bytes\n", qnn.CurrentWidth())
			fmt.Printf("int8 lanes:  %d\n", qnn.MaxLanes[int8]())
			fmt.Printf("int32 lanes: %d\n", qnn.MaxLanes[int32]())
			fmt.Printf("cpus:        %d\n", runtime.NumCPU())
			fmt.Printf("gomaxprocs:  %d\n", runtime.GOMAXPROCS(0))
			if qnn.NoSimdEnv() {
				fmt.Println("QNN_NO_SIMD is set: narrowest lane configuration forced")
			}
			return nil
		},
	}
}

func dwconvCmd() *cli.Command {
	var (
		height, width, channels int64
		kernel, stride          int64
		batch                   int64
		runs, warmup            int64
		threads                 int64
		asJSON                  bool
	)

	return &cli.Command{
		Name:  "dwconv",
		Usage: "Benchmark the depthwise convolution kernel",
		Flags: append(benchFlags(&runs, &warmup, &threads, &asJSON),
			&cli.Int64Flag{Name: "height", Value: 112, Usage: "input height", Destination: &height},
			&cli.Int64Flag{Name: "width", Value: 112, Usage: "input width", Destination: &width},
			&cli.Int64Flag{Name: "channels", Aliases: []string{"c"}, Value: 144, Usage: "channel count", Destination: &channels},
			&cli.Int64Flag{Name: "kernel", Aliases: []string{"k"}, Value: 3, Usage: "kernel size (KxK)", Destination: &kernel},
			&cli.Int64Flag{Name: "stride", Aliases: []string{"s"}, Value: 1, Usage: "stride", Destination: &stride},
			&cli.Int64Flag{Name: "batch", Aliases: []string{"b"}, Value: 1, Usage: "batch size", Destination: &batch},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			bc := dwconvCase{
				Height: int(height), Width: int(width), Channels: int(channels),
				Kernel: int(kernel), Stride: int(stride), Batch: int(batch),
			}
			result, err := runDwconvCase(bc, benchOptions{Runs: int(runs), Warmup: int(warmup), Threads: int(threads)})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return printResults([]benchResult{result}, asJSON)
		},
	}
}

func depthToSpaceCmd() *cli.Command {
	var (
		height, width, channels int64
		block                   int64
		batch                   int64
		runs, warmup            int64
		threads                 int64
		asJSON                  bool
	)

	return &cli.Command{
		Name:  "depthtospace",
		Usage: "Benchmark the depth-to-space rearrangement kernel",
		Flags: append(benchFlags(&runs, &warmup, &threads, &asJSON),
			&cli.Int64Flag{Name: "height", Value: 56, Usage: "input height", Destination: &height},
			&cli.Int64Flag{Name: "width", Value: 56, Usage: "input width", Destination: &width},
			&cli.Int64Flag{Name: "channels", Aliases: []string{"c"}, Value: 32, Usage: "output channel count", Destination: &channels},
			&cli.Int64Flag{Name: "block", Value: 2, Usage: "block size", Destination: &block},
			&cli.Int64Flag{Name: "batch", Aliases: []string{"b"}, Value: 1, Usage: "batch size", Destination: &batch},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			bc := depthToSpaceCase{
				Height: int(height), Width: int(width), Channels: int(channels),
				Block: int(block), Batch: int(batch),
			}
			result, err := runDepthToSpaceCase(bc, benchOptions{Runs: int(runs), Warmup: int(warmup), Threads: int(threads)})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return printResults([]benchResult{result}, asJSON)
		},
	}
}

func suiteCmd() *cli.Command {
	var (
		configPath string
		asJSON     bool
	)

	return &cli.Command{
		Name:  "suite",
		Usage: "Run a YAML-defined benchmark suite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"f"},
				Usage:       "suite configuration file",
				Value:       "qnnbench.yaml",
				Destination: &configPath,
			},
			&cli.BoolFlag{Name: "json", Usage: "emit results as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadSuiteConfig(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load suite: %v", err), 1)
			}

			opts := benchOptions{Runs: cfg.Runs, Warmup: cfg.Warmup, Threads: cfg.Threads}
			results := make([]benchResult, 0, len(cfg.Dwconv)+len(cfg.DepthToSpace))
			for _, c := range cfg.Dwconv {
				r, err := runDwconvCase(c, opts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: dwconv case %+v: %v", c, err), 1)
				}
				results = append(results, r)
			}
			for _, c := range cfg.DepthToSpace {
				r, err := runDepthToSpaceCase(c, opts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: depthtospace case %+v: %v", c, err), 1)
				}
				results = append(results, r)
			}
			return printResults(results, asJSON)
		},
	}
}

func benchFlags(runs, warmup, threads *int64, asJSON *bool) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "runs", Value: 10, Usage: "number of timed runs", Destination: runs},
		&cli.Int64Flag{Name: "warmup", Value: 2, Usage: "number of warmup runs", Destination: warmup},
		&cli.Int64Flag{Name: "threads", Aliases: []string{"t"}, Value: 1, Usage: "worker threads (0 = GOMAXPROCS)", Destination: threads},
		&cli.BoolFlag{Name: "json", Usage: "emit results as JSON", Destination: asJSON},
	}
}

// newPool returns nil for single-threaded runs so operators take their
// sequential path.
func newPool(threads int) *workerpool.Pool {
	if threads == 1 {
		return nil
	}
	return workerpool.New(threads)
}

func runDwconvCase(c dwconvCase, opts benchOptions) (benchResult, error) {
	c.applyDefaults()
	rng := rand.New(rand.NewSource(42))

	g := dwconv.ConvGeometry{
		InputHeight: c.Height, InputWidth: c.Width, Channels: c.Channels,
		KernelHeight: c.Kernel, KernelWidth: c.Kernel,
		StrideHeight: c.Stride, StrideWidth: c.Stride,
		DilationHeight: 1, DilationWidth: 1,
		PaddingTop: c.Kernel / 2, PaddingLeft: c.Kernel / 2,
		PaddingBottom: c.Kernel / 2, PaddingRight: c.Kernel / 2,
	}

	kernel := make([]int8, g.Footprint()*g.Channels)
	for i := range kernel {
		kernel[i] = int8(rng.Intn(256) - 128)
	}
	bias := make([]int32, g.Channels)
	for i := range bias {
		bias[i] = rng.Int31n(2000) - 1000
	}

	op, err := dwconv.NewDepthwiseConv2D(g, kernel, bias, 0.02, 0.015, 0.5, 0, -128, 127)
	if err != nil {
		return benchResult{}, err
	}

	input := make([]int8, c.Batch*g.InputHeight*g.InputWidth*g.Channels)
	for i := range input {
		input[i] = int8(rng.Intn(256) - 128)
	}
	outH, outW := op.OutputSize()
	output := make([]int8, c.Batch*outH*outW*g.Channels)

	pool := newPool(opts.Threads)
	if pool != nil {
		defer pool.Close()
	}

	name := fmt.Sprintf("dwconv %dx%dx%d k%d s%d b%d", c.Height, c.Width, c.Channels, c.Kernel, c.Stride, c.Batch)
	elements := int64(len(output))
	return timeKernel(name, opts, elements, func() error {
		return op.Run(pool, input, output)
	})
}

func runDepthToSpaceCase(c depthToSpaceCase, opts benchOptions) (benchResult, error) {
	c.applyDefaults()
	rng := rand.New(rand.NewSource(42))

	op, err := depthtospace.NewDepthToSpace2D[int8](c.Channels, c.Height, c.Width, c.Block)
	if err != nil {
		return benchResult{}, err
	}

	input := make([]int8, c.Batch*op.InputChannels()*c.Height*c.Width)
	for i := range input {
		input[i] = int8(rng.Intn(256) - 128)
	}
	outH, outW := op.OutputSize()
	output := make([]int8, c.Batch*outH*outW*c.Channels)

	pool := newPool(opts.Threads)
	if pool != nil {
		defer pool.Close()
	}

	name := fmt.Sprintf("depthtospace %dx%dx%d bs%d b%d", c.Height, c.Width, c.Channels, c.Block, c.Batch)
	elements := int64(len(output))
	return timeKernel(name, opts, elements, func() error {
		return op.Run(pool, input, output)
	})
}
