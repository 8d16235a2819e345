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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/ajroetker/go-qnn/qnn"
)

// benchOptions are shared across all benchmark cases in one invocation.
type benchOptions struct {
	Runs    int
	Warmup  int
	Threads int
}

// benchResult is one timed case. Throughput counts output elements, which
// for the quantized kernels equals bytes written.
type benchResult struct {
	Name     string  `json:"name"`
	Target   string  `json:"target"`
	Threads  int     `json:"threads"`
	Runs     int     `json:"runs"`
	Elements int64   `json:"elements_per_run"`
	BestNs   int64   `json:"best_ns"`
	AvgNs    int64   `json:"avg_ns"`
	MElemsPS float64 `json:"melems_per_sec"`
}

// timeKernel runs fn warmup+runs times and reports best and average
// wall-clock time. Throughput is computed from the best run.
func timeKernel(name string, opts benchOptions, elements int64, fn func() error) (benchResult, error) {
	if opts.Runs <= 0 {
		opts.Runs = 10
	}
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}

	for range opts.Warmup {
		if err := fn(); err != nil {
			return benchResult{}, err
		}
	}

	var best, total time.Duration
	for i := range opts.Runs {
		start := time.Now()
		if err := fn(); err != nil {
			return benchResult{}, err
		}
		elapsed := time.Since(start)
		total += elapsed
		if i == 0 || elapsed < best {
			best = elapsed
		}
	}

	result := benchResult{
		Name:     name,
		Target:   qnn.CurrentName(),
		Threads:  opts.Threads,
		Runs:     opts.Runs,
		Elements: elements,
		BestNs:   best.Nanoseconds(),
		AvgNs:    (total / time.Duration(opts.Runs)).Nanoseconds(),
	}
	if best > 0 {
		result.MElemsPS = float64(elements) / best.Seconds() / 1e6
	}
	return result, nil
}

func printResults(results []benchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("%-40s %8s %8s %12s %12s %12s\n", "case", "target", "threads", "best", "avg", "Melems/s")
	for _, r := range results {
		fmt.Printf("%-40s %8s %8d %12s %12s %12.1f\n",
			r.Name, r.Target, r.Threads,
			time.Duration(r.BestNs).Round(time.Microsecond),
			time.Duration(r.AvgNs).Round(time.Microsecond),
			r.MElemsPS)
	}
	return nil
}
