// Copyright 2025 go-spreg Authors
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

// spregbench times the SpMM lifecycle on a random sparse matrix:
// construction (inspection/packing) once, execution per iteration, the way
// a code-generation benchmarking harness drives the wrapper.
//
// Usage:
//
//	spregbench -m 4096 -k 4096 -n 512 -density 0.01 -iters 100 -verify
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sabletools/go-spreg/spreg"
	"github.com/sabletools/go-spreg/spreg/kernel"
)

func main() {
	var (
		mFlag       = flag.Int("m", 4096, "sparse matrix rows")
		kFlag       = flag.Int("k", 4096, "sparse matrix columns")
		nFlag       = flag.Int("n", 512, "dense operand columns")
		densityFlag = flag.Float64("density", 0.01, "nonzero fraction of the sparse matrix")
		itersFlag   = flag.Int("iters", 100, "execute iterations to time")
		seedFlag    = flag.Int64("seed", 1, "random seed")
		verifyFlag  = flag.Bool("verify", false, "check the result against a dense reference")
	)
	flag.Parse()
	m, k, n, iters := *mFlag, *kFlag, *nFlag, *itersFlag

	if m <= 0 || k <= 0 || n <= 0 || iters <= 0 {
		fmt.Fprintln(os.Stderr, "spregbench: dimensions and iterations must be positive")
		os.Exit(2)
	}

	fmt.Printf("host: %s, %d-bit vectors\n", kernel.HostArch(), kernel.HostVectorBits())

	rng := rand.New(rand.NewSource(*seedFlag))
	values, colIdx, rowPtr := randomCSR(rng, m, k, *densityFlag)
	nnz := len(values)
	fmt.Printf("matrix: %dx%d, %d nonzeros (%.4f density), B: %dx%d\n",
		m, k, nnz, float64(nnz)/float64(m*k), k, n)

	b := make([]float64, k*n)
	for i := range b {
		b[i] = rng.Float64()*2 - 1
	}
	c := make([]float64, m*n)

	start := time.Now()
	h := spreg.Init(values, colIdx, rowPtr, m, k, n)
	initTime := time.Since(start)
	if h == nil {
		fmt.Fprintln(os.Stderr, "spregbench: init failed")
		os.Exit(1)
	}
	defer spreg.Cleanup(h)
	fmt.Printf("init (inspection/packing): %v\n", initTime)

	// Warm-up run, also the one used for verification.
	spreg.Execute(h, c, b)

	if *verifyFlag {
		if err := verifyDense(c, values, colIdx, rowPtr, b, m, k, n); err != nil {
			fmt.Fprintf(os.Stderr, "spregbench: verification failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("verify: ok")
	}

	start = time.Now()
	for i := 0; i < iters; i++ {
		spreg.Execute(h, c, b)
	}
	elapsed := time.Since(start)

	perIter := elapsed / time.Duration(iters)
	flops := 2 * float64(nnz) * float64(n)
	fmt.Printf("execute: %v/iter, %.2f GFLOP/s\n", perIter, flops/perIter.Seconds()/1e9)
}

func randomCSR(rng *rand.Rand, m, k int, density float64) (values []float64, colIdx, rowPtr []int32) {
	rowPtr = make([]int32, m+1)
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			if rng.Float64() < density {
				values = append(values, rng.Float64()*2-1)
				colIdx = append(colIdx, int32(j))
			}
		}
		rowPtr[i+1] = int32(len(values))
	}
	return values, colIdx, rowPtr
}

func verifyDense(c, values []float64, colIdx, rowPtr []int32, b []float64, m, k, n int) error {
	a := mat.NewDense(m, k, nil)
	for i := 0; i < m; i++ {
		for idx := rowPtr[i]; idx < rowPtr[i+1]; idx++ {
			a.Set(i, int(colIdx[idx]), values[idx])
		}
	}
	var want mat.Dense
	want.Mul(a, mat.NewDense(k, n, b))

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			got := c[i*n+j]
			exp := want.At(i, j)
			if math.Abs(got-exp) > 1e-10*math.Max(1, math.Abs(exp)) {
				return fmt.Errorf("C[%d,%d] = %g, want %g", i, j, got, exp)
			}
		}
	}
	return nil
}
