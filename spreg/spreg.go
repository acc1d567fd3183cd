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

package spreg

import (
	"log"
	"os"

	"github.com/sabletools/go-spreg/spreg/kernel"
	"github.com/sabletools/go-spreg/spreg/mem"
)

const (
	// tileHeight is M_r of the double-precision 512-bit register tile.
	// The padded row count computed from it must match the kernel's own
	// padToTileMultiple rule bit for bit.
	tileHeight = 4

	// defaultMappingID is the identity mapping for M_r=4 tiles, the
	// heuristic default for wide dense operands.
	defaultMappingID = "61fee"
)

// diag receives human-readable failure diagnostics. No structured error
// values cross the package boundary; the nil handle / no-op convention is
// the only failure signal.
var diag = log.New(os.Stderr, "spreg: ", 0)

// Test seams: scratch allocation and kernel release are indirected so the
// failure path can be exercised and release accounted for.
var (
	newAlignedBuf = mem.AlignedFloat64
	releaseKernel = (*kernel.MatMul).Release
)

// Handle is the opaque state for one constructed sparse matrix: the packed
// kernel instance, the logical dimensions, and the padded-output scratch
// buffer. Obtain with Init, use with Execute, release with Cleanup.
type Handle struct {
	mm      *kernel.MatMul
	m, k, n int

	// mPadded is m rounded up by a full tile, always strictly greater
	// than m (the kernel pads even tile-aligned row counts).
	mPadded int

	// scratch receives the kernel's padded output when mPadded != m.
	// Only its first m rows are ever copied out.
	scratch []float64
}

// Dims returns the logical dimensions fixed at Init.
func (h *Handle) Dims() (m, k, n int) { return h.m, h.k, h.n }

// PaddedRows returns the row count of the kernel's packed form.
func (h *Handle) PaddedRows() int { return h.mPadded }

// Init constructs the SpMM executor for an m×k CSR sparse matrix to be
// multiplied against k×n dense operands. This performs the kernel's
// inspection and packing — the dominant one-time cost — and should run
// once, outside any timing loop. The CSR arrays are only read during Init.
//
// Returns nil on failure, with a diagnostic on standard error. On failure
// nothing leaks: a kernel instance constructed before a later step failed
// is released.
func Init(values []float64, colIdx, rowPtr []int32, m, k, n int) *Handle {
	// Deployment policy, not caller-configurable: CAKE tiling with TLB
	// compensation, single-threaded, NKM schedule, accumulate (beta=1).
	cfg := kernel.TileConfig{
		MC:            64,
		KC:            256,
		NC:            64,
		Strategy:      kernel.CakeTilingTLBCompensation,
		MaxTLBEntries: 128,
		TLBPageSize:   4096,
		SparseA:       true,
		Beta:          1,
		Schedule:      kernel.ScheduleNKM,
	}

	// Double precision, 512-bit vectors, auto minor tile width.
	executorID, err := kernel.ResolveExecutor(defaultMappingID, "AVX512", 512, -1)
	if err != nil {
		diag.Printf("init failed: %v", err)
		return nil
	}

	// Row padding must be allowed: the kernel treats m as rounded up to
	// the tile height and stores complete row tiles.
	mm, err := kernel.New(m, k, n, values, rowPtr, colIdx, cfg, 1, executorID, defaultMappingID, true)
	if err != nil {
		diag.Printf("init failed: %v", err)
		return nil
	}

	if err := mm.AllocateExecutor(n); err != nil {
		diag.Printf("init failed: %v", err)
		releaseKernel(mm)
		return nil
	}

	mPadded := m + (tileHeight - m%tileHeight)

	h := &Handle{mm: mm, m: m, k: k, n: n, mPadded: mPadded}
	if mPadded != m {
		h.scratch = newAlignedBuf(mPadded*n, mem.KernelAlign)
		if h.scratch == nil {
			diag.Printf("failed to allocate internal result buffer (%d doubles)", mPadded*n)
			releaseKernel(mm)
			return nil
		}
	}
	return h
}

// Execute computes c = A*b: c is the caller's m×n result buffer, b the k×n
// dense operand, both row-major. A nil handle is a no-op with a diagnostic.
//
// The execution target (the scratch buffer when padding is in effect, the
// caller's buffer otherwise) is zeroed on every call before the kernel
// accumulates into it, so repeated calls with the same operand yield
// identical results. When the scratch buffer is used, only its first m
// rows are copied into c; the padding rows are discarded.
func Execute(h *Handle, c, b []float64) {
	if h == nil {
		diag.Printf("execute: nil handle")
		return
	}

	target := c
	rows := h.m
	if h.scratch != nil {
		target = h.scratch
		rows = h.mPadded
	}

	clear(target[:rows*h.n])
	h.mm.Invoke(target, b)

	if h.scratch != nil {
		copy(c[:h.m*h.n], h.scratch)
	}
}

// Cleanup releases the kernel instance and the scratch buffer. A nil
// handle is a no-op. Cleaning up a handle twice, or using it afterwards,
// is a caller error and is not guarded against.
func Cleanup(h *Handle) {
	if h == nil {
		return
	}
	releaseKernel(h.mm)
	h.mm = nil
	h.scratch = nil
}

// SpMM is the one-shot composition Init → Execute → Cleanup. If Init
// fails, c is left untouched. Construction cost is not amortized; use the
// handle lifecycle for repeated execution.
func SpMM(c, values []float64, colIdx, rowPtr []int32, b []float64, m, k, n int) {
	h := Init(values, colIdx, rowPtr, m, k, n)
	if h == nil {
		return
	}
	Execute(h, c, b)
	Cleanup(h)
}
