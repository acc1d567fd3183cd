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

package kernel

import "fmt"

// MatMul is a packed sparse-register-tiling SpMM executor for one sparse
// matrix. Construction (New) performs the one-time inspection and packing;
// Invoke runs the multiply against a dense operand. A MatMul is not safe
// for concurrent Invoke calls: the execution tile buffer is per-instance
// state.
type MatMul struct {
	m, k, n    int
	mPadded    int
	tileHeight int
	nr         int
	vecLanes   int
	cfg        TileConfig

	panels []panel

	// Executor state, sized by AllocateExecutor.
	execN    int
	stripW   int
	acc      []float64 // tileHeight × stripW tile buffer
	released bool
}

// New inspects and packs an m×k CSR sparse matrix for multiplication
// against k×n dense operands. values/rowPtr/colIdx are the standard CSR
// triple; they are only read during packing and may be freed or mutated by
// the caller afterwards.
//
// executorID must come from ResolveExecutor for the same mappingID.
// allowRowPadding must be true under CAKE tiling: the packed form rounds
// the row count up by a full register tile, and execution stores complete
// row tiles, so output buffers need PaddedRows()×n elements.
//
// Row pointer monotonicity and column index range are not validated.
func New(m, k, n int, values []float64, rowPtr, colIdx []int32, cfg TileConfig,
	threads int, executorID, mappingID string, allowRowPadding bool) (*MatMul, error) {

	if m <= 0 || k <= 0 || n <= 0 {
		return nil, fmt.Errorf("kernel: non-positive dimensions %dx%dx%d", m, k, n)
	}
	if threads != 1 {
		return nil, fmt.Errorf("kernel: %d threads requested, only single-threaded execution is supported", threads)
	}
	if !cfg.SparseA {
		return nil, fmt.Errorf("kernel: dense left operand not supported")
	}
	if cfg.Beta != 1 {
		return nil, fmt.Errorf("kernel: beta=%v not supported, executor accumulates with beta=1", cfg.Beta)
	}

	tileHeight, err := MappingTileHeight(mappingID)
	if err != nil {
		return nil, err
	}
	spec, err := parseExecutorID(executorID)
	if err != nil {
		return nil, err
	}
	if spec.mappingName != mappings[mappingID].name {
		return nil, fmt.Errorf("kernel: executor %q does not implement mapping %q", executorID, mappingID)
	}

	if (cfg.Strategy == CakeTiling || cfg.Strategy == CakeTilingTLBCompensation) && !allowRowPadding {
		return nil, fmt.Errorf("kernel: %s tiling requires row padding", cfg.Strategy)
	}

	panels, err := packPanels(m, values, rowPtr, colIdx, tileHeight)
	if err != nil {
		return nil, err
	}

	return &MatMul{
		m:          m,
		k:          k,
		n:          n,
		mPadded:    padToTileMultiple(m, tileHeight),
		tileHeight: tileHeight,
		nr:         spec.nr,
		vecLanes:   spec.vecLanes(),
		cfg:        cfg,
		panels:     panels,
		execN:      -1,
	}, nil
}

// AllocateExecutor sizes the execution plan for dense operands with bcols
// columns. Must be called once before Invoke.
func (mm *MatMul) AllocateExecutor(bcols int) error {
	if mm.released {
		return fmt.Errorf("kernel: executor released")
	}
	if bcols <= 0 {
		return fmt.Errorf("kernel: non-positive column count %d", bcols)
	}

	stripW := mm.cfg.effectiveNC(mm.vecLanes)
	// The minor tile covers nr vector registers of B columns; round the
	// strip width down to that granule when it is wide enough.
	granule := mm.nr * mm.vecLanes
	if stripW > granule {
		stripW -= stripW % granule
	}
	if stripW > bcols {
		stripW = bcols
	}

	mm.execN = bcols
	mm.stripW = stripW
	mm.acc = make([]float64, mm.tileHeight*stripW)
	return nil
}

// PaddedRows returns the packed row count: the logical row count rounded up
// by a full register tile.
func (mm *MatMul) PaddedRows() int { return mm.mPadded }

// Dims returns the logical (m, k, n) fixed at construction.
func (mm *MatMul) Dims() (m, k, n int) { return mm.m, mm.k, mm.n }

// Invoke accumulates c += A*b.
//
// b is the dense operand, k×bcols row-major, where bcols is the column
// count given to AllocateExecutor. c is PaddedRows()×bcols row-major: the
// executor stores complete row tiles, including the padding rows.
//
// Panics on slice-length violations or if AllocateExecutor has not run;
// these are programmer errors, not runtime conditions.
func (mm *MatMul) Invoke(c, b []float64) {
	if mm.released {
		panic("kernel: Invoke on released executor")
	}
	if mm.execN < 0 {
		panic("kernel: Invoke before AllocateExecutor")
	}
	n := mm.execN
	if len(c) < mm.mPadded*n {
		panic("kernel: output slice too short for padded rows")
	}
	if len(b) < mm.k*n {
		panic("kernel: dense operand slice too short")
	}

	// NKM schedule: N strips outermost, panels of M innermost. K blocking
	// is immaterial for the packed scalar path; each panel's nonzeros are
	// consumed in packed order.
	for j0 := 0; j0 < n; j0 += mm.stripW {
		w := min(mm.stripW, n-j0)
		for p := range mm.panels {
			mm.invokePanel(&mm.panels[p], p, c, b, n, j0, w)
		}
	}
}

// invokePanel computes one register tile's contribution over the column
// strip [j0, j0+w). The full tile of rows is loaded, accumulated, and
// stored back, padding rows included: stores are tile-granular, which is
// why c must be sized to the padded row count.
func (mm *MatMul) invokePanel(pn *panel, p int, c, b []float64, n, j0, w int) {
	th := mm.tileHeight
	baseRow := p * th
	acc := mm.acc

	// Load the output tile.
	for r := 0; r < th; r++ {
		copy(acc[r*w:(r+1)*w], c[(baseRow+r)*n+j0:])
	}

	// Accumulate this panel's nonzeros: acc[r] += a[r,col] * b[col, strip].
	for r := 0; r < th; r++ {
		accRow := acc[r*w : (r+1)*w]
		for idx := pn.rowPtr[r]; idx < pn.rowPtr[r+1]; idx++ {
			av := pn.vals[idx]
			bRow := b[int(pn.cols[idx])*n+j0:]
			for j := 0; j < w; j++ {
				accRow[j] += av * bRow[j]
			}
		}
	}

	// Store the full tile back.
	for r := 0; r < th; r++ {
		copy(c[(baseRow+r)*n+j0:(baseRow+r)*n+j0+w], acc[r*w:(r+1)*w])
	}
}

// Release frees the packed panels and executor state. Invoke and
// AllocateExecutor fail after Release. Releasing twice is a no-op.
func (mm *MatMul) Release() {
	mm.panels = nil
	mm.acc = nil
	mm.released = true
}
