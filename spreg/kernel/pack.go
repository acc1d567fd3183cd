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

import (
	"fmt"

	"github.com/sabletools/go-spreg/spreg/mem"
)

// padToTileMultiple rounds m up by a full tile, unconditionally: the result
// is m + (tile - m mod tile) even when m is already a multiple of tile.
// Every row count therefore gains between 1 and tile padding rows. The
// packed form, and any output buffer the executor stores to, is sized by
// this rule; it must not be replaced with a round-up that can return m.
func padToTileMultiple(m, tile int) int {
	return m + (tile - m%tile)
}

// panel holds the packed nonzeros of one register tile: tileHeight
// consecutive rows of A in a panel-local CSR layout. Padding rows are
// present with zero entries. Values are copied (data transform) so the
// caller's CSR arrays are not referenced after packing.
type panel struct {
	rowPtr []int32 // len tileHeight+1, panel-local
	cols   []int32
	vals   []float64
}

// packPanels inspects an m×k CSR matrix and packs it into row panels of
// tileHeight rows each, padding the row count per padToTileMultiple.
// Shape-level consistency is validated; structural properties (row pointer
// monotonicity, column index range) are the caller's contract.
func packPanels(m int, values []float64, rowPtr, colIdx []int32, tileHeight int) ([]panel, error) {
	if len(rowPtr) != m+1 {
		return nil, fmt.Errorf("kernel: row pointer length %d, want %d", len(rowPtr), m+1)
	}
	nnz := int(rowPtr[m])
	if len(values) < nnz || len(colIdx) < nnz {
		return nil, fmt.Errorf("kernel: %d nonzeros indicated but values/cols hold %d/%d",
			nnz, len(values), len(colIdx))
	}

	mPadded := padToTileMultiple(m, tileHeight)
	numPanels := mPadded / tileHeight
	panels := make([]panel, numPanels)

	for p := range panels {
		baseRow := p * tileHeight
		pn := &panels[p]
		pn.rowPtr = make([]int32, tileHeight+1)

		// Count this panel's entries, then copy them contiguously into
		// aligned storage. Rows at or beyond m are padding: zero entries.
		start, end := nnz, nnz
		if baseRow < m {
			start = int(rowPtr[baseRow])
			lastRow := min(baseRow+tileHeight, m)
			end = int(rowPtr[lastRow])
		}
		count := end - start
		if count > 0 {
			pn.vals = mem.AlignedFloat64(count, mem.KernelAlign)
			pn.cols = mem.AlignedInt32(count, mem.KernelAlign)
			copy(pn.vals, values[start:end])
			copy(pn.cols, colIdx[start:end])
		}

		for r := 0; r < tileHeight; r++ {
			row := baseRow + r
			if row < m {
				pn.rowPtr[r] = rowPtr[row] - int32(start)
			} else {
				pn.rowPtr[r] = int32(count)
			}
		}
		pn.rowPtr[tileHeight] = int32(count)
	}

	return panels, nil
}
