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
	"testing"

	"github.com/sabletools/go-spreg/spreg/mem"
)

func TestPackPanels(t *testing.T) {
	// 5x4 matrix, tile height 4 -> 8 padded rows, 2 panels:
	//   row 0: (0: 1.0) (2: 2.0)
	//   row 1: (1: 3.0)
	//   row 2: empty
	//   row 3: (3: 4.0)
	//   row 4: (0: 5.0)   <- alone in the second panel with 3 padding rows
	values := []float64{1, 2, 3, 4, 5}
	colIdx := []int32{0, 2, 1, 3, 0}
	rowPtr := []int32{0, 2, 3, 3, 4, 5}

	panels, err := packPanels(5, values, rowPtr, colIdx, 4)
	if err != nil {
		t.Fatalf("packPanels: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("got %d panels, want 2", len(panels))
	}

	p0 := panels[0]
	wantPtr0 := []int32{0, 2, 3, 3, 4}
	for i, w := range wantPtr0 {
		if p0.rowPtr[i] != w {
			t.Errorf("panel 0 rowPtr[%d] = %d, want %d", i, p0.rowPtr[i], w)
		}
	}
	if len(p0.vals) != 4 || p0.vals[3] != 4 || p0.cols[3] != 3 {
		t.Errorf("panel 0 packed entries wrong: vals=%v cols=%v", p0.vals, p0.cols)
	}

	p1 := panels[1]
	wantPtr1 := []int32{0, 1, 1, 1, 1} // row 4's entry, then padding rows
	for i, w := range wantPtr1 {
		if p1.rowPtr[i] != w {
			t.Errorf("panel 1 rowPtr[%d] = %d, want %d", i, p1.rowPtr[i], w)
		}
	}
	if len(p1.vals) != 1 || p1.vals[0] != 5 || p1.cols[0] != 0 {
		t.Errorf("panel 1 packed entries wrong: vals=%v cols=%v", p1.vals, p1.cols)
	}
}

func TestPackPanelsAlignedValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	colIdx := []int32{0, 1, 2, 3, 0, 1, 2, 3}
	rowPtr := []int32{0, 4, 8}

	panels, err := packPanels(2, values, rowPtr, colIdx, 4)
	if err != nil {
		t.Fatalf("packPanels: %v", err)
	}
	for i, p := range panels {
		if len(p.vals) == 0 {
			continue
		}
		if !mem.IsAligned(mem.Addr(p.vals), mem.KernelAlign) {
			t.Errorf("panel %d values not %d-byte aligned", i, mem.KernelAlign)
		}
	}
}

func TestPackPanelsEmptyMatrix(t *testing.T) {
	// All-zero matrix: valid CSR with no entries.
	rowPtr := make([]int32, 7)
	panels, err := packPanels(6, nil, rowPtr, nil, 4)
	if err != nil {
		t.Fatalf("packPanels: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("got %d panels, want 2", len(panels))
	}
	for i, p := range panels {
		if p.rowPtr[4] != 0 {
			t.Errorf("panel %d has %d entries, want 0", i, p.rowPtr[4])
		}
	}
}

func TestPackPanelsShapeErrors(t *testing.T) {
	values := []float64{1}
	colIdx := []int32{0}

	if _, err := packPanels(2, values, []int32{0, 1}, colIdx, 4); err == nil {
		t.Errorf("short row pointer array accepted")
	}
	if _, err := packPanels(1, values, []int32{0, 3}, colIdx, 4); err == nil {
		t.Errorf("nnz beyond value array length accepted")
	}
}
