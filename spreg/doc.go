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

// Package spreg wraps the sparse-register-tiling SpMM kernel behind a
// stable, opaque-handle interface: construct once, execute many times,
// destroy once. Callers hand over a CSR sparse matrix and get back exactly
// M×N results, regardless of the row padding the kernel performs
// internally.
//
//	h := spreg.Init(values, colIdx, rowPtr, m, k, n)
//	if h == nil { ... }
//	defer spreg.Cleanup(h)
//
//	c := make([]float64, m*n)
//	spreg.Execute(h, c, b) // c = A * B
//
// Init performs the kernel's inspection and packing of the sparse matrix;
// it is the expensive step and belongs outside any timing loop. Execute is
// the hot path. SpMM composes all three for one-shot use.
//
// # Row padding
//
// The kernel packs the sparse matrix with its row count rounded up by a
// full register tile and stores complete row tiles during execution, so it
// needs an output buffer with the padded row count. When padding occurs
// (it always does; the kernel's rounding rule adds a full tile even for
// aligned row counts), the handle owns a 64-byte-aligned scratch buffer of
// the padded size, executes into it, and copies the first M rows out. The
// caller's buffer is never written past row M-1 and the padding rows are
// never observable.
//
// # Contract
//
// The result buffer must hold at least M×N doubles and the dense operand
// K×N, both row-major. CSR structural well-formedness (row pointer
// monotonicity, column index range) and buffer sizes are not validated;
// violating them is undefined behavior. Failures during Init are reported
// as a nil handle with a diagnostic on standard error; a nil handle passed
// to Execute or Cleanup is a logged (respectively silent) no-op. A handle
// must be cleaned up exactly once and not used afterwards.
//
// Handles are not safe for concurrent Execute calls: the scratch buffer
// and kernel execution state are mutated without synchronization.
// Independent handles on independent goroutines are fine.
package spreg
