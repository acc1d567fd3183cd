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

// Package kernel implements a sparse-register-tiling SpMM executor:
// sparse matrix × dense matrix multiplication where the sparse operand is
// inspected and packed once into register-tile panels, then reused across
// many executions against different dense operands.
//
// The lifecycle mirrors inspector/executor sparse libraries:
//
//	mm, err := kernel.New(m, k, n, values, rowPtr, colIdx, cfg,
//	    threads, executorID, mappingID, true)
//	if err != nil { ... }
//	defer mm.Release()
//
//	if err := mm.AllocateExecutor(n); err != nil { ... }
//	mm.Invoke(c, b) // c += A * b
//
// # Row padding
//
// The packer always rounds the row count up by a full register tile, even
// when it is already tile-aligned: for tile height T, the packed form has
// M + (T - M mod T) rows. Execution stores complete row tiles, so the output
// buffer passed to Invoke must have PaddedRows() × N elements, not M × N.
// Callers that need an exactly M×N result should go through the spreg
// package, which manages the padded buffer.
//
// # Accumulation
//
// Invoke accumulates (c += A*b); it never clears c. Zero the buffer before
// the first call if an overwrite is wanted.
package kernel
