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

// Package mem provides alignment-constrained buffer allocation for kernel
// scratch space. SIMD kernels and cache-line-sensitive code paths require
// buffers whose backing array starts on a 64-byte boundary; Go's allocator
// only guarantees element alignment, so aligned slices are obtained by
// over-allocating and re-slicing.
package mem

import "unsafe"

const (
	// CacheLineSize is the cache line size assumed throughout, in bytes.
	CacheLineSize = 64

	// KernelAlign is the alignment required by the SpMM execution kernels.
	// 64 bytes covers both AVX-512 vector loads and cache-line boundaries.
	KernelAlign = 64
)

// IsAligned reports whether addr falls on an align-byte boundary.
// align must be a power of two.
func IsAligned(addr uintptr, align int) bool {
	return addr&uintptr(align-1) == 0
}

// AlignSize rounds size up to the next multiple of align.
// align must be a power of two.
func AlignSize(size, align int) int {
	return (size + align - 1) &^ (align - 1)
}

// AlignedFloat64 allocates a float64 slice of length n whose backing array
// is aligned to align bytes. Returns nil if n <= 0.
//
// The returned slice has len == cap == n; appending to it would reallocate
// and lose the alignment guarantee.
func AlignedFloat64(n, align int) []float64 {
	if n <= 0 {
		return nil
	}
	if align <= 8 {
		// Go guarantees 8-byte alignment for float64 allocations.
		return make([]float64, n)
	}

	pad := align / 8
	buf := make([]float64, n+pad)

	addr := uintptr(unsafe.Pointer(&buf[0]))
	off := 0
	if mod := addr & uintptr(align-1); mod != 0 {
		off = (align - int(mod)) / 8
	}
	return buf[off : off+n : off+n]
}

// AlignedInt32 allocates an int32 slice of length n whose backing array is
// aligned to align bytes. Returns nil if n <= 0.
func AlignedInt32(n, align int) []int32 {
	if n <= 0 {
		return nil
	}
	if align <= 4 {
		return make([]int32, n)
	}

	pad := align / 4
	buf := make([]int32, n+pad)

	addr := uintptr(unsafe.Pointer(&buf[0]))
	off := 0
	if mod := addr & uintptr(align-1); mod != 0 {
		off = (align - int(mod)) / 4
	}
	return buf[off : off+n : off+n]
}

// Addr returns the address of the first element of s, or 0 for an empty slice.
func Addr(s []float64) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}
