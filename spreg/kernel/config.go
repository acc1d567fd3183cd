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

// TilingStrategy selects how cache tile sizes are derived during inspection.
type TilingStrategy int

const (
	// ManualTiling uses the MC/KC/NC values from the config as-is.
	ManualTiling TilingStrategy = iota

	// CakeTiling derives tile sizes from cache capacity (CAKE-style
	// analytical blocking), starting from the configured values.
	CakeTiling

	// CakeTilingTLBCompensation is CakeTiling with the N-dimension tile
	// additionally capped so one tile's pages fit the TLB.
	CakeTilingTLBCompensation
)

func (s TilingStrategy) String() string {
	switch s {
	case ManualTiling:
		return "manual"
	case CakeTiling:
		return "cake"
	case CakeTilingTLBCompensation:
		return "cake+tlb"
	default:
		return "unknown"
	}
}

// Schedule is the runtime loop order over the cache tiles.
type Schedule int

const (
	// ScheduleNKM iterates N outermost, then K, then M (row panels
	// innermost). This is the row-major-output-friendly default.
	ScheduleNKM Schedule = iota

	// ScheduleKNM iterates K outermost.
	ScheduleKNM
)

func (s Schedule) String() string {
	switch s {
	case ScheduleNKM:
		return "NKM"
	case ScheduleKNM:
		return "KNM"
	default:
		return "unknown"
	}
}

// TileConfig carries the cache-tiling and runtime parameters for one
// executor. It is an immutable value assembled by the caller; the kernel
// never mutates it and holds its own copy.
type TileConfig struct {
	// Cache tile sizes: rows of A per M tile, columns of A (rows of B)
	// per K tile, columns of B per N tile.
	MC, KC, NC int

	Strategy TilingStrategy

	// TLB model used by CakeTilingTLBCompensation.
	MaxTLBEntries int
	TLBPageSize   int

	// SparseA marks the left operand as sparse (packed panels). The
	// reference executor only supports sparse A.
	SparseA bool

	// Beta scales the existing output before accumulation, as in
	// C = A*B + beta*C. Only beta == 1 is supported by the reference
	// executor (pure accumulation).
	Beta float64

	Schedule Schedule
}

// effectiveNC returns the N tile width after TLB compensation, clamped
// to at least one vector of doubles.
func (cfg *TileConfig) effectiveNC(vecLanes int) int {
	nc := cfg.NC
	if cfg.Strategy == CakeTilingTLBCompensation && cfg.MaxTLBEntries > 0 && cfg.TLBPageSize > 0 {
		// One output row strip touches KC+1 pages per NC doubles; cap NC
		// so a full strip's pages stay within the TLB budget.
		maxDoubles := cfg.MaxTLBEntries * cfg.TLBPageSize / 8
		if nc > maxDoubles {
			nc = maxDoubles
		}
	}
	if nc < vecLanes {
		nc = vecLanes
	}
	return nc
}
