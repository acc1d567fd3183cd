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
	"strconv"
	"strings"
)

// A mapping describes how nonzero patterns are grouped into register-tile
// nano-kernels. Mappings are identified by short hash strings, matching the
// identifiers produced by the offline pattern-mining step.
type mapping struct {
	name       string
	tileHeight int // M_r: sparse rows per register tile
}

// mappings is the registry of known pattern mappings. The identity mapping
// executes each nonzero pattern directly without merging.
var mappings = map[string]mapping{
	"61fee": {name: "identity_m4", tileHeight: 4},
	"da01e": {name: "identity_m8", tileHeight: 8},
	"400fa": {name: "orig_m4", tileHeight: 4},
}

// archVectorBits lists the vector widths accepted per architecture token.
var archVectorBits = map[string][]int{
	"AVX512": {512, 256, 128},
	"AVX2":   {256, 128},
	"SSE2":   {128},
	"NEON":   {128},
	"scalar": {64},
}

// MappingTileHeight returns the register-tile height (M_r) of a mapping.
func MappingTileHeight(mappingID string) (int, error) {
	m, ok := mappings[mappingID]
	if !ok {
		return 0, fmt.Errorf("kernel: unknown mapping %q", mappingID)
	}
	return m.tileHeight, nil
}

// ResolveExecutor resolves a (mapping, architecture, vector width) triple to
// an executor identifier. nr selects the minor tile width (vector registers
// of B columns per tile); nr == -1 auto-selects based on the vector width.
//
// The returned identifier has the form "<mapping>_<arch>_<bits>_<nr>", e.g.
// "61fee_AVX512_512_4".
func ResolveExecutor(mappingID, arch string, vectorBits, nr int) (string, error) {
	m, ok := mappings[mappingID]
	if !ok {
		return "", fmt.Errorf("kernel: unknown mapping %q", mappingID)
	}
	widths, ok := archVectorBits[arch]
	if !ok {
		return "", fmt.Errorf("kernel: unknown architecture %q", arch)
	}
	valid := false
	for _, w := range widths {
		if w == vectorBits {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("kernel: %d-bit vectors not available for %s", vectorBits, arch)
	}

	if nr == -1 {
		nr = autoMinorWidth(vectorBits)
	}
	switch nr {
	case 1, 2, 4, 6:
	default:
		return "", fmt.Errorf("kernel: unsupported minor tile width %d", nr)
	}

	return fmt.Sprintf("%s_%s_%d_%d", m.name, arch, vectorBits, nr), nil
}

// autoMinorWidth picks N_r for a vector width. Wide registers already cover
// many B columns per register, so fewer registers per tile are needed to
// hide FMA latency.
func autoMinorWidth(vectorBits int) int {
	if vectorBits >= 512 {
		return 4
	}
	return 6
}

// executorSpec is the parsed form of an executor identifier.
type executorSpec struct {
	mappingName string
	arch        string
	vectorBits  int
	nr          int
}

// vecLanes returns the number of float64 lanes per vector register.
func (e *executorSpec) vecLanes() int {
	lanes := e.vectorBits / 64
	if lanes < 1 {
		lanes = 1
	}
	return lanes
}

func parseExecutorID(id string) (executorSpec, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 4 {
		return executorSpec{}, fmt.Errorf("kernel: malformed executor id %q", id)
	}
	// The mapping name may itself contain underscores; arch/bits/nr are the
	// last three fields.
	bits, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return executorSpec{}, fmt.Errorf("kernel: malformed executor id %q: %v", id, err)
	}
	nr, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return executorSpec{}, fmt.Errorf("kernel: malformed executor id %q: %v", id, err)
	}
	return executorSpec{
		mappingName: strings.Join(parts[:len(parts)-3], "_"),
		arch:        parts[len(parts)-3],
		vectorBits:  bits,
		nr:          nr,
	}, nil
}
