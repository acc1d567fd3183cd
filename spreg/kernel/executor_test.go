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

import "testing"

func TestResolveExecutor(t *testing.T) {
	id, err := ResolveExecutor("61fee", "AVX512", 512, -1)
	if err != nil {
		t.Fatalf("ResolveExecutor: %v", err)
	}
	if id != "identity_m4_AVX512_512_4" {
		t.Errorf("id = %q, want identity_m4_AVX512_512_4", id)
	}

	id, err = ResolveExecutor("61fee", "AVX2", 256, -1)
	if err != nil {
		t.Fatalf("ResolveExecutor: %v", err)
	}
	if id != "identity_m4_AVX2_256_6" {
		t.Errorf("id = %q, want identity_m4_AVX2_256_6 (auto N_r narrows with vectors)", id)
	}

	if _, err := ResolveExecutor("61fee", "AVX512", 512, 6); err != nil {
		t.Errorf("explicit N_r=6 rejected: %v", err)
	}
}

func TestResolveExecutorErrors(t *testing.T) {
	cases := []struct {
		name           string
		mapping, arch  string
		vectorBits, nr int
	}{
		{"unknown mapping", "beef1", "AVX512", 512, -1},
		{"unknown arch", "61fee", "RVV", 512, -1},
		{"width not available", "61fee", "AVX2", 512, -1},
		{"bad minor width", "61fee", "AVX512", 512, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ResolveExecutor(c.mapping, c.arch, c.vectorBits, c.nr); err == nil {
				t.Errorf("ResolveExecutor(%q, %q, %d, %d) succeeded, want error",
					c.mapping, c.arch, c.vectorBits, c.nr)
			}
		})
	}
}

func TestParseExecutorID(t *testing.T) {
	spec, err := parseExecutorID("identity_m4_AVX512_512_4")
	if err != nil {
		t.Fatalf("parseExecutorID: %v", err)
	}
	if spec.mappingName != "identity_m4" || spec.arch != "AVX512" ||
		spec.vectorBits != 512 || spec.nr != 4 {
		t.Errorf("parsed %+v", spec)
	}
	if spec.vecLanes() != 8 {
		t.Errorf("vecLanes = %d, want 8 doubles per 512-bit register", spec.vecLanes())
	}

	for _, bad := range []string{"", "x", "a_b_c_d", "identity_m4_AVX512_512_x"} {
		if _, err := parseExecutorID(bad); err == nil {
			t.Errorf("parseExecutorID(%q) succeeded, want error", bad)
		}
	}
}

func TestMappingTileHeight(t *testing.T) {
	th, err := MappingTileHeight("61fee")
	if err != nil || th != 4 {
		t.Errorf("MappingTileHeight(61fee) = %d, %v; want 4, nil", th, err)
	}
	th, err = MappingTileHeight("da01e")
	if err != nil || th != 8 {
		t.Errorf("MappingTileHeight(da01e) = %d, %v; want 8, nil", th, err)
	}
	if _, err := MappingTileHeight("nope"); err == nil {
		t.Errorf("unknown mapping accepted")
	}
}

func TestHostDispatch(t *testing.T) {
	// Smoke test: detection ran and produced a consistent triple.
	t.Logf("level=%v arch=%s bits=%d", HostLevel(), HostArch(), HostVectorBits())
	if HostVectorBits() <= 0 {
		t.Errorf("HostVectorBits() = %d", HostVectorBits())
	}
	if HostArch() == "" {
		t.Errorf("HostArch() empty")
	}
}
