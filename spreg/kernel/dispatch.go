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
	"runtime"

	"golang.org/x/sys/cpu"
)

// DispatchLevel identifies the widest vector ISA detected on the host.
type DispatchLevel int

const (
	LevelScalar DispatchLevel = iota
	LevelSSE2
	LevelNEON
	LevelAVX2
	LevelAVX512
)

var (
	currentLevel DispatchLevel
	currentBits  int
	currentName  string
)

func init() {
	detectHost()
}

func detectHost() {
	switch runtime.GOARCH {
	case "amd64":
		switch {
		case cpu.X86.HasAVX512F && cpu.X86.HasAVX512DQ:
			currentLevel, currentBits, currentName = LevelAVX512, 512, "AVX512"
		case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
			currentLevel, currentBits, currentName = LevelAVX2, 256, "AVX2"
		default:
			// SSE2 is baseline for all amd64.
			currentLevel, currentBits, currentName = LevelSSE2, 128, "SSE2"
		}
	case "arm64":
		// NEON (ASIMD) is baseline for all arm64.
		currentLevel, currentBits, currentName = LevelNEON, 128, "NEON"
	default:
		currentLevel, currentBits, currentName = LevelScalar, 64, "scalar"
	}
}

// HostLevel returns the detected vector ISA level of this machine.
func HostLevel() DispatchLevel { return currentLevel }

// HostVectorBits returns the vector register width of the detected level,
// in bits.
func HostVectorBits() int { return currentBits }

// HostArch returns the architecture token for the detected level, in the
// form used inside executor identifiers ("AVX512", "AVX2", "SSE2", "NEON",
// "scalar").
func HostArch() string { return currentName }
