// Copyright 2026 EngFlow Inc. All rights reserved.
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

package platform

import "slices"

// Architecture names as they appear in ARCHS.
const (
	ArchArm64    = "arm64"
	ArchArm64e   = "arm64e"
	ArchArm64_32 = "arm64_32"
	ArchArmv7k   = "armv7k"
	ArchI386     = "i386"
	ArchX86_64   = "x86_64"
	ArchX86_64h  = "x86_64h"
)

var archAlias = map[string]string{
	"aarch64": ArchArm64,
	"amd64":   ArchX86_64,
}

var allKnownArchs = []string{
	ArchArm64, ArchArm64e, ArchArm64_32, ArchArmv7k, ArchI386, ArchX86_64, ArchX86_64h,
}

// defaultCompatibilityArchs lists, for each architecture, the architectures whose binaries it
// can run in preference order. Platforms may replace the table.
var defaultCompatibilityArchs = map[string][]string{
	ArchArm64e:  {ArchArm64},
	ArchX86_64h: {ArchX86_64},
}

// CanonicalArch maps common aliases such as "aarch64" to the spelling used in ARCHS.
func CanonicalArch(arch string) string {
	if dealiased, exists := archAlias[arch]; exists {
		return dealiased
	}
	return arch
}

// IsKnownArch reports whether arch is one of the architectures modelled here.
func IsKnownArch(arch string) bool { return slices.Contains(allKnownArchs, CanonicalArch(arch)) }

// CompatibilityArchs returns the fallback architectures for arch on this platform.
func (p *Platform) CompatibilityArchs(arch string) []string {
	arch = CanonicalArch(arch)
	if p != nil && p.CompatibilityArchMap != nil {
		return p.CompatibilityArchMap[arch]
	}
	return defaultCompatibilityArchs[arch]
}
