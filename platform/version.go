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

import (
	"strings"

	"golang.org/x/mod/semver"
)

// semverOf turns an OS version such as "13.0" into the "v13.0" form understood by semver.
// It returns "" for strings that are not versions.
func semverOf(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// IsVersion reports whether version is a dotted numeric version with at most three parts.
func IsVersion(version string) bool { return semverOf(version) != "" }

// CompareVersions compares OS versions numerically, so "10.15" > "10.9". Invalid versions
// sort before valid ones.
func CompareVersions(a, b string) int { return semver.Compare(semverOf(a), semverOf(b)) }

// VersionInRange reports whether version lies in [minimum, maximum]. Empty bounds are open.
func VersionInRange(version, minimum, maximum string) bool {
	if minimum != "" && CompareVersions(version, minimum) < 0 {
		return false
	}
	if maximum != "" && CompareVersions(version, maximum) > 0 {
		return false
	}
	return true
}
