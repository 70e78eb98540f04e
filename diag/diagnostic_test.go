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

package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	testCases := []struct {
		diagnostic Diagnostic
		expected   string
	}{
		{
			diagnostic: Errorf(Location{Path: "a.xcconfig", Line: 3}, "missing %q", "b.xcconfig"),
			expected:   `a.xcconfig:3: error: missing "b.xcconfig"`,
		},
		{
			diagnostic: Warningf(Location{Path: "a.xcconfig"}, "odd"),
			expected:   "a.xcconfig: warning: odd",
		},
		{
			diagnostic: Notef(Unknown, "hello"),
			expected:   "note: hello",
		},
		{
			diagnostic: Diagnostic{Behavior: Warning, Message: "cycle", Details: []string{"a includes b", "b includes a"}},
			expected:   "warning: cycle\n    a includes b\n    b includes a",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.diagnostic.String())
	}
}

func TestListFiltering(t *testing.T) {
	var list List
	list.Notef(Unknown, "n1")
	list.Warningf(Unknown, "w1")
	list.Errorf(Unknown, "e1")
	list.Warningf(Unknown, "w2")

	assert.True(t, list.HasErrors())
	assert.Equal(t, []string{"w1", "w2"}, list.Messages(Warning))
	assert.Equal(t, []string{"e1"}, list.Messages(Error))
	assert.Len(t, list.Filter(Note), 1)
	assert.False(t, list.Filter(Warning).HasErrors())
}
