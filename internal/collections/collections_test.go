// Copyright 2025 EngFlow Inc. All rights reserved.
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


package collections

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []string{"arm64e", "arm64", "x86_64"}, Uniq([]string{"arm64e", "arm64", "arm64e", "x86_64", "arm64"}))
	assert.Empty(t, Uniq([]string(nil)))
}

func TestFindDuplicates(t *testing.T) {
	assert.Nil(t, FindDuplicates([]string{"a", "b"}))
	assert.Equal(t, []string{"b", "a"}, FindDuplicates([]string{"a", "b", "b", "a", "c"}))
}

func TestSetOperations(t *testing.T) {
	s := SetOf("macosx", "iphoneos")
	assert.True(t, s.Contains("macosx"))
	assert.False(t, s.Contains("watchos"))
	assert.True(t, s.Intersects(SetOf("iphoneos", "appletvos")))
	assert.False(t, s.Intersects(SetOf("appletvos")))
	assert.Equal(t, []string{"macosx"}, Sorted(s.Diff(SetOf("iphoneos"))))
}

func ExampleMapSlice() {
	result := MapSlice([]int{1, 2, 3}, func(x int) string { return fmt.Sprint(x) })
	fmt.Println(result)
	// Output: [1 2 3]
}

func ExampleFilterSlice() {
	result := FilterSlice([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 })
	fmt.Println(result)
	// Output: [2 4]
}

func ExampleUniq() {
	fmt.Println(Uniq([]string{"arm64", "x86_64", "arm64"}))
	// Output: [arm64 x86_64]
}
