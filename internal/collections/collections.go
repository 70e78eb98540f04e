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


// Package collections holds small generic helpers for slices and a map-backed
// Set used while assembling build settings.
package collections

// MapSlice applies fn to every element of s and returns the results in order.
//
// Example:
//
//	MapSlice([]int{1, 2, 3}, func(x int) string { return fmt.Sprint(x) })
//	=> []string{"1", "2", "3"}
func MapSlice[TSlice ~[]T, T, V any](s TSlice, fn func(T) V) []V {
	result := make([]V, 0, len(s))
	for _, elem := range s {
		result = append(result, fn(elem))
	}
	return result
}

// FilterSlice returns the elements of s for which predicate is true, keeping
// their order. The input slice is not modified.
//
// Example:
//
//	FilterSlice([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 })
//	=> []int{2, 4}
func FilterSlice[TSlice ~[]T, T any](s TSlice, predicate func(T) bool) TSlice {
	result := make(TSlice, 0, len(s))
	for _, elem := range s {
		if predicate(elem) {
			result = append(result, elem)
		}
	}
	return result
}

// Uniq returns s without repeated elements, keeping the first occurrence of
// each. Architecture and SDK lists keep their authored order this way.
//
// Example:
//
//	Uniq([]string{"arm64", "x86_64", "arm64"})
//	=> []string{"arm64", "x86_64"}
func Uniq[TSlice ~[]T, T comparable](s TSlice) TSlice {
	seen := make(Set[T], len(s))
	return FilterSlice(s, func(elem T) bool {
		if seen.Contains(elem) {
			return false
		}
		seen.Add(elem)
		return true
	})
}
