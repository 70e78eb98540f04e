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
	"cmp"
	"maps"
	"slices"
)

// Set is a map-backed set of comparable values.
type Set[T comparable] map[T]struct{}

// SetOf creates a Set holding the given elements.
func SetOf[T comparable](elems ...T) Set[T] {
	return make(Set[T], len(elems)).AddSlice(elems)
}

// FindDuplicates returns the elements that appear more than once in slice, or
// nil if there are none. The order follows the second occurrence of each.
func FindDuplicates[S ~[]T, T comparable](slice S) S {
	var result S
	seen := make(Set[T])
	for _, elem := range slice {
		if seen.Contains(elem) {
			result = append(result, elem)
		} else {
			seen.Add(elem)
		}
	}
	return result
}

// Add inserts elem and returns the Set to allow chaining.
func (s Set[T]) Add(elem T) Set[T] {
	s[elem] = struct{}{}
	return s
}

// AddSlice inserts all elems and returns the Set to allow chaining.
func (s Set[T]) AddSlice(elems []T) Set[T] {
	for _, elem := range elems {
		s.Add(elem)
	}
	return s
}

func (s Set[T]) Contains(elem T) bool {
	_, exists := s[elem]
	return exists
}

// Diff returns the elements of s that are not in other.
func (s Set[T]) Diff(other Set[T]) Set[T] {
	diff := make(Set[T])
	for elem := range s {
		if !other.Contains(elem) {
			diff.Add(elem)
		}
	}
	return diff
}

// Intersects reports whether s and other share at least one element.
func (s Set[T]) Intersects(other Set[T]) bool {
	for elem := range s {
		if other.Contains(elem) {
			return true
		}
	}
	return false
}

// Sorted returns the elements in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
