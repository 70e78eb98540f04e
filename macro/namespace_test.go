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

package macro

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareIsIdempotent(t *testing.T) {
	ns := NewNamespace("test", nil)
	first, err := ns.Declare("ARCHS", StringList)
	require.NoError(t, err)
	second, err := ns.Declare("ARCHS", StringList)
	require.NoError(t, err)
	assert.Same(t, first, second)

	userDefined, err := ns.Declare("ARCHS", UserDefined)
	require.NoError(t, err)
	assert.Same(t, first, userDefined)
}

func TestDeclareConflict(t *testing.T) {
	ns := NewNamespace("test", nil)
	_, err := ns.Declare("ONLY_ACTIVE_ARCH", Boolean)
	require.NoError(t, err)
	_, err = ns.Declare("ONLY_ACTIVE_ARCH", String)
	var dup *DuplicateDeclarationError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, `macro "ONLY_ACTIVE_ARCH" declared with conflicting types boolean and string`, err.Error())
}

func TestDeclareFallsThroughToParent(t *testing.T) {
	builtin := NewNamespace("builtin", nil)
	sdkroot := builtin.MustDeclare("SDKROOT", String)
	workspace := NewNamespace("workspace", builtin)

	assert.Same(t, sdkroot, workspace.Lookup("SDKROOT"))
	assert.Same(t, sdkroot, workspace.LookupOrDeclare("SDKROOT"))
	_, err := workspace.Declare("SDKROOT", PathList)
	assert.Error(t, err)

	custom := workspace.LookupOrDeclare("MY_SETTING")
	assert.Equal(t, UserDefined, custom.Kind)
	assert.True(t, workspace.Owns("MY_SETTING"))
	assert.Nil(t, builtin.Lookup("MY_SETTING"))
}

func TestConcurrentConflictingDeclarations(t *testing.T) {
	for range 20 {
		ns := NewNamespace("race", nil)
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, kind := range []Kind{String, Boolean} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = ns.Declare("RACY", kind)
			}()
		}
		wg.Wait()

		var failures []error
		for _, err := range errs {
			if err != nil {
				failures = append(failures, err)
			}
		}
		require.Len(t, failures, 1)
		assert.Equal(t, `macro "RACY" declared with conflicting types boolean and string`, failures[0].Error())
	}
}
