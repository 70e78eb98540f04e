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

package settings

import "github.com/EngFlow/buildsettings/macro"

const adHocIdentity = "-"

// validateSigning checks that the code signing configuration of a target can produce a
// valid product for its platform and SDK.
func (c *construction) validateSigning(scope *macro.Scope) {
	s := c.s
	if s.Target == nil || s.ProductType == nil || s.SDK == nil || s.Platform == nil {
		return
	}
	pt, sdk := s.ProductType, s.SDK

	identity := c.value(scope, "CODE_SIGN_IDENTITY")
	hasEntitlements := c.value(scope, "CODE_SIGN_ENTITLEMENTS") != ""
	if p := c.params.Provisioning; p != nil {
		if p.IdentityHash != "" {
			identity = p.IdentityHash
		}
		hasEntitlements = hasEntitlements || len(p.SignedEntitlements) > 0
	}

	if !c.flag(scope, "CODE_SIGNING_ALLOWED") {
		if hasEntitlements {
			c.warningf("entitlements are requested, but the product will not be signed because CODE_SIGNING_ALLOWED is NO")
		}
		return
	}

	if pt.RequiresEntitlements(s.Platform.Name) && !hasEntitlements {
		c.errorf("entitlements required: product type '%s' must be signed with entitlements for sdk '%s'",
			pt.Identifier, sdk.CanonicalName)
	}

	adHocAllowed := c.flag(scope, "AD_HOC_CODE_SIGNING_ALLOWED") && !sdk.DisallowsAdHocSigning
	switch {
	case identity == adHocIdentity && sdk.DisallowsAdHocSigning:
		c.errorf("ad-hoc code signing is not allowed with sdk '%s'", sdk.CanonicalName)
	case identity == "" && c.flag(scope, "CODE_SIGNING_REQUIRED") && !adHocAllowed:
		c.errorf("product type '%s' requires a code signing identity for sdk '%s'; set CODE_SIGN_IDENTITY",
			pt.Identifier, sdk.CanonicalName)
	}
}
