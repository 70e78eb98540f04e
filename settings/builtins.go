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

import (
	"errors"

	"github.com/EngFlow/buildsettings/macro"
)

// builtinMacros are declared in the core namespace before any settings are built.
var builtinMacros = []macro.Declaration{
	{Name: "ACTION", Kind: macro.String},
	{Name: "CONFIGURATION", Kind: macro.String},
	{Name: "PROJECT_NAME", Kind: macro.String},
	{Name: "PROJECT_GUID", Kind: macro.String},
	{Name: "PROJECT_DIR", Kind: macro.Path},
	{Name: "SRCROOT", Kind: macro.Path},
	{Name: "TARGET_NAME", Kind: macro.String},
	{Name: "TARGET_GUID", Kind: macro.String},
	{Name: "PRODUCT_NAME", Kind: macro.String},
	{Name: "PRODUCT_TYPE", Kind: macro.String},

	{Name: "SDKROOT", Kind: macro.Path},
	{Name: "SDK_NAME", Kind: macro.String},
	{Name: "SDK_NAMES", Kind: macro.StringList},
	{Name: "SDK_DIR", Kind: macro.Path},
	{Name: "SDK_VERSION", Kind: macro.String},
	{Name: "SDK_PRODUCT_BUILD_VERSION", Kind: macro.String},
	{Name: "SDK_VARIANT", Kind: macro.String},
	{Name: "ADDITIONAL_SDKS", Kind: macro.PathList},
	{Name: "ADDITIONAL_SDK_DIRS", Kind: macro.PathList},
	{Name: "SUPPORTED_PLATFORMS", Kind: macro.StringList},
	{Name: "PLATFORM_NAME", Kind: macro.String},
	{Name: "PLATFORM_DIR", Kind: macro.Path},
	{Name: "PLATFORM_DISPLAY_NAME", Kind: macro.String},
	{Name: "PLATFORM_FAMILY_NAME", Kind: macro.String},
	{Name: "PLATFORM_PREFERRED_ARCH", Kind: macro.String},
	{Name: "EFFECTIVE_PLATFORM_NAME", Kind: macro.String},
	{Name: "DEPLOYMENT_TARGET_SETTING_NAME", Kind: macro.String},
	{Name: "TOOLCHAINS", Kind: macro.StringList},
	{Name: "TOOLCHAIN_DIR", Kind: macro.Path},

	{Name: "ARCHS", Kind: macro.StringList},
	{Name: "ARCHS_STANDARD", Kind: macro.StringList},
	{Name: "VALID_ARCHS", Kind: macro.StringList},
	{Name: "EXCLUDED_ARCHS", Kind: macro.StringList},
	{Name: "ONLY_ACTIVE_ARCH", Kind: macro.Boolean},
	{Name: "NATIVE_ARCH", Kind: macro.String},
	{Name: "CURRENT_ARCH", Kind: macro.String},
	{Name: "BUILD_VARIANTS", Kind: macro.StringList},
	{Name: "CURRENT_VARIANT", Kind: macro.String},
	{Name: "__POPULATE_COMPATIBILITY_ARCH_MAP", Kind: macro.Boolean},

	{Name: "MACOSX_DEPLOYMENT_TARGET", Kind: macro.String},
	{Name: "IPHONEOS_DEPLOYMENT_TARGET", Kind: macro.String},
	{Name: "TVOS_DEPLOYMENT_TARGET", Kind: macro.String},
	{Name: "WATCHOS_DEPLOYMENT_TARGET", Kind: macro.String},
	{Name: "SUPPORTS_MACCATALYST", Kind: macro.Boolean},
	{Name: "IS_ZIPPERED", Kind: macro.Boolean},

	{Name: "CODE_SIGN_IDENTITY", Kind: macro.String},
	{Name: "CODE_SIGN_ENTITLEMENTS", Kind: macro.Path},
	{Name: "CODE_SIGNING_ALLOWED", Kind: macro.Boolean},
	{Name: "CODE_SIGNING_REQUIRED", Kind: macro.Boolean},
	{Name: "AD_HOC_CODE_SIGNING_ALLOWED", Kind: macro.Boolean},
	{Name: "EXPANDED_CODE_SIGN_IDENTITY", Kind: macro.String},
	{Name: "EXPANDED_CODE_SIGN_IDENTITY_NAME", Kind: macro.String},
	{Name: "EXPANDED_PROVISIONING_PROFILE", Kind: macro.String},
	{Name: "PROVISIONING_PROFILE_PATH", Kind: macro.Path},

	{Name: "DEPLOYMENT_LOCATION", Kind: macro.Boolean},
	{Name: "DEPLOYMENT_POSTPROCESSING", Kind: macro.Boolean},
	{Name: "SYMROOT", Kind: macro.Path},
	{Name: "OBJROOT", Kind: macro.Path},
	{Name: "DSTROOT", Kind: macro.Path},
	{Name: "BUILD_DIR", Kind: macro.Path},
	{Name: "BUILT_PRODUCTS_DIR", Kind: macro.Path},
	{Name: "CONFIGURATION_BUILD_DIR", Kind: macro.Path},
	{Name: "PROJECT_TEMP_DIR", Kind: macro.Path},
	{Name: "CONFIGURATION_TEMP_DIR", Kind: macro.Path},
	{Name: "TARGET_TEMP_DIR", Kind: macro.Path},
	{Name: "SHARED_PRECOMPS_DIR", Kind: macro.Path},
	{Name: "INDEX_DATA_STORE_DIR", Kind: macro.Path},
	{Name: "INDEX_ENABLE_DATA_STORE", Kind: macro.Boolean},
}

// builtinDefaults form the bottom of every table.
var builtinDefaults = macro.DictOf(
	"ARCHS", "$(ARCHS_STANDARD)",
	"ONLY_ACTIVE_ARCH", "NO",
	"BUILD_VARIANTS", "normal",
	"CODE_SIGNING_ALLOWED", "YES",
	"CODE_SIGNING_REQUIRED", "YES",
	"AD_HOC_CODE_SIGNING_ALLOWED", "NO",
	"DEPLOYMENT_LOCATION", "NO",
	"DEPLOYMENT_POSTPROCESSING", "NO",
	"SYMROOT", "$(PROJECT_DIR)/build",
	"OBJROOT", "$(SYMROOT)",
	"DSTROOT", "/tmp/$(PROJECT_NAME).dst",
	"BUILD_DIR", "$(SYMROOT)",
	"CONFIGURATION_BUILD_DIR", "$(BUILD_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)",
	"BUILT_PRODUCTS_DIR", "$(CONFIGURATION_BUILD_DIR)",
	"PROJECT_TEMP_DIR", "$(OBJROOT)/$(PROJECT_NAME).build",
	"CONFIGURATION_TEMP_DIR", "$(PROJECT_TEMP_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)",
	"TARGET_TEMP_DIR", "$(CONFIGURATION_TEMP_DIR)/$(TARGET_NAME).build",
	"SHARED_PRECOMPS_DIR", "$(OBJROOT)/SharedPrecompiledHeaders",
)

func declareBuiltins(ns *macro.Namespace) error {
	var errs []error
	for _, decl := range builtinMacros {
		if _, err := ns.Declare(decl.Name, decl.Kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
