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
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/EngFlow/buildsettings/diag"
	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
	"github.com/EngFlow/buildsettings/project"
	"github.com/EngFlow/buildsettings/xcconfig"
)

// Builder computes Settings for the projects of one workspace. It is safe for concurrent
// use once configured.
type Builder struct {
	core      *platform.Core
	workspace *project.Workspace
	namespace *macro.Namespace
	loader    *xcconfig.Loader
	logger    *log.Logger

	// Preferences are user-wide settings layered between project and target settings.
	Preferences macro.Dict
}

// NewBuilder declares the built-in macros in the core namespace and creates a workspace
// namespace below it. The workspace supplies the targets whose imparted properties are
// applied; it may be nil. A nil fsys reads the local file system.
func NewBuilder(core *platform.Core, workspace *project.Workspace, fsys xcconfig.FileSystem) (*Builder, error) {
	if err := declareBuiltins(core.Namespace()); err != nil {
		return nil, fmt.Errorf("declaring built-in settings: %w", err)
	}
	ns := macro.NewNamespace("workspace", core.Namespace())
	loader := xcconfig.NewLoader(fsys, ns)
	loader.DeveloperDir = core.DeveloperDir()
	return &Builder{core: core, workspace: workspace, namespace: ns, loader: loader}, nil
}

// SetLogger enables tracing of settings construction and configuration file loading. It
// must be called before the Builder is used.
func (b *Builder) SetLogger(l *log.Logger) {
	b.logger = l
	b.loader.Logger = l
}

func (b *Builder) Namespace() *macro.Namespace { return b.namespace }

func (b *Builder) Loader() *xcconfig.Loader { return b.loader }

func (b *Builder) logf(format string, args ...any) {
	if b.logger != nil {
		b.logger.Printf(format, args...)
	}
}

// Build computes the settings of target, or of proj alone when target is nil.
//
// Misconfiguration is reported through the diagnostics of the returned Settings. An error
// is returned only for unusable inputs.
func (b *Builder) Build(proj *project.Project, target *project.Target, params Parameters, purpose Purpose) (*Settings, error) {
	switch {
	case proj == nil:
		return nil, errors.New("building settings: no project")
	case target != nil && target.Project() != proj:
		return nil, fmt.Errorf("building settings: target %q is not part of project %q", target.Name, proj.Name)
	case !params.action().valid():
		return nil, fmt.Errorf("building settings: unknown action %q", params.Action)
	}

	c := &construction{
		builder: b,
		params:  params,
		purpose: purpose,
		s: &Settings{
			Project:    proj,
			Target:     target,
			Parameters: params,
			Purpose:    purpose,
			loader:     b.loader,
		},
	}
	b.logf("settings: building %s for %s", c.subject(), purpose)
	c.run()
	return c.s, nil
}

// construction holds the state of one Build call.
type construction struct {
	builder *Builder
	params  Parameters
	purpose Purpose
	s       *Settings

	configName    string
	projectConfig *project.BuildConfiguration
	targetConfig  *project.BuildConfiguration

	// Authored layers, loaded once and pushed both into the provisional and the final table.
	environment     *macro.Table
	projectXCConfig *macro.Table
	projectSettings *macro.Table
	preferences     *macro.Table
	targetXCConfig  *macro.Table
	targetSettings  *macro.Table
	imparted        *macro.Table
	overrides       []*macro.Table

	bindings macro.Bindings
	arena    collections.Set[string]
	// reportedCycles holds keys of macro cycles already diagnosed.
	reportedCycles map[string]bool
}

func (c *construction) subject() string {
	if c.s.Target != nil {
		return c.s.Target.Name
	}
	return c.s.Project.Name
}

func (c *construction) ns() *macro.Namespace { return c.builder.namespace }

func (c *construction) decl(name string) *macro.Declaration { return c.ns().LookupOrDeclare(name) }

func (c *construction) errorf(format string, args ...any) {
	c.s.diagnostics.Errorf(diag.Unknown, "%s: %s", c.subject(), fmt.Sprintf(format, args...))
}

func (c *construction) warningf(format string, args ...any) {
	c.s.diagnostics.Warningf(diag.Unknown, "%s: %s", c.subject(), fmt.Sprintf(format, args...))
}

func (c *construction) notef(format string, args ...any) {
	c.s.diagnostics.Notef(diag.Unknown, "%s: %s", c.subject(), fmt.Sprintf(format, args...))
}

// value evaluates a setting read during construction. A macro cycle is reported as an error,
// once per distinct cycle, and the setting reads as empty.
func (c *construction) value(scope *macro.Scope, name string) string {
	v, err := scope.Evaluate(name)
	var cycle *macro.CycleError
	switch {
	case errors.As(err, &cycle):
		key := cycleKey(cycle.Chain)
		if c.reportedCycles == nil {
			c.reportedCycles = make(map[string]bool)
		}
		if !c.reportedCycles[key] {
			c.reportedCycles[key] = true
			c.errorf("%v", cycle)
		}
	case err != nil:
		c.errorf("evaluating %s: %v", name, err)
	}
	return v
}

func (c *construction) list(scope *macro.Scope, name string) []string {
	return macro.SplitList(c.value(scope, name))
}

func (c *construction) flag(scope *macro.Scope, name string) bool {
	return macro.ParseBool(c.value(scope, name))
}

// cycleKey identifies a macro cycle independently of the macro it was entered from. chain
// ends with a repeat of its first element.
func cycleKey(chain []string) string {
	nodes := chain[:len(chain)-1]
	if len(nodes) == 0 {
		return ""
	}
	start := slices.Index(nodes, slices.Min(nodes))
	return strings.Join(append(slices.Clone(nodes[start:]), nodes[:start]...), " -> ")
}

func (c *construction) run() {
	c.resolveConfigurations()
	c.loadAuthoredLayers()

	// Collaborators are selected by settings authored in the upper layers, so those are
	// composed once without the lower layers first.
	provisional := macro.NewTable()
	c.pushDict(provisional, builtinDefaults, "built-in defaults")
	c.pushUpperLayers(provisional, nil)
	scope := macro.NewScope(provisional, c.ns(), macro.Bindings{macro.ConfigCondition: {c.configName}})
	c.resolveSDK(scope)
	c.resolveToolchain(scope)
	c.resolveProductType()

	table := macro.NewTable()
	c.pushLowerLayers(table)
	c.s.layers = &layerSnapshots{}
	c.pushUpperLayers(table, c.s.layers)

	c.bindings = c.globalBindings()
	c.pushComputed(table, macro.NewScope(table, c.ns(), c.bindings))
	c.pushArena(table, macro.NewScope(table, c.ns(), c.bindings))
	c.validateSigning(macro.NewScope(table, c.ns(), c.bindings))

	if c.purpose == Build {
		table = table.Bind(c.bindings)
	}
	c.s.table = table
	c.s.scope = macro.NewScope(table, c.ns(), c.bindings)
	c.s.exported, c.s.exportedNative = exportedNames(table, c.builder.core.Namespace(), c.arena)
	c.s.signature = signatureOf(c.s.dependencies)
}

func (c *construction) resolveConfigurations() {
	proj, target := c.s.Project, c.s.Target
	requested := c.params.Configuration
	var found bool
	c.projectConfig, found = proj.Configuration(requested)
	switch {
	case c.projectConfig == nil:
		c.configName = requested
	default:
		c.configName = c.projectConfig.Name
		if requested != "" && !found {
			c.warningf("configuration %q not found, using %q", requested, c.configName)
		}
	}
	if target != nil {
		c.targetConfig, _ = target.Configuration(c.configName)
	}
}

func (c *construction) loadAuthoredLayers() {
	c.environment = c.environmentTable()

	proj := c.s.Project
	if cfg := c.projectConfig; cfg != nil {
		c.projectXCConfig = c.loadConfigFile(proj.ResolvePath(cfg.BaseConfigurationFile))
		c.projectSettings = c.dictTable(cfg.Settings, "project settings")
	}
	c.preferences = c.dictTable(c.builder.Preferences, "preferences")
	if cfg := c.targetConfig; cfg != nil {
		c.targetXCConfig = c.loadConfigFile(proj.ResolvePath(cfg.BaseConfigurationFile))
		c.targetSettings = c.dictTable(cfg.Settings, "target settings")
	}
	c.imparted = c.impartedTable()

	if c.purpose != Build {
		return
	}
	p := c.params
	c.overrides = append(c.overrides,
		c.dictTable(p.Overrides, "overrides"),
		c.dictTable(p.CommandLineOverrides, "command-line overrides"),
		c.configOverrides(p.CommandLineConfigOverrides, p.CommandLineConfigOverridesPath, "command-line config overrides"),
		c.configOverrides(p.EnvironmentConfigOverrides, p.EnvironmentConfigOverridesPath, "environment config overrides"),
	)
}

// configOverrides prefers an already parsed dictionary over reading path.
func (c *construction) configOverrides(dict macro.Dict, path, origin string) *macro.Table {
	if dict != nil || path == "" {
		return c.dictTable(dict, origin)
	}
	return c.loadConfigFile(path)
}

func (c *construction) loadConfigFile(path string) *macro.Table {
	if path == "" {
		return nil
	}
	result := c.builder.loader.Load(path)
	c.s.diagnostics = append(c.s.diagnostics, result.Diagnostics...)
	c.s.dependencies = append(c.s.dependencies, result.Dependencies...)
	return result.Table
}

func (c *construction) dictTable(d macro.Dict, origin string) *macro.Table {
	if len(d) == 0 {
		return nil
	}
	t := macro.NewTable()
	c.pushDict(t, d, origin)
	return t
}

func (c *construction) pushDict(t *macro.Table, d macro.Dict, origin string) {
	if err := d.PushTo(t, c.ns()); err != nil {
		c.warningf("ignoring malformed settings in %s: %v", origin, err)
	}
}

func (c *construction) pushLiteral(t *macro.Table, name, value string) {
	t.PushLiteral(c.decl(name), value)
}

// environmentTable accepts any variable name. Names whose condition suffix does not parse
// are used verbatim.
func (c *construction) environmentTable() *macro.Table {
	if len(c.params.Environment) == 0 {
		return nil
	}
	t := macro.NewTable()
	for _, key := range slices.Sorted(maps.Keys(c.params.Environment)) {
		name, suffix := macro.SplitKey(key)
		conditions, err := macro.ParseConditions(suffix)
		if err != nil {
			name, conditions = key, nil
		}
		if name == "" {
			continue
		}
		t.Push(c.decl(name), c.ns().Parse(c.params.Environment[key]), conditions)
	}
	return t
}

// impartedTable collects the settings imparted by the target's dependencies, in
// dependency order. Platform filters are only honored for package projects.
func (c *construction) impartedTable() *macro.Table {
	if c.s.Target == nil || c.builder.workspace == nil {
		return nil
	}
	t := macro.NewTable()
	for _, dep := range c.builder.workspace.TransitiveDependencies(c.s.Target) {
		cfg, _ := dep.Configuration(c.configName)
		if cfg == nil || len(cfg.ImpartedSettings) == 0 {
			continue
		}
		honorFilters := dep.Project() != nil && dep.Project().IsPackage
		for _, e := range cfg.ImpartedSettings {
			name, suffix := macro.SplitKey(e.Key)
			conditions, err := macro.ParseConditions(suffix)
			if err != nil {
				c.warningf("ignoring setting %q imparted by %q: %v", e.Key, dep.Name, err)
				continue
			}
			if !honorFilters {
				conditions = withoutPlatformFilter(conditions)
			}
			t.Push(c.decl(name), c.ns().Parse(e.Value), conditions)
		}
	}
	return t
}

func withoutPlatformFilter(cs *macro.ConditionSet) *macro.ConditionSet {
	return macro.NewConditionSet(collections.FilterSlice(cs.Conditions(), func(cond macro.Condition) bool {
		return cond.Parameter != macro.PlatformFilterCondition
	})...)
}

// pushLowerLayers pushes the layers below the environment: built-in and tool defaults,
// platform and SDK defaults, and toolchain defaults.
func (c *construction) pushLowerLayers(t *macro.Table) {
	s := c.s
	c.pushDict(t, builtinDefaults, "built-in defaults")
	platformName := ""
	if s.Platform != nil {
		platformName = s.Platform.Name
	}
	c.pushDict(t, c.builder.core.ToolDefaults(platformName), "tool defaults")

	if p := s.Platform; p != nil {
		c.pushLiteral(t, "PLATFORM_NAME", p.Name)
		c.pushLiteral(t, "PLATFORM_DIR", p.Path)
		c.pushLiteral(t, "PLATFORM_DISPLAY_NAME", p.DisplayName)
		c.pushLiteral(t, "PLATFORM_FAMILY_NAME", p.FamilyName)
		c.pushLiteral(t, "PLATFORM_PREFERRED_ARCH", p.PreferredArch)
		c.pushLiteral(t, "EFFECTIVE_PLATFORM_NAME", c.effectivePlatformName())
		c.pushLiteral(t, "ARCHS_STANDARD", macro.JoinList(p.SupportedArchs))
		c.pushLiteral(t, "VALID_ARCHS", macro.JoinList(p.SupportedArchs))
		if name := c.deploymentTargetMacro(); name != "" {
			c.pushLiteral(t, "DEPLOYMENT_TARGET_SETTING_NAME", name)
		}
		c.pushDict(t, p.DefaultSettings, "platform "+p.Name)
	}

	if sdk := s.SDK; sdk != nil {
		c.pushLiteral(t, "SDK_NAME", sdk.CanonicalName)
		c.pushLiteral(t, "SDK_DIR", sdk.Path)
		c.pushLiteral(t, "SDK_VERSION", sdk.Version)
		c.pushLiteral(t, "SDK_PRODUCT_BUILD_VERSION", sdk.BuildVersion)
		c.pushLiteral(t, "SDK_NAMES", macro.JoinList(c.sdkNames()))
		c.pushSDKDirs(t)
		c.pushDict(t, sdk.DefaultSettings, "sdk "+sdk.CanonicalName)
		if v := s.SDKVariant; v != nil {
			c.pushDict(t, v.DefaultSettings, "sdk variant "+v.Name)
		}
		for _, sparse := range s.SparseSDKs {
			c.pushDict(t, sparse.DefaultSettings, "sdk "+sparse.CanonicalName)
		}
		c.pushDict(t, sdk.CustomProperties, "sdk "+sdk.CanonicalName)
	}

	if tc := s.Toolchain; tc != nil {
		c.pushLiteral(t, "TOOLCHAIN_DIR", tc.Path)
		c.pushDict(t, tc.DefaultBuildSettings, "toolchain "+tc.Identifier)
	}
}

// pushUpperLayers pushes the environment, project, preferences, target, imparted, action
// and override layers. When snapshots is non-nil the layers shown by the editor view are
// recorded.
func (c *construction) pushUpperLayers(t *macro.Table, snapshots *layerSnapshots) {
	s := c.s
	t.PushTable(c.environment)

	proj := s.Project
	c.pushLiteral(t, "PROJECT_NAME", proj.Name)
	c.pushLiteral(t, "PROJECT_GUID", proj.GUID)
	c.pushLiteral(t, "PROJECT_DIR", proj.Dir)
	t.Push(c.decl("SRCROOT"), c.ns().Parse("$(PROJECT_DIR)"), nil)
	c.pushLiteral(t, "CONFIGURATION", c.configName)
	snapshots.recordDefaults(t)

	t.PushTable(c.projectXCConfig)
	snapshots.record(projectXCConfigLayer, c.projectXCConfig, t)
	t.PushTable(c.projectSettings)
	snapshots.record(projectLayer, c.projectSettings, t)

	t.PushTable(c.preferences)

	if target := s.Target; target != nil {
		c.pushLiteral(t, "TARGET_NAME", target.Name)
		c.pushLiteral(t, "TARGET_GUID", target.GUID)
		if target.ProductName != "" {
			c.pushLiteral(t, "PRODUCT_NAME", target.ProductName)
		} else {
			t.Push(c.decl("PRODUCT_NAME"), c.ns().Parse("$(TARGET_NAME)"), nil)
		}
		if target.ProductType != "" {
			c.pushLiteral(t, "PRODUCT_TYPE", target.ProductType)
		}
		if pt := s.ProductType; pt != nil {
			c.pushDict(t, pt.DefaultSettings, "product type "+pt.Identifier)
		}
		t.PushTable(c.targetXCConfig)
		snapshots.record(targetXCConfigLayer, c.targetXCConfig, t)
		t.PushTable(c.targetSettings)
		snapshots.record(targetLayer, c.targetSettings, t)
		t.PushTable(c.imparted)
	}

	if p := s.Platform; p != nil {
		c.pushDict(t, p.OverrideSettings, "platform "+p.Name)
	}
	if sdk := s.SDK; sdk != nil {
		c.pushDict(t, sdk.OverrideSettings, "sdk "+sdk.CanonicalName)
		if v := s.SDKVariant; v != nil {
			c.pushDict(t, v.OverrideSettings, "sdk variant "+v.Name)
		}
	}
	if tc := s.Toolchain; tc != nil {
		c.pushDict(t, tc.OverrideBuildSettings, "toolchain "+tc.Identifier)
	}
	action := c.params.action()
	c.pushLiteral(t, "ACTION", string(action))
	c.pushDict(t, actionSettings[action], "action "+string(action))

	for _, overrides := range c.overrides {
		t.PushTable(overrides)
	}
}

func (c *construction) globalBindings() macro.Bindings {
	b := macro.Bindings{macro.ConfigCondition: {c.configName}}
	if c.s.SDK != nil {
		b[macro.SDKCondition] = c.sdkNames()
		if v := c.s.SDK.BuildVersion; v != "" {
			b[macro.SDKBuildVersionCondition] = []string{v}
		}
	}
	if filter := c.platformFilter(); filter != "" {
		b[macro.PlatformFilterCondition] = []string{filter}
	}
	return b
}

func (c *construction) platformFilter() string {
	if v := c.s.SDKVariant; v != nil && v.PlatformFilter != "" {
		return v.PlatformFilter
	}
	if p := c.s.Platform; p != nil {
		return p.PlatformFilter
	}
	return ""
}

func (c *construction) effectivePlatformName() string {
	switch {
	case c.isMacCatalyst():
		return "-maccatalyst"
	case c.s.Platform == nil || c.s.Platform.Name == "macosx":
		return ""
	default:
		return "-" + c.s.Platform.Name
	}
}

// pushComputed pushes values derived from the composed table: the resolved SDK, the
// architectures, deployment targets and provisioning inputs. They sit above the override
// layers because they are computed from them.
func (c *construction) pushComputed(t *macro.Table, scope *macro.Scope) {
	s := c.s
	if s.SDK != nil {
		c.pushLiteral(t, "SDKROOT", s.SDK.Path)
	}
	if s.SDKVariant != nil {
		c.pushLiteral(t, "SDK_VARIANT", s.SDKVariant.Name)
	}

	archs, removed := c.resolveArchs(scope)
	if archs != nil || len(removed) > 0 {
		c.pushLiteral(t, "ARCHS", macro.JoinList(archs))
	}
	for _, arch := range archs {
		c.pushLiteral(t, arch, "YES")
	}
	for _, arch := range removed {
		c.pushLiteral(t, arch, "NO")
	}
	if native := c.nativeArch(); native != "" {
		c.pushLiteral(t, "NATIVE_ARCH", native)
	}
	variants := c.list(scope, "BUILD_VARIANTS")
	if len(variants) == 0 {
		variants = []string{"normal"}
	}
	c.pushLiteral(t, "CURRENT_VARIANT", variants[0])

	for _, e := range c.resolveDeploymentTargets(scope) {
		c.pushLiteral(t, e.Key, e.Value)
	}

	if p := c.params.Provisioning; p != nil {
		c.pushLiteral(t, "EXPANDED_CODE_SIGN_IDENTITY", p.IdentityHash)
		c.pushLiteral(t, "EXPANDED_CODE_SIGN_IDENTITY_NAME", p.IdentityName)
		if p.ProfileUUID != "" {
			c.pushLiteral(t, "EXPANDED_PROVISIONING_PROFILE", p.ProfileUUID)
		}
		if p.ProfilePath != "" {
			c.pushLiteral(t, "PROVISIONING_PROFILE_PATH", p.ProfilePath)
		}
	}
}
