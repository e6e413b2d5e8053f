// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	// WildFlyStandalone is the single-server topology.
	WildFlyStandalone WildFlyMode = "standalone"
	// WildFlyDomain is the managed-domain topology; deployments target a server group.
	WildFlyDomain WildFlyMode = "domain"

	// SeverityNone means no restart is needed.
	SeverityNone Severity = "none"
	// SeverityRecommended means a restart is advisable.
	SeverityRecommended Severity = "recommended"
	// SeverityRequired means the change is not picked up without a restart.
	SeverityRequired Severity = "required"

	// DefaultClientName is the client name given to a project's legacy
	// single "remote" entry.
	DefaultClientName = "default"

	defaultMavenExecutable = "mvn"
	defaultBuildTimeout    = 30 * time.Minute
	defaultDeployTimeout   = 5 * time.Minute
)

// ErrInvalidConfig is the sentinel wrapped by every ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownClient is returned by ProjectConfig.Target for names that match no client.
var ErrUnknownClient = errors.New("unknown client")

type (
	// WildFlyMode is the application-server topology of a project.
	WildFlyMode string

	// Severity is the restart severity declared by a restart pattern.
	Severity string

	// Config is the complete, read-only configuration of one gmw invocation.
	Config struct {
		Projects     map[string]ProjectConfig `json:"projects" yaml:"projects"`
		RestartRules RestartRules             `json:"restart_rules,omitempty" yaml:"restart_rules,omitempty"`
		Maven        MavenSettings            `json:"maven,omitempty" yaml:"maven,omitempty"`
		Timeouts     Timeouts                 `json:"timeouts,omitempty" yaml:"timeouts,omitempty"`

		source     string
		deprecated []string
	}

	// ProjectConfig describes one source tree and the WildFly instance it deploys to.
	ProjectConfig struct {
		// BasePath is the absolute directory used for project detection. When it
		// contains a pom.xml it is also the multi-module build root.
		BasePath string `json:"base_path" yaml:"base_path"`

		DefaultProfile    string              `json:"default_profile,omitempty" yaml:"default_profile,omitempty"`
		AvailableProfiles []string            `json:"available_profiles,omitempty" yaml:"available_profiles,omitempty"`
		ProfileOverrides  map[string][]string `json:"profile_overrides,omitempty" yaml:"profile_overrides,omitempty"`
		SkipTests         bool                `json:"skip_tests,omitempty" yaml:"skip_tests,omitempty"`

		WildFlyRoot string      `json:"wildfly_root" yaml:"wildfly_root"`
		WildFlyMode WildFlyMode `json:"wildfly_mode" yaml:"wildfly_mode"`
		ServerGroup string      `json:"server_group,omitempty" yaml:"server_group,omitempty"`

		Remote        *RemoteConfig           `json:"remote,omitempty" yaml:"remote,omitempty"`
		Clients       map[string]RemoteConfig `json:"clients,omitempty" yaml:"clients,omitempty"`
		DefaultClient string                  `json:"default_client,omitempty" yaml:"default_client,omitempty"`

		// Modules maps module name to deployment path. An empty path means a
		// normal deployment; anything else is a global module path relative to
		// the WildFly root.
		Modules map[string]string `json:"modules,omitempty" yaml:"modules,omitempty"`
	}

	// RemoteConfig is a remote WildFly host reachable over ssh.
	RemoteConfig struct {
		Host        string `json:"host" yaml:"host"`
		User        string `json:"user" yaml:"user"`
		WildFlyPath string `json:"wildfly_path" yaml:"wildfly_path"`
		RestartCmd  string `json:"restart_cmd,omitempty" yaml:"restart_cmd,omitempty"`
	}

	// RestartRules decide whether a deployed artifact needs a server restart.
	RestartRules struct {
		// GlobalModule forces a required restart for global modules.
		GlobalModule bool `json:"global_module,omitempty" yaml:"global_module,omitempty"`
		// Patterns are evaluated in order; the first match wins.
		Patterns []RestartPattern `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	}

	// RestartPattern matches artifact names with a regular expression.
	RestartPattern struct {
		Match    string   `json:"match" yaml:"match"`
		Severity Severity `json:"severity" yaml:"severity"`
		Reason   string   `json:"reason" yaml:"reason"`
	}

	// MavenSettings customizes the build tool invocation.
	MavenSettings struct {
		Executable string   `json:"executable,omitempty" yaml:"executable,omitempty"`
		ExtraArgs  []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty"`
	}

	// Timeouts bound external calls. Values use time.ParseDuration syntax.
	Timeouts struct {
		Build  string `json:"build,omitempty" yaml:"build,omitempty"`
		Deploy string `json:"deploy,omitempty" yaml:"deploy,omitempty"`
	}

	// ValidationError reports one semantic configuration problem.
	ValidationError struct {
		Field   string
		Message string
	}
)

// Validate returns an error if the mode is not recognized.
func (m WildFlyMode) Validate() error {
	switch m {
	case WildFlyStandalone, WildFlyDomain:
		return nil
	default:
		return fmt.Errorf("wildfly_mode must be %q or %q, got %q", WildFlyStandalone, WildFlyDomain, m)
	}
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns ErrInvalidConfig.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Source returns the file the configuration was loaded from, if any.
func (c *Config) Source() string { return c.source }

// Deprecated returns the dotted paths of legacy keys found in the document.
// They are accepted and ignored: global modules are declared with a non-empty
// modules entry, and every module is classified through the modules table.
func (c *Config) Deprecated() []string { return c.deprecated }

// ProjectNames returns the configured project names in sorted order. This is
// the iteration order used wherever projects are scanned.
func (c *Config) ProjectNames() []string {
	return slices.Sorted(maps.Keys(c.Projects))
}

// Project returns the named project.
func (c *Config) Project(name string) (ProjectConfig, bool) {
	p, ok := c.Projects[name]
	return p, ok
}

// ModuleDeployment looks up a module in the module table. It reports the
// deployment path, whether the module is global, and whether it is configured.
func (p ProjectConfig) ModuleDeployment(module string) (path string, global, ok bool) {
	path, ok = p.Modules[module]
	if !ok {
		return "", false, false
	}
	return path, path != "", true
}

// IsProfileAllowed reports whether profile may be requested. An empty
// AvailableProfiles list allows every profile.
func (p ProjectConfig) IsProfileAllowed(profile string) bool {
	return len(p.AvailableProfiles) == 0 || slices.Contains(p.AvailableProfiles, profile)
}

// Targets returns every remote target of the project keyed by client name.
// The legacy single remote is exposed as DefaultClientName unless a client of
// that name exists.
func (p ProjectConfig) Targets() map[string]RemoteConfig {
	out := make(map[string]RemoteConfig, len(p.Clients)+1)
	maps.Copy(out, p.Clients)
	if p.Remote != nil {
		if _, taken := out[DefaultClientName]; !taken {
			out[DefaultClientName] = *p.Remote
		}
	}
	return out
}

// DefaultTarget returns the name of the client used when none is requested,
// or "" when the project has no remote targets.
func (p ProjectConfig) DefaultTarget() string {
	if p.DefaultClient != "" {
		return p.DefaultClient
	}
	targets := p.Targets()
	if _, ok := targets[DefaultClientName]; ok {
		return DefaultClientName
	}
	if len(targets) == 1 {
		for name := range targets {
			return name
		}
	}
	return ""
}

// Target resolves a client by name; an empty name selects DefaultTarget.
func (p ProjectConfig) Target(name string) (string, RemoteConfig, error) {
	if name == "" {
		name = p.DefaultTarget()
		if name == "" {
			return "", RemoteConfig{}, fmt.Errorf("%w: project has no remote clients configured", ErrUnknownClient)
		}
	}
	t, ok := p.Targets()[name]
	if !ok {
		names := slices.Sorted(maps.Keys(p.Targets()))
		return "", RemoteConfig{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownClient, name, strings.Join(names, ", "))
	}
	return name, t, nil
}

// Address returns user@host.
func (r RemoteConfig) Address() string {
	return r.User + "@" + r.Host
}

// ExecutableOrDefault returns the Maven executable, defaulting to "mvn".
func (m MavenSettings) ExecutableOrDefault() string {
	if m.Executable == "" {
		return defaultMavenExecutable
	}
	return m.Executable
}

// BuildTimeout returns the build timeout, defaulting to 30 minutes.
func (t Timeouts) BuildTimeout() time.Duration {
	return parseDurationOr(t.Build, defaultBuildTimeout)
}

// DeployTimeout returns the timeout for each deployment step, defaulting to 5 minutes.
func (t Timeouts) DeployTimeout() time.Duration {
	return parseDurationOr(t.Deploy, defaultDeployTimeout)
}

// parseDurationOr parses s, returning def for empty or invalid input. Invalid
// input is rejected at load time, so the fallback only covers zero values.
func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
