// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

// Validate checks the constraints the schema cannot express. All problems
// are reported together, joined with errors.Join; each one is a
// *ValidationError.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(c.Projects) == 0 {
		add("projects", "at least one project must be configured")
	}

	for _, name := range c.ProjectNames() {
		p := c.Projects[name]
		field := "projects." + name

		if !filepath.IsAbs(p.BasePath) {
			add(field+".base_path", "must be absolute after ~ expansion, got %q", p.BasePath)
		}
		if p.WildFlyRoot == "" || p.WildFlyRoot == "." {
			add(field+".wildfly_root", "is required")
		}
		if err := p.WildFlyMode.Validate(); err != nil {
			add(field+".wildfly_mode", "%v", err)
		}
		if p.WildFlyMode == WildFlyDomain && p.ServerGroup == "" {
			add(field+".server_group", "is required when wildfly_mode is %q", WildFlyDomain)
		}
		if p.DefaultProfile != "" && !p.IsProfileAllowed(p.DefaultProfile) {
			add(field+".default_profile", "%q is not listed in available_profiles", p.DefaultProfile)
		}
		if p.DefaultClient != "" {
			if _, ok := p.Targets()[p.DefaultClient]; !ok {
				add(field+".default_client", "%q does not name a configured client", p.DefaultClient)
			}
		}
		for client, r := range p.Targets() {
			if err := validateShell(r.RestartCmd); err != nil {
				add(field+".clients."+client+".restart_cmd", "%v", err)
			}
		}
		for module := range p.Modules {
			if strings.TrimSpace(module) == "" {
				add(field+".modules", "module names must not be blank")
			}
		}
	}

	for i, pat := range c.RestartRules.Patterns {
		if err := pat.Severity.Validate(); err != nil {
			add(fmt.Sprintf("restart_rules.patterns[%d].severity", i), "%v", err)
		}
	}

	for _, t := range [...]struct{ field, value string }{
		{"timeouts.build", c.Timeouts.Build},
		{"timeouts.deploy", c.Timeouts.Deploy},
	} {
		if t.value == "" {
			continue
		}
		if d, err := time.ParseDuration(t.value); err != nil || d <= 0 {
			add(t.field, "must be a positive duration such as \"10m\", got %q", t.value)
		}
	}

	return errors.Join(errs...)
}

// Validate returns an error if the severity is not recognized.
func (s Severity) Validate() error {
	switch s {
	case SeverityNone, SeverityRecommended, SeverityRequired:
		return nil
	default:
		return fmt.Errorf("severity must be one of none, recommended, required; got %q", s)
	}
}

// validateShell reports whether cmd parses as a POSIX shell command line.
func validateShell(cmd string) error {
	if cmd == "" {
		return nil
	}
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(cmd), ""); err != nil {
		return fmt.Errorf("not a valid shell command: %w", err)
	}
	return nil
}
