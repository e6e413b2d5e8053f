// SPDX-License-Identifier: MPL-2.0

package restart

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppowo/gmw/internal/config"
)

// Severity grades how necessary a restart is.
type Severity int

const (
	None Severity = iota
	Recommended
	Required
)

// Reasons reported by the built-in rules.
const (
	ReasonGlobalModule = "global module modification"
	ReasonEJBJar       = "EJB implementation jar"
	ReasonWarHotDeploy = "war hot-deployment"
	ReasonStandard     = "standard deployment"
)

type (
	// Decision is the outcome of evaluating an artifact.
	Decision struct {
		Severity Severity
		Reason   string
	}

	// Warning describes a restart pattern that was left out of the table.
	Warning struct {
		Index   int
		Pattern string
		Err     error
	}

	// Engine is a compiled, immutable restart rule table.
	Engine struct {
		globalOverride bool
		rules          []rule
		// fallback is set when the configuration declares no patterns at all,
		// even if every declared pattern was then dropped as invalid.
		fallback bool
	}

	rule struct {
		re       *regexp.Regexp
		severity Severity
		reason   string
	}
)

// String returns the configuration spelling of the severity.
func (s Severity) String() string {
	switch s {
	case None:
		return string(config.SeverityNone)
	case Recommended:
		return string(config.SeverityRecommended)
	case Required:
		return string(config.SeverityRequired)
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity converts a configured severity.
func ParseSeverity(s config.Severity) (Severity, error) {
	switch s {
	case config.SeverityNone:
		return None, nil
	case config.SeverityRecommended:
		return Recommended, nil
	case config.SeverityRequired:
		return Required, nil
	default:
		return None, fmt.Errorf("unknown severity %q", s)
	}
}

// Error implements error.
func (w Warning) Error() string {
	return fmt.Sprintf("restart_rules.patterns[%d] %q skipped: %v", w.Index, w.Pattern, w.Err)
}

// Compile builds an Engine from the configured rules. Patterns whose
// expression or severity is invalid are dropped and reported as warnings.
func Compile(rules config.RestartRules) (*Engine, []Warning) {
	e := &Engine{
		globalOverride: rules.GlobalModule,
		fallback:       len(rules.Patterns) == 0,
	}

	var warnings []Warning
	for i, p := range rules.Patterns {
		re, err := regexp.Compile(p.Match)
		if err != nil {
			warnings = append(warnings, Warning{Index: i, Pattern: p.Match, Err: err})
			continue
		}
		sev, err := ParseSeverity(p.Severity)
		if err != nil {
			warnings = append(warnings, Warning{Index: i, Pattern: p.Match, Err: err})
			continue
		}
		e.rules = append(e.rules, rule{re: re, severity: sev, reason: p.Reason})
	}
	return e, warnings
}

// Evaluate decides the restart severity for an artifact file name. global
// reports whether the artifact is a global module.
func (e *Engine) Evaluate(artifact string, global bool) Decision {
	if global && e.globalOverride {
		return Decision{Required, ReasonGlobalModule}
	}

	if e.fallback {
		switch {
		case global:
			return Decision{Required, ReasonGlobalModule}
		case strings.HasSuffix(artifact, ".jar") && strings.Contains(artifact, "EJB"):
			return Decision{Recommended, ReasonEJBJar}
		}
		return defaultDecision(artifact)
	}

	for _, r := range e.rules {
		if r.re.MatchString(artifact) {
			return Decision{r.severity, r.reason}
		}
	}
	return defaultDecision(artifact)
}

// Evaluate compiles rules and evaluates the artifact in one step, ignoring
// compile warnings.
func Evaluate(artifact string, global bool, rules config.RestartRules) Decision {
	e, _ := Compile(rules)
	return e.Evaluate(artifact, global)
}

func defaultDecision(artifact string) Decision {
	if strings.HasSuffix(artifact, ".war") {
		return Decision{None, ReasonWarHotDeploy}
	}
	return Decision{Recommended, ReasonStandard}
}
