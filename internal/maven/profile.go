// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ppowo/gmw/internal/config"
)

// ErrInvalidProfile is returned for a profile outside the project's allowed set.
var ErrInvalidProfile = errors.New("invalid profile")

// InvalidProfileError names the rejected profile and the allowed set.
type InvalidProfileError struct {
	Project   string
	Profile   string
	Available []string
}

// Error implements error.
func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile %q for project %q (available: %s)",
		e.Profile, e.Project, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrInvalidProfile.
func (e *InvalidProfileError) Unwrap() error { return ErrInvalidProfile }

// ResolveProfiles expands a requested profile into the Maven profiles to
// activate. Precedence: an override entry for the request (the "" key when
// nothing was requested), then the request itself, then the project default.
// A request outside a non-empty AvailableProfiles is rejected before any of
// that.
func ResolveProfiles(project string, proj config.ProjectConfig, requested string) ([]string, error) {
	if requested != "" && !proj.IsProfileAllowed(requested) {
		return nil, &InvalidProfileError{
			Project:   project,
			Profile:   requested,
			Available: slices.Clone(proj.AvailableProfiles),
		}
	}

	if override, ok := proj.ProfileOverrides[requested]; ok {
		return slices.Clone(override), nil
	}
	switch {
	case requested != "":
		return []string{requested}, nil
	case proj.DefaultProfile != "":
		return []string{proj.DefaultProfile}, nil
	default:
		return nil, nil
	}
}
