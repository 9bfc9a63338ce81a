package model

import (
	"fmt"
	"strings"
)

// ApplyMode is how a change set is moved towards being applied.
type ApplyMode string

const (
	// ApplyModeSkip doesn't apply the change set.
	ApplyModeSkip ApplyMode = "skip"
	// ApplyModeRequest requests approval to apply the change set.
	ApplyModeRequest ApplyMode = "request"
	// ApplyModeForce force applies the change set.
	ApplyModeForce ApplyMode = "force"
)

// ParseApplyMode parses the three valued apply input (`true`, `false`, `force`).
// Canonical mode names are accepted too.
func ParseApplyMode(s string) (ApplyMode, error) {
	switch strings.TrimSpace(s) {
	case "force", "Force", "FORCE":
		return ApplyModeForce, nil
	case "", "skip":
		return ApplyModeSkip, nil
	case "request":
		return ApplyModeRequest, nil
	}

	b, err := ParseBool(s)
	if err != nil {
		return "", fmt.Errorf("apply mode must be true, false or force: %w", err)
	}
	if b {
		return ApplyModeRequest, nil
	}
	return ApplyModeSkip, nil
}

// ParseBool parses a boolean input using the YAML 1.2 core schema booleans
// (true, True, TRUE, false, False, FALSE).
func ParseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean: %w", s, ErrNotValid)
}
