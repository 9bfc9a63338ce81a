// Package resolve resolves human friendly references (an ID or a name) to IDs
// using a list of candidates.
package resolve

import (
	"fmt"
	"strings"

	"github.com/slok/csflow/internal/model"
)

// Ref is a reference by ID or by name. ID takes precedence over the name.
type Ref struct {
	ID   string
	Name string
}

// IsZero returns true when the reference has neither ID nor name.
func (r Ref) IsZero() bool { return r.ID == "" && r.Name == "" }

func (r Ref) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// Candidate is the ID and name of a resolvable entity.
type Candidate struct {
	ID   string
	Name string
}

// ByIDOrName resolves a reference to an ID.
//
// If the reference has an ID it's returned directly, otherwise the candidates are
// narrowed by name (all of them if there is no name) and exactly one must match.
// Zero or multiple matches return a model.ErrAmbiguousReference error naming the
// candidates found. The label is used on the error messages (e.g `view`).
func ByIDOrName(ref Ref, label string, candidates []Candidate) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}

	matches := candidates
	suffix := ""
	if ref.Name != "" {
		suffix = fmt.Sprintf(" named %q", ref.Name)
		matches = nil
		for _, c := range candidates {
			if c.Name == ref.Name {
				matches = append(matches, c)
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return "", fmt.Errorf("no %s%s found (candidates: %s): %w", label, suffix, candidatesString(candidates), model.ErrAmbiguousReference)
	default:
		return "", fmt.Errorf("multiple %ss%s found, pick one by ID or name (matches: %s): %w", label, suffix, candidatesString(matches), model.ErrAmbiguousReference)
	}
}

func candidatesString(cs []Candidate) string {
	if len(cs) == 0 {
		return "none"
	}

	s := make([]string, 0, len(cs))
	for _, c := range cs {
		s = append(s, fmt.Sprintf("%s (%s)", c.Name, c.ID))
	}
	return strings.Join(s, ", ")
}

// Views returns the resolve candidates of views.
func Views(vs []model.View) []Candidate {
	cs := make([]Candidate, 0, len(vs))
	for _, v := range vs {
		cs = append(cs, Candidate{ID: v.ID, Name: v.Name})
	}
	return cs
}

// ManagementFunctions returns the resolve candidates of management functions.
func ManagementFunctions(fs []model.ManagementFunction) []Candidate {
	cs := make([]Candidate, 0, len(fs))
	for _, f := range fs {
		cs = append(cs, Candidate{ID: f.ID, Name: f.Name})
	}
	return cs
}

// Components returns the resolve candidates of components.
func Components(comps []model.ComponentSummary) []Candidate {
	cs := make([]Candidate, 0, len(comps))
	for _, c := range comps {
		cs = append(cs, Candidate{ID: c.ID, Name: c.Name})
	}
	return cs
}
