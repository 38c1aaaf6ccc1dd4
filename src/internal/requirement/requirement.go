// Package requirement implements the Requirement data model: a
// normalized project key, an extras set, and a version-constraint
// conjunction, with structural equality over the canonical form.
//
// Project-key normalization is grounded in the teacher's
// project.NormalizeDepName and requirementToDepName helpers
// (_examples/aaravmaloo-xe/src/internal/project/config.go and
// src/cmd/requirements_helper.go), generalized from a single
// dash/dot fold into PyPI's real normalization rule (case-fold, then
// collapse runs of '.', '_', '-' into a single '-') using
// golang.org/x/text for locale-independent case folding.
package requirement

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"eggctl/src/internal/version"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizeProjectKey case-folds and punctuation-canonicalizes a
// project name into its canonical key.
func NormalizeProjectKey(name string) string {
	folded := foldCaser.String(strings.TrimSpace(name))
	folded = strings.ToLower(folded)
	return separatorRun.ReplaceAllString(folded, "-")
}

// Op is one of the six comparison operators a Requirement's
// constraint may conjoin.
type Op string

const (
	OpEQ  Op = "=="
	OpNE  Op = "!="
	OpLT  Op = "<"
	OpLE  Op = "<="
	OpGT  Op = ">"
	OpGE  Op = ">="
)

// Comparison is one clause of a constraint conjunction.
type Comparison struct {
	Op      Op
	Version version.Version
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s%s", c.Op, c.Version.String())
}

// Satisfies reports whether v satisfies this single comparison.
func (c Comparison) Satisfies(v version.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	default:
		return false
	}
}

// Requirement is the (project-key, extras-set, version-constraint)
// triple of spec.md §3.
type Requirement struct {
	Key         string
	Extras      []string
	Constraints []Comparison
}

// New builds a Requirement from already-normalized parts, sorting the
// extras set so structural equality holds regardless of input order.
func New(projectKey string, extras []string, constraints []Comparison) Requirement {
	sortedExtras := append([]string(nil), extras...)
	sort.Strings(sortedExtras)
	return Requirement{Key: NormalizeProjectKey(projectKey), Extras: sortedExtras, Constraints: constraints}
}

var reqPattern = regexp.MustCompile(`^([A-Za-z0-9._-]+)(\[[^\]]*\])?(.*)$`)
var constraintPattern = regexp.MustCompile(`(==|!=|<=|>=|<|>)\s*([A-Za-z0-9.+_*-]+)`)

// Parse reads a PEP508-flavored requirement string such as
// "demo[extra1,extra2]>=1.0,!=1.5" into a Requirement. Unparsable
// trailing environment markers are ignored; this core does not model
// them.
func Parse(spec string) (Requirement, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Requirement{}, fmt.Errorf("requirement: empty specifier")
	}
	m := reqPattern.FindStringSubmatch(spec)
	if m == nil {
		return Requirement{}, fmt.Errorf("requirement: cannot parse %q", spec)
	}
	name := m[1]
	var extras []string
	if m[2] != "" {
		inner := strings.Trim(m[2], "[]")
		for _, e := range strings.Split(inner, ",") {
			e = strings.TrimSpace(e)
			if e != "" {
				extras = append(extras, e)
			}
		}
	}
	var constraints []Comparison
	for _, cm := range constraintPattern.FindAllStringSubmatch(m[3], -1) {
		constraints = append(constraints, Comparison{Op: Op(cm[1]), Version: version.Parse(cm[2])})
	}
	return New(name, extras, constraints), nil
}

// Satisfies reports whether v satisfies every comparison in the
// requirement's constraint conjunction.
func (r Requirement) Satisfies(v version.Version) bool {
	for _, c := range r.Constraints {
		if !c.Satisfies(v) {
			return false
		}
	}
	return true
}

// IsExactPin reports whether the constraint is a single "== X" clause.
func (r Requirement) IsExactPin() (version.Version, bool) {
	if len(r.Constraints) == 1 && r.Constraints[0].Op == OpEQ {
		return r.Constraints[0].Version, true
	}
	return version.Version{}, false
}

// WithExactVersion returns a copy of r constrained to "== v", preserving
// extras — the shape VersionPinMap.Constrain produces per spec.md §3.
func (r Requirement) WithExactVersion(v version.Version) Requirement {
	return Requirement{
		Key:         r.Key,
		Extras:      append([]string(nil), r.Extras...),
		Constraints: []Comparison{{Op: OpEQ, Version: v}},
	}
}

// Canonical renders the structural canonical form used for equality
// and for the BFS "processed" set.
func (r Requirement) Canonical() string {
	var b strings.Builder
	b.WriteString(r.Key)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	parts := make([]string, 0, len(r.Constraints))
	for _, c := range r.Constraints {
		parts = append(parts, c.String())
	}
	sort.Strings(parts)
	b.WriteString(strings.Join(parts, ","))
	return b.String()
}

func (r Requirement) String() string { return r.Canonical() }
