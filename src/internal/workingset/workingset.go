// Package workingset implements the WorkingSet data model: an ordered
// mapping from project-key to Distribution, with at most one entry
// per key and an insertion-order list, per spec.md §3.
//
// Grounded in the teacher's engine.SolveGraph (a flat, JSON-serialized
// slice of resolver.Package) — generalized here into the ordered,
// key-addressable structure the Resolver's BFS and invariant checks
// (spec.md §8, invariants 1-4) need.
package workingset

import (
	"eggctl/src/internal/distribution"
	"eggctl/src/internal/requirement"
)

// WorkingSet is a conflict-free set of resolved Distributions.
type WorkingSet struct {
	order   []string
	entries map[string]distribution.Distribution
}

// New returns an empty WorkingSet.
func New() *WorkingSet {
	return &WorkingSet{entries: map[string]distribution.Distribution{}}
}

// FromSlice seeds a WorkingSet from distributions a caller passes back
// in for incremental expansion (spec.md §3 Lifecycle).
func FromSlice(dists []distribution.Distribution) *WorkingSet {
	ws := New()
	for _, d := range dists {
		ws.Add(d)
	}
	return ws
}

// Get returns the Distribution installed for key, if any.
func (ws *WorkingSet) Get(key string) (distribution.Distribution, bool) {
	d, ok := ws.entries[key]
	return d, ok
}

// Add inserts or replaces the entry for d.ProjectKey, appending to the
// insertion-order list only on first insertion.
func (ws *WorkingSet) Add(d distribution.Distribution) {
	if _, exists := ws.entries[d.ProjectKey]; !exists {
		ws.order = append(ws.order, d.ProjectKey)
	}
	ws.entries[d.ProjectKey] = d
}

// Distributions returns entries in insertion order.
func (ws *WorkingSet) Distributions() []distribution.Distribution {
	out := make([]distribution.Distribution, 0, len(ws.order))
	for _, k := range ws.order {
		out = append(out, ws.entries[k])
	}
	return out
}

// Len reports the number of distinct project keys installed.
func (ws *WorkingSet) Len() int { return len(ws.order) }

// Satisfies reports whether some entry in ws satisfies r — the check
// behind spec.md §8 invariant 3 (Satisfaction) and invariant 4
// (Transitive closure).
func (ws *WorkingSet) Satisfies(r requirement.Requirement) bool {
	d, ok := ws.entries[r.Key]
	return ok && r.Satisfies(d.Version)
}

// Conflicts reports the existing entry that would conflict with r, if
// any — spec.md §4.4.3's "dist does not satisfy req" check.
func (ws *WorkingSet) Conflicts(r requirement.Requirement) (distribution.Distribution, bool) {
	d, ok := ws.entries[r.Key]
	if !ok {
		return distribution.Distribution{}, false
	}
	return d, !r.Satisfies(d.Version)
}
