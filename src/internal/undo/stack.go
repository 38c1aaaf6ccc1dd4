// Package undo implements the scoped-acquisition / LIFO undo stack
// pattern spec.md §4.8 and §9 call for: DevelopInstaller and the build
// path register a reversible action per side effect (a transient file
// written, a directory created, a configuration value moved aside),
// and the scope guarantees LIFO execution on any exit path.
//
// The teacher never factored this into a reusable type — it repeats
// the shape ad hoc as scattered `defer os.Remove(tmpPath)` calls
// throughout cache.CAS.StoreBlobFromURL and
// resolver.downloadAndInstallPackage
// (_examples/aaravmaloo-xe/src/internal/cache/cas.go and
// src/internal/resolver/resolver.go). This package generalizes that
// idiom into the one reusable Stack spec.md asks DevelopInstaller to
// guarantee.
package undo

import "sync"

// Stack is a LIFO list of reversible actions.
type Stack struct {
	mu      sync.Mutex
	actions []func() error
}

// New returns an empty Stack.
func New() *Stack { return &Stack{} }

// Push registers an action to be run, in LIFO order, when Close runs.
func (s *Stack) Push(action func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

// Close runs every registered action in reverse registration order,
// regardless of whether earlier actions fail, and returns the first
// error encountered (if any). It is safe to call from a defer on
// every exit path, successful or failed.
func (s *Stack) Close() error {
	s.mu.Lock()
	actions := s.actions
	s.actions = nil
	s.mu.Unlock()

	var firstErr error
	for i := len(actions) - 1; i >= 0; i-- {
		if err := actions[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len reports the number of actions currently registered.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
