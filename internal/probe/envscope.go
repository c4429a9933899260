// SPDX-License-Identifier: MPL-2.0

package probe

import "os"

// EnvScope applies process environment overrides and restores the previous
// values on release. It replaces ad-hoc set/unset pairs so that overrides
// cannot leak past a probe, whatever the exit path.
type EnvScope struct {
	saved map[string]*string // nil value = variable was unset
}

// NewEnvScope creates an empty scope.
func NewEnvScope() *EnvScope {
	return &EnvScope{saved: make(map[string]*string)}
}

// Set overrides an environment variable, remembering its previous state the
// first time each key is touched.
func (s *EnvScope) Set(key, value string) error {
	if _, seen := s.saved[key]; !seen {
		if prev, ok := os.LookupEnv(key); ok {
			p := prev
			s.saved[key] = &p
		} else {
			s.saved[key] = nil
		}
	}
	return os.Setenv(key, value)
}

// Restore reverts every override. Safe to call multiple times; later calls
// are no-ops. Restore failures are reported but the remaining keys are
// still processed.
func (s *EnvScope) Restore() error {
	var firstErr error
	for key, prev := range s.saved {
		var err error
		if prev == nil {
			err = os.Unsetenv(key)
		} else {
			err = os.Setenv(key, *prev)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.saved = make(map[string]*string)
	return firstErr
}
