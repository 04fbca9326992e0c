// Package idgen wraps the UUID generator so record and prompt identifiers
// can be stubbed in tests. Callers must treat the identifiers as opaque
// strings.
package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier; override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier from NewFunc.
func New() string { return NewFunc() }
