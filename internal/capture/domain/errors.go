// Package domain holds the rules that project a classification onto the
// records a capture writes.
package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a capture carries no user identity.
var ErrUnauthenticated = errors.New("sign in to capture entries")

// PersistenceError is a failed storage write during a capture. Nothing from
// the capture is stored when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
