package engine

import (
	"errors"
	"fmt"
)

var (
	ErrHostNotFound    = errors.New("engine: host not found")
	ErrInvalidViewport = errors.New("engine: invalid viewport")
	ErrBackend         = errors.New("engine: backend unavailable")
)

// InitError is the only error the engine surfaces to callers. Nothing is
// left mounted when it is returned.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("engine: initialize %s: %v", e.Op, e.Err)
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func initError(op string, err error) error {
	return &InitError{Op: op, Err: err}
}
