package ssr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBundle     = errors.New("invalid render bundle")
	ErrNoExports         = errors.New("render bundle exports nothing")
	ErrRenderInterrupted = errors.New("render interrupted")
)

// ExportError reports a render function that failed during invocation.
type ExportError struct {
	Name string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %q: %v", e.Name, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func interrupted(cause error) error {
	if cause == nil {
		return ErrRenderInterrupted
	}
	return fmt.Errorf("%w: %w", ErrRenderInterrupted, cause)
}
