package hooks

import (
	"fmt"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
)

// Common hooks errors.
var (
	ErrHookExecution = apoderrors.ErrHookExecution
	ErrHookScript    = apoderrors.ErrHookScript
	ErrHookLoad      = apoderrors.ErrHookLoad
)

// ErrUnsupportedHookType is returned when a script is registered for an unknown hook type.
func ErrUnsupportedHookType(hookType string) error {
	return fmt.Errorf("%w: unsupported hook type: %s", ErrHookLoad, hookType)
}
