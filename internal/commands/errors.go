package commands

import (
	"errors"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/engine"
	"taskflow/internal/exitcode"
)

// usageErr is an argument error detected by a command itself.
type usageErr struct {
	msg string
}

func (e *usageErr) Error() string { return e.msg }

func usageError(format string, args ...any) error {
	return &usageErr{msg: fmt.Sprintf(format, args...)}
}

// report prints err to errOut and returns its exit code.
func report(errOut io.Writer, err error) int {
	var u *usageErr
	switch {
	case errors.As(err, &u),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrInvalidTaskRef),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, engine.ErrValidation),
		errors.Is(err, engine.ErrNotFound),
		errors.Is(err, engine.ErrMutationInFlight):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, config.ErrMissingCredentials):
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
