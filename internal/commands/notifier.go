package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"taskflow/internal/engine"
)

// Notifier prints engine success notices to out. Most failures are returned
// to the command as errors and reported there, so they are only logged. A
// failed reload after a saved change is never returned, so it is printed to
// errOut as a warning.
type Notifier struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	log    zerolog.Logger
}

// NewNotifier creates a Notifier. quiet suppresses success notices and
// warnings.
func NewNotifier(out, errOut io.Writer, quiet bool, log zerolog.Logger) *Notifier {
	return &Notifier{out: out, errOut: errOut, quiet: quiet, log: log}
}

func (n *Notifier) Success(msg string) {
	n.log.Debug().Str("notice", msg).Msg("success")
	if !n.quiet {
		fmt.Fprintln(n.out, msg)
	}
}

func (n *Notifier) Failure(err error) {
	n.log.Debug().Err(err).Msg("failure")
	if errors.Is(err, engine.ErrRefresh) && !n.quiet {
		fmt.Fprintf(n.errOut, "warning: %v\n", err)
	}
}
