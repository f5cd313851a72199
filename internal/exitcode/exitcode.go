// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, unknown task).
	UserError = 1

	// ConfigError indicates a configuration, credentials or auth error.
	ConfigError = 2

	// BackendError indicates a record store, network or API error.
	BackendError = 3
)
