package cli

import (
	"errors"
	"fmt"

	"mercator-hq/sdclint/pkg/config"
)

// Exit codes of the sdclint command.
const (
	ExitOK       = 0 // no diagnostic at or above the fail-on severity
	ExitFailed   = 1 // diagnostics at or above the fail-on severity
	ExitUsage    = 2 // bad flags, arguments or configuration
	ExitInternal = 3 // anything else
)

// ErrLintFailed reports that a run found diagnostics at or above the
// fail-on severity. The report itself has already been printed.
var ErrLintFailed = errors.New("diagnostics at or above the fail-on severity")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command    string
	Err        error
	Suggestion string
	ExitCode   int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a CommandError whose exit code follows from err.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command:  command,
		Err:      err,
		ExitCode: ExitCode(err),
	}
}

// NewUsageError creates a CommandError for bad input, with a hint on how
// to fix it.
func NewUsageError(command string, err error, suggestion string) *CommandError {
	return &CommandError{
		Command:    command,
		Err:        err,
		Suggestion: suggestion,
		ExitCode:   ExitUsage,
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var cmdErr *CommandError
	var cfgErr *ConfigError
	var valErr config.ValidationError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cmdErr) && cmdErr.ExitCode != 0:
		return cmdErr.ExitCode
	case errors.Is(err, ErrLintFailed):
		return ExitFailed
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitUsage
	default:
		return ExitInternal
	}
}
