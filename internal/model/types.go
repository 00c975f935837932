package model

import (
	"fmt"
	"regexp"
	"strings"
)

// InstallStatus represents the outcome of a single package install attempt.
// The transitions within one setup run are:
//
//	[Pending] → Installed | Failed
//	[Pending] → Skipped (a critical install earlier in the run failed)
type InstallStatus string

const (
	// StatusInstalled indicates pip reported success for the package.
	StatusInstalled InstallStatus = "installed"

	// StatusFailed indicates the pip invocation exited non-zero.
	StatusFailed InstallStatus = "failed"

	// StatusSkipped indicates the install was never attempted because a
	// critical package earlier in the run failed to install.
	StatusSkipped InstallStatus = "skipped"
)

// String returns the string representation of InstallStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s InstallStatus) String() string {
	return string(s)
}

// IsValid checks whether the InstallStatus value is one of the
// predefined valid states.
func (s InstallStatus) IsValid() bool {
	switch s {
	case StatusInstalled, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// ParseInstallStatus converts a string to an InstallStatus.
// Returns an error if the string does not match any valid status.
func ParseInstallStatus(s string) (InstallStatus, error) {
	status := InstallStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid install status: %q (valid: installed, failed, skipped)", s)
	}
	return status, nil
}

// Package describes a single Python package that tradestack manages.
//
// Critical packages (the brokerage SDK and the backtesting framework) abort
// the setup run when their install fails. Auxiliary packages are installed
// best-effort: a failure is reported but never changes control flow or the
// process exit code.
type Package struct {
	// Name is the PyPI distribution name passed to pip.
	Name string `json:"name"`

	// Title is an optional human-readable display name (e.g., "Dhan SDK").
	// When empty, Name is used in console output.
	Title string `json:"title,omitempty"`

	// Pin is an optional exact version. When set, the package is installed
	// as "name==pin".
	Pin string `json:"pin,omitempty"`

	// Critical marks the package as fatal-on-failure during setup.
	Critical bool `json:"critical,omitempty"`
}

// packageNameRegex validates PyPI distribution names per PEP 503:
// letters, digits, ".", "-", "_", starting and ending alphanumeric.
var packageNameRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// ValidatePackageName checks if the given name is a valid PyPI
// distribution name.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name must not be empty")
	}
	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must contain only letters, digits, '.', '-', '_', and start/end alphanumeric", name)
	}
	return nil
}

// Validate checks the Package for a well-formed name.
func (p Package) Validate() error {
	return ValidatePackageName(p.Name)
}

// Requirement returns the pip requirement string for the package:
// "name" or "name==pin" when a version pin is set.
func (p Package) Requirement() string {
	if p.Pin != "" {
		return p.Name + "==" + p.Pin
	}
	return p.Name
}

// DisplayName returns the title when present, otherwise the raw name.
func (p Package) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

// InstallResult records the outcome of one install attempt within a setup run.
type InstallResult struct {
	// Package is the package the attempt was for.
	Package Package `json:"package"`

	// Status is the outcome of the attempt.
	Status InstallStatus `json:"status"`

	// Detail carries the error text when Status is failed.
	Detail string `json:"detail,omitempty"`
}

// VerifyStep describes one post-install import verification: a group of
// Python modules imported together in a single interpreter invocation.
//
// The steps are independent — one step's failure never affects another
// step's result, and no step's outcome affects the process exit code.
type VerifyStep struct {
	// Name identifies the step in output (e.g., "core", "data").
	Name string `json:"name"`

	// Modules lists the Python module names imported by the step.
	Modules []string `json:"modules"`
}

// PackageVersion pairs a module name with its reported version string.
type PackageVersion struct {
	// Name is the Python module name.
	Name string `json:"name"`

	// Version is the module's __version__ value, or "unknown" when the
	// module does not expose one.
	Version string `json:"version"`
}

// VerifyResult records the outcome of a single verification step.
type VerifyResult struct {
	// Step is the name of the step that produced this result.
	Step string `json:"step"`

	// OK indicates all modules in the step imported successfully.
	OK bool `json:"ok"`

	// Versions holds the reported versions, in module order.
	// Only populated on success.
	Versions []PackageVersion `json:"versions,omitempty"`

	// Detail carries the interpreter's error text (typically the final
	// traceback line) when OK is false.
	Detail string `json:"detail,omitempty"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. Setup exits
	// 0 even when auxiliary installs or verification steps failed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInstallFailed indicates a critical package install failed.
	// It shares the value 1 with ExitGeneralError: that exit code is the
	// setup contract for critical install failures.
	ExitInstallFailed ExitCode = 1

	// ExitInterpreterNotFound indicates no usable Python interpreter
	// was found.
	ExitInterpreterNotFound ExitCode = 2

	// ExitPipNotFound indicates the resolved interpreter cannot run
	// `python -m pip`.
	ExitPipNotFound ExitCode = 3

	// ExitConfigError indicates the package manifest or the credentials
	// file is invalid.
	ExitConfigError ExitCode = 4

	// ExitProbeFailed indicates the broker API probe (check --api)
	// did not get a successful response.
	ExitProbeFailed ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
