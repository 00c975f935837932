package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInstallStatus_String verifies that InstallStatus values produce
// the expected string representations for CLI output and JSON serialization.
func TestInstallStatus_String(t *testing.T) {
	tests := []struct {
		status   InstallStatus
		expected string
	}{
		{StatusInstalled, "installed"},
		{StatusFailed, "failed"},
		{StatusSkipped, "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

// TestInstallStatus_IsValid checks that only defined status values pass validation.
func TestInstallStatus_IsValid(t *testing.T) {
	assert.True(t, StatusInstalled.IsValid())
	assert.True(t, StatusFailed.IsValid())
	assert.True(t, StatusSkipped.IsValid())
	assert.False(t, InstallStatus("invalid").IsValid())
	assert.False(t, InstallStatus("").IsValid())
}

// TestParseInstallStatus verifies string-to-status conversion,
// including case normalization and error cases.
func TestParseInstallStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected InstallStatus
		hasError bool
	}{
		{"installed", StatusInstalled, false},
		{"failed", StatusFailed, false},
		{"skipped", StatusSkipped, false},
		{"Installed", StatusInstalled, false}, // case insensitive
		{"FAILED", StatusFailed, false},       // case insensitive
		{"invalid", "", true},                 // unknown value
		{"", "", true},                        // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseInstallStatus(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestValidatePackageName exercises the PEP 503 naming rules: letters,
// digits, '.', '-', '_', starting and ending alphanumeric.
func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		hasError bool
	}{
		{"simple", "dhanhq", false},
		{"single char", "a", false},
		{"with dash", "websocket-client", false},
		{"with underscore", "typing_extensions", false},
		{"with dot", "zope.interface", false},
		{"digits", "backtrader2", false},
		{"empty", "", true},
		{"leading dash", "-pandas", true},
		{"trailing dot", "pandas.", true},
		{"space", "bad name", true},
		{"shell metachar", "pandas;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestPackage_Requirement verifies pip requirement string construction,
// with and without a version pin.
func TestPackage_Requirement(t *testing.T) {
	assert.Equal(t, "dhanhq", Package{Name: "dhanhq"}.Requirement())
	assert.Equal(t, "backtrader==1.9.78.123", Package{Name: "backtrader", Pin: "1.9.78.123"}.Requirement())
}

// TestPackage_DisplayName verifies the title falls back to the raw name.
func TestPackage_DisplayName(t *testing.T) {
	assert.Equal(t, "Dhan SDK", Package{Name: "dhanhq", Title: "Dhan SDK"}.DisplayName())
	assert.Equal(t, "pandas", Package{Name: "pandas"}.DisplayName())
}

// TestCLIError_Error verifies message formatting with and without
// an underlying error.
func TestCLIError_Error(t *testing.T) {
	plain := NewCLIError(ExitConfigError, "bad manifest")
	assert.Equal(t, "bad manifest", plain.Error())

	underlying := errors.New("unexpected token")
	wrapped := WrapCLIError(ExitConfigError, "bad manifest", underlying)
	assert.Equal(t, "bad manifest: unexpected token", wrapped.Error())
}

// TestCLIError_Unwrap verifies errors.Is works through CLIError wrapping.
func TestCLIError_Unwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	wrapped := WrapCLIError(ExitInstallFailed, "failed to install dhanhq", underlying)

	assert.True(t, errors.Is(wrapped, underlying))
	assert.Equal(t, underlying, wrapped.Unwrap())
}

// TestExitCodes pins the exit code contract: critical install failures
// share the generic failure code 1, while environment-shaped failures
// get distinct codes.
func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitSuccess)
	assert.Equal(t, ExitCode(1), ExitGeneralError)
	assert.Equal(t, ExitCode(1), ExitInstallFailed)
	assert.Equal(t, ExitCode(2), ExitInterpreterNotFound)
	assert.Equal(t, ExitCode(3), ExitPipNotFound)
	assert.Equal(t, ExitCode(4), ExitConfigError)
	assert.Equal(t, ExitCode(5), ExitProbeFailed)
}
