// Package model defines the domain types and value objects for the
// tradestack CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Package, InstallResult, VerifyStep, etc.) are transient
// representations of a single setup or check run — the authoritative store
// for installed-package state is pip itself, queried at runtime.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
