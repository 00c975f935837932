// Package pyexec wraps the Python interpreter.
//
// It resolves the interpreter binary (explicit override or PATH search)
// and runs short `-c` snippets: import verification after installs, and
// single-module import checks for the environment doctor.
//
// Like package pip, all invocations go through runner.CommandRunner so the
// snippet paths are testable without a Python toolchain on the machine.
package pyexec
