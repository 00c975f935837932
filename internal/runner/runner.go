// Package runner provides a small abstraction over os/exec so that every
// shell-out in the CLI (pip installs, interpreter snippets) goes through a
// single, fake-able interface.
package runner

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// CommandRunner defines the interface for executing external commands.
type CommandRunner interface {
	// Run executes the command with stdout/stderr streamed to the
	// process's own stdout/stderr. Used for pip installs, where the
	// user should see pip's progress output live.
	Run(ctx context.Context, name string, args ...string) error

	// RunOutput executes the command and returns its combined output.
	// Used for version queries and interpreter snippets, where the
	// output is parsed rather than shown.
	RunOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the concrete CommandRunner backed by os/exec.
// Every invocation is traced at debug level.
type ExecRunner struct {
	log zerolog.Logger
}

// NewExecRunner creates an ExecRunner that traces commands on the given logger.
func NewExecRunner(log zerolog.Logger) ExecRunner {
	return ExecRunner{log: log}
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	r.log.Debug().Str("cmd", name).Strs("args", args).Msg("exec")

	// #nosec G204 — command name and args are constructed internally
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r ExecRunner) RunOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.log.Debug().Str("cmd", name).Strs("args", args).Msg("exec (captured)")

	// #nosec G204 — command name and args are constructed internally
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
