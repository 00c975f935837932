package pip

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmr-tortoise/tradestack/internal/model"
	"github.com/mmr-tortoise/tradestack/internal/runner"
)

// Manager provides pip operations through a resolved Python interpreter.
type Manager struct {
	// python is the interpreter binary used for `python -m pip`.
	python string

	// run executes the actual commands. Injected so tests can fake it.
	run runner.CommandRunner
}

// NewManager creates a pip Manager for the given interpreter binary.
func NewManager(python string, run runner.CommandRunner) *Manager {
	return &Manager{python: python, run: run}
}

// Python returns the interpreter binary this manager installs into.
func (m *Manager) Python() string {
	return m.python
}

// EnsureAvailable verifies that the interpreter can run pip at all.
//
// It runs `python -m pip --version`, which exits non-zero when the pip
// module is missing from the environment. The version output itself is
// discarded; only availability matters here (use Version for display).
func (m *Manager) EnsureAvailable(ctx context.Context) error {
	if _, err := m.run.RunOutput(ctx, m.python, "-m", "pip", "--version"); err != nil {
		return model.WrapCLIError(model.ExitPipNotFound,
			fmt.Sprintf("pip is not available in %s (try: %s -m ensurepip)", m.python, m.python), err)
	}
	return nil
}

// Version returns the pip version line, e.g. "pip 24.0 from ...".
func (m *Manager) Version(ctx context.Context) (string, error) {
	out, err := m.run.RunOutput(ctx, m.python, "-m", "pip", "--version")
	if err != nil {
		return "", model.WrapCLIError(model.ExitPipNotFound,
			fmt.Sprintf("pip is not available in %s", m.python), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Install installs a single package, streaming pip's own progress output
// to the console. The requirement string includes the version pin when
// the package carries one.
func (m *Manager) Install(ctx context.Context, pkg model.Package) error {
	if err := m.run.Run(ctx, m.python, "-m", "pip", "install", pkg.Requirement()); err != nil {
		return fmt.Errorf("pip install %s: %w", pkg.Requirement(), err)
	}
	return nil
}

// InstallAll installs a batch of packages in a single pip invocation.
//
// This mirrors how the auxiliary batch is installed: one shared pip run,
// so per-package failure is not individually detected — pip's own console
// output is the only signal for which requirement broke the run.
func (m *Manager) InstallAll(ctx context.Context, pkgs []model.Package) error {
	if len(pkgs) == 0 {
		return nil
	}

	args := []string{"-m", "pip", "install"}
	for _, pkg := range pkgs {
		args = append(args, pkg.Requirement())
	}

	if err := m.run.Run(ctx, m.python, args...); err != nil {
		return fmt.Errorf("pip install (batch of %d): %w", len(pkgs), err)
	}
	return nil
}

// InstalledVersion returns the installed version of a package by parsing
// `pip show <name>` output. Returns an error when the package is not
// installed or the output carries no Version line.
func (m *Manager) InstalledVersion(ctx context.Context, name string) (string, error) {
	out, err := m.run.RunOutput(ctx, m.python, "-m", "pip", "show", name)
	if err != nil {
		return "", fmt.Errorf("package %s is not installed: %w", name, err)
	}

	// pip show output is "Header: value" lines; we only need Version.
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("pip show %s returned no version", name)
}
