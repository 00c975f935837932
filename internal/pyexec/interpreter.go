package pyexec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/tradestack/internal/model"
	"github.com/mmr-tortoise/tradestack/internal/runner"
)

// defaultCandidates are the interpreter names tried on PATH, in order,
// when no explicit interpreter is given. python3 comes first because on
// many systems plain `python` is either absent or Python 2.
var defaultCandidates = []string{"python3", "python"}

// Resolve determines which Python interpreter binary to use.
//
// When explicit is non-empty it is honored as-is: a path (anything
// containing a separator) must exist on disk, a bare name must resolve on
// PATH. When explicit is empty, the default candidates are searched on PATH.
//
// All failures are wrapped in model.CLIError with ExitInterpreterNotFound.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if strings.ContainsRune(explicit, os.PathSeparator) {
			if _, err := os.Stat(explicit); err != nil {
				return "", model.WrapCLIError(model.ExitInterpreterNotFound,
					fmt.Sprintf("python interpreter not found: %s", explicit), err)
			}
			return explicit, nil
		}
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", model.WrapCLIError(model.ExitInterpreterNotFound,
				fmt.Sprintf("python interpreter %q not found on PATH", explicit), err)
		}
		return path, nil
	}

	for _, candidate := range defaultCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", model.NewCLIError(model.ExitInterpreterNotFound,
		fmt.Sprintf("no python interpreter found on PATH (tried %s)", strings.Join(defaultCandidates, ", ")))
}

// Interpreter runs short code snippets in a resolved Python interpreter.
type Interpreter struct {
	// bin is the interpreter binary.
	bin string

	// run executes the actual commands. Injected so tests can fake it.
	run runner.CommandRunner
}

// NewInterpreter creates an Interpreter for the given binary.
func NewInterpreter(bin string, run runner.CommandRunner) *Interpreter {
	return &Interpreter{bin: bin, run: run}
}

// Bin returns the interpreter binary path.
func (i *Interpreter) Bin() string {
	return i.bin
}

// Version returns the interpreter's version line, e.g. "Python 3.12.1".
func (i *Interpreter) Version(ctx context.Context) (string, error) {
	out, err := i.run.RunOutput(ctx, i.bin, "--version")
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", i.bin, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CheckImport attempts to import a single module. Returns nil when the
// import succeeds, otherwise an error carrying the interpreter's final
// error line (typically "ModuleNotFoundError: No module named '...'").
func (i *Interpreter) CheckImport(ctx context.Context, module string) error {
	out, err := i.run.RunOutput(ctx, i.bin, "-c", "import "+module)
	if err != nil {
		if detail := lastLine(out); detail != "" {
			return fmt.Errorf("import %s: %s", module, detail)
		}
		return fmt.Errorf("import %s: %w", module, err)
	}
	return nil
}

// Verify runs one verification step: imports all the step's modules in a
// single interpreter invocation and collects each module's __version__.
//
// The result is purely informational. A failed step produces OK=false with
// the interpreter's error text in Detail; it never returns a Go error, so
// callers run every step regardless of earlier outcomes.
func (i *Interpreter) Verify(ctx context.Context, step model.VerifyStep) model.VerifyResult {
	out, err := i.run.RunOutput(ctx, i.bin, "-c", verifySnippet(step))
	if err != nil {
		detail := lastLine(out)
		if detail == "" {
			detail = err.Error()
		}
		return model.VerifyResult{Step: step.Name, OK: false, Detail: detail}
	}

	return model.VerifyResult{
		Step:     step.Name,
		OK:       true,
		Versions: parseVersions(out),
	}
}

// verifySnippet builds the Python code for a verification step: import
// every module, then print "module version" for each. getattr with an
// "unknown" fallback covers modules that expose no __version__.
func verifySnippet(step model.VerifyStep) string {
	var b strings.Builder
	for _, module := range step.Modules {
		fmt.Fprintf(&b, "import %s\n", module)
	}
	for _, module := range step.Modules {
		fmt.Fprintf(&b, "print(%q, getattr(%s, \"__version__\", \"unknown\"))\n", module, module)
	}
	return b.String()
}

// parseVersions parses the "module version" lines printed by verifySnippet.
// Malformed lines are skipped rather than failing the whole step.
func parseVersions(out []byte) []model.PackageVersion {
	var versions []model.PackageVersion
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		versions = append(versions, model.PackageVersion{Name: fields[0], Version: fields[1]})
	}
	return versions
}

// lastLine returns the final non-empty line of command output. For Python
// tracebacks this is the actual error message (e.g. the ImportError line).
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	for idx := len(lines) - 1; idx >= 0; idx-- {
		if line := strings.TrimSpace(lines[idx]); line != "" {
			return line
		}
	}
	return ""
}
