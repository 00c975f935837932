// Package cli — setup.go implements the "tradestack setup" command
// (also invoked by running the binary with no arguments).
//
// The setup command is the primary user-facing operation. It installs the
// trading-stack packages and verifies they import, with a two-tier failure
// policy:
//
//  1. Critical packages (brokerage SDK, backtesting framework) are installed
//     one at a time; the first failure aborts the run with exit code 1.
//  2. The auxiliary batch is installed best-effort in one pip invocation;
//     failures are reported but never change the exit code.
//  3. Verification steps are purely informational.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/tradestack/internal/manifest"
	"github.com/mmr-tortoise/tradestack/internal/model"
	"github.com/mmr-tortoise/tradestack/internal/pip"
	"github.com/mmr-tortoise/tradestack/internal/pyexec"
	"github.com/mmr-tortoise/tradestack/internal/runner"
)

// packageInstaller is the slice of pip.Manager that setup needs.
// Declared here so tests can drive the flow with a fake.
type packageInstaller interface {
	EnsureAvailable(ctx context.Context) error
	Install(ctx context.Context, pkg model.Package) error
	InstallAll(ctx context.Context, pkgs []model.Package) error
}

// importVerifier is the slice of pyexec.Interpreter that setup needs.
type importVerifier interface {
	Verify(ctx context.Context, step model.VerifyStep) model.VerifyResult
}

// NewSetupCommand creates the "setup" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Install and verify the trading-stack Python packages",
		Long: `Install the Dhan SDK, Backtrader, and the supporting data libraries,
then verify that everything imports.

The Dhan SDK and Backtrader are critical: if either fails to install, the
run stops with exit code 1. The remaining packages are installed best-effort
and their failures do not affect the exit code.

Examples:
  tradestack setup
  tradestack setup --python python3.12
  tradestack setup --no-pause`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context())
		},
	}
}

// runSetup wires the real collaborators and hands off to executeSetup.
func runSetup(ctx context.Context) error {
	set, err := loadManifest()
	if err != nil {
		return err
	}

	python, err := pyexec.Resolve(pythonBin)
	if err != nil {
		return err
	}
	log.Debug().Str("python", python).Msg("resolved interpreter")

	run := runner.NewExecRunner(log)
	return executeSetup(ctx, os.Stdout,
		pip.NewManager(python, run),
		pyexec.NewInterpreter(python, run),
		set, pauseForAck)
}

// executeSetup is the setup orchestration, separated from collaborator
// construction so the whole flow is unit-testable with fakes.
//
// Control flow is strictly sequential: banner, pip availability, critical
// installs (fatal, short-circuiting), auxiliary batch (best-effort),
// verification steps (informational), completion banner, pause.
func executeSetup(ctx context.Context, out io.Writer, installer packageInstaller, verifier importVerifier, set *manifest.Set, pause func()) error {
	printBanner(out, "Dhan + Backtrader environment setup")

	if err := installer.EnsureAvailable(ctx); err != nil {
		return err
	}

	// Critical installs: one at a time, in manifest order. The first
	// failure aborts — the remaining criticals and the auxiliary batch
	// are never attempted.
	var results []model.InstallResult
	for idx, pkg := range set.Critical {
		fmt.Fprintf(out, "\nInstalling %s (%s)...\n", pkg.DisplayName(), pkg.Requirement())
		if err := installer.Install(ctx, pkg); err != nil {
			results = append(results, model.InstallResult{Package: pkg, Status: model.StatusFailed, Detail: err.Error()})
			for _, rest := range set.Critical[idx+1:] {
				results = append(results, model.InstallResult{Package: rest, Status: model.StatusSkipped})
			}
			for _, rest := range set.Auxiliary {
				results = append(results, model.InstallResult{Package: rest, Status: model.StatusSkipped})
			}

			fmt.Fprintf(out, "❌ Failed to install %s.\n", pkg.DisplayName())
			fmt.Fprintf(out, "   Check your network connection and package registry access, then rerun setup.\n")
			fmt.Fprintf(out, "\n%s\n", tallyLine(results))
			pause()
			return model.WrapCLIError(model.ExitInstallFailed,
				fmt.Sprintf("failed to install %s", pkg.Name), err)
		}
		results = append(results, model.InstallResult{Package: pkg, Status: model.StatusInstalled})
		fmt.Fprintf(out, "✅ %s installed\n", pkg.DisplayName())
	}

	// Auxiliary batch: a single pip invocation, no per-package failure
	// detection. A failure is reported but does not stop the run.
	if len(set.Auxiliary) > 0 {
		fmt.Fprintf(out, "\nInstalling auxiliary packages (%s)...\n", requirementList(set.Auxiliary))
		if err := installer.InstallAll(ctx, set.Auxiliary); err != nil {
			// The batch shares one pip run, so there is no per-package
			// outcome to record; the whole batch is marked failed.
			for _, pkg := range set.Auxiliary {
				results = append(results, model.InstallResult{Package: pkg, Status: model.StatusFailed, Detail: err.Error()})
			}
			fmt.Fprintf(out, "⚠️  Auxiliary install reported errors: %v\n", err)
			fmt.Fprintf(out, "   Continuing — see pip's output above for the failing package.\n")
		} else {
			for _, pkg := range set.Auxiliary {
				results = append(results, model.InstallResult{Package: pkg, Status: model.StatusInstalled})
			}
			fmt.Fprintf(out, "✅ Auxiliary packages installed\n")
		}
	}

	fmt.Fprintf(out, "\n%s\n", tallyLine(results))

	// Verification: every step runs regardless of the others' outcomes.
	fmt.Fprintf(out, "\nVerifying imports\n")
	for _, step := range set.Steps {
		fmt.Fprintln(out, formatVerifyLine(verifier.Verify(ctx, step)))
	}

	printBanner(out, "Setup complete")
	fmt.Fprintln(out, `
Before running the integration you still need your Dhan credentials:
  - client id
  - access token
  - API base URL (default: https://api.dhan.co)

Put them in tradestack.yaml, then run "tradestack check" to verify the
environment end to end.`)

	pause()
	return nil
}

// printBanner writes the framed section header used by the setup flow.
func printBanner(out io.Writer, title string) {
	line := strings.Repeat("=", 41)
	fmt.Fprintf(out, "%s\n %s\n%s\n", line, title, line)
}

// tallyLine summarizes install outcomes as a single console line,
// e.g. "Packages: 2 installed, 1 failed, 4 skipped".
func tallyLine(results []model.InstallResult) string {
	counts := map[model.InstallStatus]int{}
	for _, res := range results {
		counts[res.Status]++
	}

	parts := []string{fmt.Sprintf("%d installed", counts[model.StatusInstalled])}
	if n := counts[model.StatusFailed]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := counts[model.StatusSkipped]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	return "Packages: " + strings.Join(parts, ", ")
}

// requirementList joins package requirement strings for display.
func requirementList(pkgs []model.Package) string {
	reqs := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		reqs = append(reqs, pkg.Requirement())
	}
	return strings.Join(reqs, " ")
}

// formatVerifyLine renders one verification result as a single console line.
// Success lines carry the reported versions; failure lines carry the
// interpreter's error text.
func formatVerifyLine(res model.VerifyResult) string {
	if !res.OK {
		return fmt.Sprintf("❌ %s: %s", res.Step, res.Detail)
	}
	if len(res.Versions) == 0 {
		return fmt.Sprintf("✅ %s: ok", res.Step)
	}

	parts := make([]string, 0, len(res.Versions))
	for _, pv := range res.Versions {
		parts = append(parts, fmt.Sprintf("%s %s", pv.Name, pv.Version))
	}
	return fmt.Sprintf("✅ %s: %s", res.Step, strings.Join(parts, ", "))
}
