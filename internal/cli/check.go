// Package cli — check.go implements the "tradestack check" command.
//
// The check command is the environment doctor: it verifies the Python
// toolchain, each managed package's importability, and the credentials
// file, and can optionally probe the broker API live. Every check runs
// regardless of earlier failures; the command exits non-zero only after
// the full report is printed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/tradestack/internal/broker"
	"github.com/mmr-tortoise/tradestack/internal/config"
	"github.com/mmr-tortoise/tradestack/internal/model"
	"github.com/mmr-tortoise/tradestack/internal/pip"
	"github.com/mmr-tortoise/tradestack/internal/pyexec"
	"github.com/mmr-tortoise/tradestack/internal/runner"
)

// checkFlags holds the flag values for the check command.
// These are bound to cobra flags in NewCheckCommand.
type checkFlags struct {
	// api enables the live broker API probe. Off by default because it
	// needs valid credentials and network access.
	api bool

	// configPath overrides credentials-file discovery.
	configPath string
}

// checkResult is one line of the doctor report.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// NewCheckCommand creates the "check" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Diagnose the trading environment",
		Long: `Check the Python toolchain, package imports, and credentials.

Runs every check and prints a report before exiting. With --api, also
probes the Dhan fund-limit endpoint using the configured credentials.

Examples:
  tradestack check
  tradestack check --api
  tradestack check --config ./staging/tradestack.yaml --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.api, "api", false, "Probe the broker API with the configured credentials")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Credentials file (default: tradestack.yaml in the working directory)")

	return cmd
}

// runCheck runs the doctor checks in order: toolchain, imports,
// credentials, optional API probe.
func runCheck(ctx context.Context, flags *checkFlags) error {
	set, err := loadManifest()
	if err != nil {
		return err
	}

	// A missing interpreter makes every later check meaningless, so it is
	// the one failure that aborts instead of being reported in the table.
	python, err := pyexec.Resolve(pythonBin)
	if err != nil {
		return err
	}

	run := runner.NewExecRunner(log)
	interp := pyexec.NewInterpreter(python, run)
	manager := pip.NewManager(python, run)

	var results []checkResult

	if ver, verErr := interp.Version(ctx); verErr != nil {
		results = append(results, checkResult{Name: "interpreter", OK: false, Detail: verErr.Error()})
	} else {
		results = append(results, checkResult{Name: "interpreter", OK: true, Detail: fmt.Sprintf("%s (%s)", ver, python)})
	}

	if ver, pipErr := manager.Version(ctx); pipErr != nil {
		results = append(results, checkResult{Name: "pip", OK: false, Detail: pipErr.Error()})
	} else {
		results = append(results, checkResult{Name: "pip", OK: true, Detail: ver})
	}

	// Import checks cover every managed package, critical and auxiliary
	// alike — the doctor reports, it does not enforce the two-tier policy.
	for _, pkg := range set.All() {
		name := "import " + pkg.Name
		if impErr := interp.CheckImport(ctx, pkg.Name); impErr != nil {
			results = append(results, checkResult{Name: name, OK: false, Detail: impErr.Error()})
		} else {
			results = append(results, checkResult{Name: name, OK: true})
		}
	}

	cfg, credResult := checkCredentials(flags.configPath)
	results = append(results, credResult)

	var probeErr error
	if flags.api {
		probeResult := checkResult{Name: "broker api", OK: false}
		switch {
		case cfg == nil:
			probeResult.Detail = "skipped: no valid credentials"
		default:
			probeErr = broker.NewProbe(cfg.Broker).FundLimits(ctx)
			if probeErr != nil {
				probeResult.Detail = probeErr.Error()
			} else {
				probeResult.OK = true
				probeResult.Detail = cfg.Broker.BaseURL + "/fundlimit reachable"
			}
		}
		results = append(results, probeResult)
	}

	printCheckReport(results)

	// The probe carries its own exit code when it was explicitly requested;
	// otherwise any failed check maps to the generic failure code.
	if flags.api && (probeErr != nil || cfg == nil) {
		return model.NewCLIError(model.ExitProbeFailed, "broker API probe failed")
	}
	for _, res := range results {
		if !res.OK {
			return model.NewCLIError(model.ExitGeneralError, "environment check failed")
		}
	}
	return nil
}

// checkCredentials locates and validates the credentials file. The parsed
// config is returned alongside the report line so the API probe can reuse
// it; it is nil whenever the check failed.
func checkCredentials(explicitPath string) (*config.Config, checkResult) {
	result := checkResult{Name: "credentials", OK: false}

	path := explicitPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			result.Detail = err.Error()
			return nil, result
		}
		path = config.Find(cwd)
	}
	if path == "" {
		result.Detail = fmt.Sprintf("%s not found (create it with your client id and access token)", config.DefaultFileName)
		return nil, result
	}

	cfg, err := config.Load(path)
	if err != nil {
		result.Detail = err.Error()
		return nil, result
	}
	if err := cfg.Validate(); err != nil {
		result.Detail = err.Error()
		return nil, result
	}

	result.OK = true
	result.Detail = fmt.Sprintf("client %s, token %s, %s",
		cfg.Broker.ClientID, config.Redact(cfg.Broker.AccessToken), cfg.Broker.BaseURL)
	return cfg, result
}

// printCheckReport outputs the doctor report in text or JSON format,
// depending on the global --json flag.
func printCheckReport(results []checkResult) {
	if IsJSONOutput() {
		type reportJSON struct {
			Checks []checkResult `json:"checks"`
		}
		data, _ := json.MarshalIndent(reportJSON{Checks: results}, "", "  ")
		fmt.Println(string(data))
		return
	}

	passed := 0
	for _, res := range results {
		mark := "❌"
		if res.OK {
			mark = "✅"
			passed++
		}
		if res.Detail != "" {
			fmt.Printf("%s %s — %s\n", mark, res.Name, res.Detail)
		} else {
			fmt.Printf("%s %s\n", mark, res.Name)
		}
	}
	fmt.Printf("\n%d/%d checks passed\n", passed, len(results))
}
