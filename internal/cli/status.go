// Package cli — status.go implements the "tradestack status" command.
//
// The status command lists each managed package with the version pip
// reports for it, as a text table or JSON. It is informational only and
// always exits 0 once pip itself is reachable.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/tradestack/internal/model"
	"github.com/mmr-tortoise/tradestack/internal/pip"
	"github.com/mmr-tortoise/tradestack/internal/pyexec"
	"github.com/mmr-tortoise/tradestack/internal/runner"
)

// statusRow is one package's entry in the status output.
type statusRow struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installed versions of the managed packages",
		Long: `Show each managed package with the version pip reports for it.

Examples:
  tradestack status
  tradestack status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// runStatus queries pip for every managed package and prints the table.
func runStatus(ctx context.Context) error {
	set, err := loadManifest()
	if err != nil {
		return err
	}

	python, err := pyexec.Resolve(pythonBin)
	if err != nil {
		return err
	}

	manager := pip.NewManager(python, runner.NewExecRunner(log))
	if err := manager.EnsureAvailable(ctx); err != nil {
		return err
	}

	rows := make([]statusRow, 0, len(set.Critical)+len(set.Auxiliary))
	for _, pkg := range set.All() {
		row := statusRow{Name: pkg.Name, Role: roleOf(pkg)}
		if version, verErr := manager.InstalledVersion(ctx, pkg.Name); verErr == nil {
			row.Installed = true
			row.Version = version
		} else {
			log.Debug().Str("package", pkg.Name).Err(verErr).Msg("not installed")
		}
		rows = append(rows, row)
	}

	printStatusResult(rows)
	return nil
}

// roleOf maps the Critical flag to its display string.
func roleOf(pkg model.Package) string {
	if pkg.Critical {
		return "critical"
	}
	return "auxiliary"
}

// printStatusResult outputs the package table in text or JSON format,
// depending on the global --json flag.
func printStatusResult(rows []statusRow) {
	if IsJSONOutput() {
		type resultJSON struct {
			Packages []statusRow `json:"packages"`
		}
		data, _ := json.MarshalIndent(resultJSON{Packages: rows}, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%-14s %-10s %s\n", "PACKAGE", "ROLE", "VERSION")
	for _, row := range rows {
		version := "-"
		if row.Installed {
			version = row.Version
		}
		fmt.Printf("%-14s %-10s %s\n", row.Name, row.Role, version)
	}
}
