// Package cli implements the cobra-based CLI commands for tradestack.
//
// Each subcommand (setup, check, status) is defined in its own file within
// this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags. Running the binary
// with no arguments executes the full setup flow — that is the
// compatibility contract with the original single-entry installer.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/tradestack/internal/manifest"
	"github.com/mmr-tortoise/tradestack/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine consumption.
	// When false (default), output uses human-readable text format.
	jsonOutput bool

	// verbose enables debug-level logging on stderr, including a trace of
	// every spawned pip/python command.
	verbose bool

	// noPause disables the interactive "Press Enter" pauses. Pausing is
	// also skipped automatically when stdin is not a terminal.
	noPause bool

	// pythonBin overrides the interpreter used for pip and snippets.
	// Empty means search PATH (python3, then python).
	pythonBin string

	// manifestPath overrides package-manifest discovery.
	manifestPath string
)

// log is the package-wide logger. It is a no-op until the root command's
// PersistentPreRun configures it from the --verbose flag.
var log = zerolog.Nop()

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// Unlike a pure command-group root, this root has a RunE: invoked bare it
// runs the setup flow, preserving the original installer's single-entry
// behavior. Subcommands provide the rest of the functionality.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "tradestack",
		Short: "Bootstrap the Dhan + Backtrader Python trading environment",
		Long: `tradestack installs and verifies the Python packages needed for a
Dhan + Backtrader trading integration: the Dhan brokerage SDK, the
Backtrader backtesting framework, and the supporting data libraries.

Run it with no arguments to perform the full setup. Use "check" to
diagnose an existing environment and "status" to list installed versions.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// The logger must be configured before any RunE executes, for the
		// root command and every subcommand alike.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogger()
		},

		// Bare invocation runs the full setup flow.
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context())
		},
	}

	// PersistentFlags are inherited by all subcommands. This is the cobra
	// mechanism for global flags — any flag defined here is automatically
	// available in every subcommand without re-declaration.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noPause, "no-pause", false, "Skip interactive pauses")
	rootCmd.PersistentFlags().StringVar(&pythonBin, "python", "", "Python interpreter to use (default: python3 or python from PATH)")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "Package manifest file (default: tradestack.jsonc in the working directory)")

	// Register subcommands. Each subcommand is defined in its own file
	// (setup.go, check.go, status.go) and returns a *cobra.Command.
	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewStatusCommand())

	return rootCmd
}

// configureLogger builds the stderr console logger from the --verbose flag.
func configureLogger() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own
// exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// Generic error — exit with code 1.
		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// We write to stderr for errors, even in JSON mode, because stdout
		// is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		// Text format: "Error: <message>" on stderr.
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// pauseForAck blocks until the user presses Enter. It is a no-op under
// --no-pause and when stdin is not a terminal, so scripted and CI runs
// never hang on it.
func pauseForAck() {
	if noPause {
		return
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return
	}
	fmt.Print("\nPress Enter to continue...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}

// loadManifest resolves the package manifest: the --manifest flag if set,
// otherwise discovery in the working directory, otherwise the built-in
// defaults.
func loadManifest() (*manifest.Set, error) {
	if manifestPath != "" {
		log.Debug().Str("path", manifestPath).Msg("loading manifest from flag")
		return manifest.Load(manifestPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	if path := manifest.Find(cwd); path != "" {
		log.Debug().Str("path", path).Msg("loading discovered manifest")
		return manifest.Load(path)
	}
	return manifest.Default(), nil
}
