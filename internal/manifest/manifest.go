// Package manifest defines which Python packages tradestack manages.
//
// The built-in defaults mirror the Dhan + Backtrader integration's needs.
// An optional tradestack.jsonc file can override the package lists; the
// file supports JSONC (JSON with Comments), so this package uses
// github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/tradestack/internal/model"
)

// Set is the resolved package manifest for a run: the ordered critical
// packages, the auxiliary batch, and the verification steps.
type Set struct {
	// Critical packages are installed one at a time, in order. A failure
	// aborts setup with a non-zero exit.
	Critical []model.Package

	// Auxiliary packages are installed best-effort in a single batch.
	Auxiliary []model.Package

	// Steps are the post-install import verifications.
	Steps []model.VerifyStep
}

// All returns the critical packages followed by the auxiliary ones.
func (s *Set) All() []model.Package {
	all := make([]model.Package, 0, len(s.Critical)+len(s.Auxiliary))
	all = append(all, s.Critical...)
	all = append(all, s.Auxiliary...)
	return all
}

// Default returns the built-in manifest.
//
// The critical pair is the brokerage SDK and the backtesting framework;
// everything else is supporting data/plotting tooling. The verification
// steps group the packages the way the integration consumes them:
// trading core, dataframe stack, HTTP layer.
func Default() *Set {
	return &Set{
		Critical: []model.Package{
			{Name: "dhanhq", Title: "Dhan SDK", Critical: true},
			{Name: "backtrader", Title: "Backtrader", Critical: true},
		},
		Auxiliary: []model.Package{
			{Name: "pandas"},
			{Name: "numpy"},
			{Name: "requests"},
			{Name: "matplotlib"},
			{Name: "pytz"},
		},
		Steps: defaultSteps(),
	}
}

// defaultSteps returns the three built-in verification steps. They are
// fixed regardless of manifest overrides: the steps verify the integration
// surface, not the literal install list.
func defaultSteps() []model.VerifyStep {
	return []model.VerifyStep{
		{Name: "core", Modules: []string{"backtrader", "dhanhq"}},
		{Name: "data", Modules: []string{"pandas", "numpy"}},
		{Name: "network", Modules: []string{"requests"}},
	}
}

// fileSchema is the raw JSON structure of a tradestack.jsonc manifest.
// A list left out of the file keeps its built-in default.
type fileSchema struct {
	// Critical overrides the critical package list.
	Critical []model.Package `json:"critical,omitempty"`

	// Auxiliary overrides the auxiliary package list.
	Auxiliary []model.Package `json:"auxiliary,omitempty"`
}

// Load reads a manifest file, strips JSONC comments, and merges it over
// the built-in defaults.
//
// Returns a CLIError with ExitConfigError when the file is missing,
// unparsable, or names an invalid package.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("manifest not found: %s", path), err)
	}

	// Strip // and /* */ comments and trailing commas before parsing.
	clean := jsonc.ToJSON(data)

	var file fileSchema
	if err := json.Unmarshal(clean, &file); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid manifest %s", path), err)
	}

	set := Default()
	if len(file.Critical) > 0 {
		// Critical flags are implied by the list, not the file.
		for idx := range file.Critical {
			file.Critical[idx].Critical = true
		}
		set.Critical = file.Critical
	}
	if len(file.Auxiliary) > 0 {
		for idx := range file.Auxiliary {
			file.Auxiliary[idx].Critical = false
		}
		set.Auxiliary = file.Auxiliary
	}

	for _, pkg := range set.All() {
		if err := pkg.Validate(); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid manifest %s", path), err)
		}
	}
	return set, nil
}

// Find searches for a manifest file in the given directory.
//
// Search order: tradestack.jsonc, then tradestack.json. Returns the path
// of the first match, or "" when neither exists — a missing manifest is
// not an error, the built-in defaults apply.
func Find(dir string) string {
	candidates := []string{
		filepath.Join(dir, "tradestack.jsonc"),
		filepath.Join(dir, "tradestack.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
