package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/tradestack/internal/model"
)

// TestDefault pins the built-in manifest: the critical pair, the auxiliary
// batch, and the three verification steps.
func TestDefault(t *testing.T) {
	set := Default()

	require.Len(t, set.Critical, 2)
	assert.Equal(t, "dhanhq", set.Critical[0].Name)
	assert.Equal(t, "backtrader", set.Critical[1].Name)
	for _, pkg := range set.Critical {
		assert.True(t, pkg.Critical, "%s must be critical", pkg.Name)
	}

	auxNames := make([]string, 0, len(set.Auxiliary))
	for _, pkg := range set.Auxiliary {
		assert.False(t, pkg.Critical, "%s must not be critical", pkg.Name)
		auxNames = append(auxNames, pkg.Name)
	}
	assert.Equal(t, []string{"pandas", "numpy", "requests", "matplotlib", "pytz"}, auxNames)

	require.Len(t, set.Steps, 3)
	assert.Equal(t, "core", set.Steps[0].Name)
	assert.Equal(t, []string{"backtrader", "dhanhq"}, set.Steps[0].Modules)
	assert.Equal(t, "data", set.Steps[1].Name)
	assert.Equal(t, "network", set.Steps[2].Name)
}

// TestSet_All verifies ordering: critical packages first, then auxiliary.
func TestSet_All(t *testing.T) {
	all := Default().All()
	require.Len(t, all, 7)
	assert.Equal(t, "dhanhq", all[0].Name)
	assert.Equal(t, "backtrader", all[1].Name)
	assert.Equal(t, "pandas", all[2].Name)
}

// writeManifest is a test helper that writes manifest content into a
// temp directory and returns the file path.
func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradestack.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_OverridesWithComments verifies JSONC parsing and that an
// override list replaces its default while the other list is kept.
func TestLoad_OverridesWithComments(t *testing.T) {
	path := writeManifest(t, `{
  // switch the brokerage SDK to Zerodha
  "critical": [
    {"name": "kiteconnect", "title": "Kite Connect"},
    {"name": "backtrader", "pin": "1.9.78.123"},
  ],
}`)

	set, err := Load(path)
	require.NoError(t, err)

	require.Len(t, set.Critical, 2)
	assert.Equal(t, "kiteconnect", set.Critical[0].Name)
	assert.Equal(t, "Kite Connect", set.Critical[0].Title)
	assert.True(t, set.Critical[0].Critical, "critical flag is implied by the list")
	assert.Equal(t, "backtrader==1.9.78.123", set.Critical[1].Requirement())

	// Auxiliary list was not overridden — defaults apply.
	assert.Equal(t, Default().Auxiliary, set.Auxiliary)
	// Verification steps are always the built-in ones.
	assert.Equal(t, Default().Steps, set.Steps)
}

// TestLoad_AuxiliaryOverrideClearsCriticalFlag verifies a package placed
// in the auxiliary list is never treated as critical, whatever the file says.
func TestLoad_AuxiliaryOverrideClearsCriticalFlag(t *testing.T) {
	path := writeManifest(t, `{"auxiliary": [{"name": "flask", "critical": true}]}`)

	set, err := Load(path)
	require.NoError(t, err)

	require.Len(t, set.Auxiliary, 1)
	assert.Equal(t, "flask", set.Auxiliary[0].Name)
	assert.False(t, set.Auxiliary[0].Critical)
}

// TestLoad_InvalidPackageName verifies a bad package name is a config
// error with the config exit code.
func TestLoad_InvalidPackageName(t *testing.T) {
	path := writeManifest(t, `{"auxiliary": [{"name": "bad name"}]}`)

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoad_Missing verifies a nonexistent manifest path is a config error.
func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoad_Unparsable verifies malformed JSON is a config error.
func TestLoad_Unparsable(t *testing.T) {
	path := writeManifest(t, `{"critical": [`)

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestFind verifies discovery order and that a missing manifest returns
// an empty path rather than an error.
func TestFind(t *testing.T) {
	t.Run("jsonc preferred", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tradestack.jsonc"), []byte("{}"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tradestack.json"), []byte("{}"), 0o644))

		assert.Equal(t, filepath.Join(dir, "tradestack.jsonc"), Find(dir))
	})

	t.Run("json fallback", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tradestack.json"), []byte("{}"), 0o644))

		assert.Equal(t, filepath.Join(dir, "tradestack.json"), Find(dir))
	})

	t.Run("none", func(t *testing.T) {
		assert.Equal(t, "", Find(t.TempDir()))
	})
}
