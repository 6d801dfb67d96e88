package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := GetRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNetlistsCommand(t *testing.T) {
	out, err := execute(t, "netlists")
	require.NoError(t, err)
	assert.Contains(t, out, "coffeeshop")
	assert.Contains(t, out, "exchange")
	assert.Contains(t, out, "num_buyers")
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "coffee.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
netlist: coffeeshop
seed: 1
output_dir: ignored
store: `+filepath.Join(dir, "runs.db")+`
logging:
  console: false
params:
  num_buyers: 3
`), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "run", "--config", cfgPath, "--out", outDir, "--ticks", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "(coffeeshop): 4 ticks, 4 rows")
	assert.Contains(t, out, "coffee_shop_wallet")

	raw, err := os.ReadFile(filepath.Join(outDir, "data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Tick, Second, Min, Hour, Day, Month, Year, coffee_shop_wallet"))

	_, err = os.Stat(filepath.Join(dir, "ignored"))
	assert.True(t, os.IsNotExist(err), "--out replaces output_dir")
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("seed: 1\n"), 0o644))

	_, err := execute(t, "run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netlist is required")
}

func TestRunZeroTicks(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "coffee.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("netlist: coffeeshop\nlogging:\n  console: false\n"), 0o644))

	_, err := execute(t, "run", "--config", cfgPath, "--out", filepath.Join(dir, "out"), "--ticks", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max ticks must be >= 1")
}
