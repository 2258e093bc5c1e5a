package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
run:
  coin: BTC
  start_date: "20240101"
  end_date: "20240102"
  strategy_ir: strategies/test.json
database:
  in_memory: true
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "backtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.Sim.InitialCapital)
	assert.Equal(t, "local", cfg.Events.Source)
	assert.Greater(t, cfg.Funding.FetchTimeout.Seconds(), 0.0)
	assert.True(t, cfg.Database.InMemory)
}

func TestLoadRejectsInvalidCoin(t *testing.T) {
	bad := `
run:
  coin: "../etc"
  start_date: "20240101"
  end_date: "20240102"
  strategy_ir: strategies/test.json
database:
  in_memory: true
`
	_, err := Load(writeConfigFile(t, bad))
	require.Error(t, err)
}

func TestLoadRejectsOversizedDateRange(t *testing.T) {
	bad := `
run:
  coin: BTC
  start_date: "20200101"
  end_date: "20240102"
  strategy_ir: strategies/test.json
database:
  in_memory: true
`
	_, err := Load(writeConfigFile(t, bad))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/backtest.yaml")
	require.Error(t, err)
}

func TestFundingFetchTimeoutDefault(t *testing.T) {
	assert.Greater(t, FundingFetchTimeout(FundingConfig{}).Seconds(), 0.0)
}

func TestFundingFetchTimeoutHonorsConfigured(t *testing.T) {
	cfg := FundingConfig{FetchTimeout: 5 * 1_000_000_000} // 5s in time.Duration units
	assert.Equal(t, cfg.FetchTimeout, FundingFetchTimeout(cfg))
}
