package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) string {
	return "-env=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]string{noDotEnv(t)})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.LedgerDriver)
	assert.Equal(t, DriverMemory, cfg.StatsDriver)
	assert.Equal(t, int64(8453), cfg.EVMChainID)
	assert.InDelta(t, 0.06, cfg.BotFireProbability, 1e-9)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STATS_DRIVER", "sqlite")
	t.Setenv("STATS_PATH", "/tmp/stats.db")
	t.Setenv("BOT_FIRE_PROBABILITY", "0.5")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Parse([]string{noDotEnv(t)})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StatsDriver)
	assert.Equal(t, "/tmp/stats.db", cfg.StatsPath)
	assert.InDelta(t, 0.5, cfg.BotFireProbability, 1e-9)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
}

func TestParse_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BOT_FIRE_PROBABILITY", "0.5")

	cfg, err := Parse([]string{noDotEnv(t), "-p", "7070", "-bot-p", "0"})
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Zero(t, cfg.BotFireProbability)
}

func TestParse_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_DRIVER=postgres\nDATABASE_URL=postgres://dotenv\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LEDGER_DRIVER")
		os.Unsetenv("DATABASE_URL")
	})

	cfg, err := Parse([]string{"-env=" + path})
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.LedgerDriver)
	assert.Equal(t, "postgres://dotenv", cfg.DatabaseURL)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"postgres ledger without url", map[string]string{"LEDGER_DRIVER": "postgres"}},
		{"evm ledger without key", map[string]string{"LEDGER_DRIVER": "evm", "EVM_RPC_URL": "http://rpc", "EVM_CONTRACT": "0x1"}},
		{"unknown stats driver", map[string]string{"STATS_DRIVER": "redis"}},
		{"probability above one", map[string]string{"BOT_FIRE_PROBABILITY": "1.5"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse([]string{noDotEnv(t)})
			assert.Error(t, err)
		})
	}
}
