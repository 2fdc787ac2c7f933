package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DoyleJ11/verbyte-backend/internal/config"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
	"github.com/DoyleJ11/verbyte-backend/internal/hub"
	"github.com/DoyleJ11/verbyte-backend/internal/ledger"
	"github.com/DoyleJ11/verbyte-backend/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_MemoryAndSQLite(t *testing.T) {
	cfg := config.Config{
		Port:               8080,
		LogFormat:          "json",
		LedgerDriver:       config.DriverMemory,
		StatsDriver:        config.DriverSQLite,
		StatsPath:          filepath.Join(t.TempDir(), "stats.db"),
		BotFireProbability: 0.25,
	}
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &ledger.Memory{}, a.Ledger)
	assert.IsType(t, &stats.SQLiteStore{}, a.Stats)
	assert.Nil(t, a.Taunts)
	assert.InDelta(t, 0.25, a.Session.BotFireProbability, 1e-9)
	assert.Greater(t, a.Words.Len(), 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := a.NewEntry(ctx, "s1", hub.Identity{DeviceID: "dev"})
	assert.Equal(t, "s1", e.ID)

	v, err := e.Session.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusLobby, v.State.Status)
}

func TestNew_BadEVMConfig(t *testing.T) {
	cfg := config.Config{
		LedgerDriver:  config.DriverEVM,
		StatsDriver:   config.DriverMemory,
		EVMRPCURL:     "http://127.0.0.1:1",
		EVMContract:   "not-an-address",
		EVMPrivateKey: "00",
	}
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
