package config

import (
	"flag"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func cliCtxWithCfg(t *testing.T, cfgPath string) *cli.Context {
	t.Helper()
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	flagSet.String(FlagCfg, cfgPath, "")
	ctx := cli.NewContext(cli.NewApp(), flagSet, nil)
	require.NoError(t, ctx.Set(FlagCfg, cfgPath))

	return ctx
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "http://localhost:8545", cfg.Etherman.URL)
	require.Equal(t, time.Second, cfg.Etherman.WaitPeriodMonitorTx.Duration)
	require.Equal(t, 5*time.Second, cfg.Reconciler.WaitOnEmptyQueue.Duration)
	require.Equal(t, 5*time.Minute, cfg.Reconciler.ReapAbsentAfter.Duration)
	require.NotEmpty(t, cfg.Inventory.DBPath)
	require.NotEmpty(t, cfg.QR.TokenSecret)
	require.Equal(t, 5576, cfg.RPC.Port)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	cfgPath := path.Join(t.TempDir(), "custodia.toml")
	cfgContent := `
[Log]
Level = "debug"

[Etherman]
URL = "http://geth:8545"
BatchRegistryAddr = "0x1234567890123456789012345678901234567890"
WaitPeriodMonitorTx = "3s"

[Inventory]
DBPath = "/data/inventory.sqlite"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	cfg, err := Load(cliCtxWithCfg(t, cfgPath))
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "http://geth:8545", cfg.Etherman.URL)
	require.Equal(t, 3*time.Second, cfg.Etherman.WaitPeriodMonitorTx.Duration)
	require.Equal(t, "/data/inventory.sqlite", cfg.Inventory.DBPath)
	require.Equal(t,
		"0x1234567890123456789012345678901234567890",
		cfg.Etherman.BatchRegistryAddr.Hex(),
	)
	// untouched fields keep their defaults
	require.Equal(t, 5576, cfg.RPC.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	cfgPath := path.Join(t.TempDir(), "custodia.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[Log]\nLevel = \"warn\"\n"), 0600))
	t.Setenv("CUSTODIA_LOG_LEVEL", "error")

	cfg, err := Load(cliCtxWithCfg(t, cfgPath))
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Log.Level)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(cliCtxWithCfg(t, path.Join(t.TempDir(), "missing.toml")))
	require.Error(t, err)
}
