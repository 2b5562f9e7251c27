package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FRELookup/internal/resolver"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(resolverModeEnv, "")

	cfg := Load()
	require.Equal(t, defaultFilingsURL, cfg.Datasets.FilingsURL)
	require.Equal(t, 15*time.Second, cfg.Datasets.Timeout)
	require.Equal(t, 15*time.Second, cfg.Resolver.Timeout)
	require.Equal(t, resolver.ModeStatic, cfg.Resolver.Mode)
	require.Equal(t, resolver.DefaultItemCodes(), resolver.NewStaticStrategy(cfg.Resolver.ItemCodes).Table())
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
datasets:
  filingsUrl: https://mirror.example/fre.csv
resolver:
  mode: dynamic
  timeout: 5s
  itemCodes:
    "8.1": "1"
cache:
  refreshInterval: 30m
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg := LoadFile(defaultConfig(), path)
	require.Equal(t, "https://mirror.example/fre.csv", cfg.Datasets.FilingsURL)
	require.Equal(t, defaultPlansURL, cfg.Datasets.PlansURL)
	require.Equal(t, "dynamic", cfg.Resolver.Mode)
	require.Equal(t, 5*time.Second, cfg.Resolver.Timeout)
	require.Equal(t, map[string]string{"8.1": "1"}, cfg.Resolver.ItemCodes)
	require.Equal(t, 30*time.Minute, cfg.Cache.RefreshInterval)
	require.Equal(t, 2*time.Hour, cfg.Cache.SessionIdle)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFileBadInputKeepsBase(t *testing.T) {
	base := defaultConfig()

	cfg := LoadFile(base, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Equal(t, base.Datasets, cfg.Datasets)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datasets: [unterminated"), 0o600))
	cfg = LoadFile(base, path)
	require.Equal(t, base.Server, cfg.Server)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(filingsURLEnv, "https://env/fre.csv")
	t.Setenv(plansURLEnv, "https://env/planos.xlsx")
	t.Setenv(viewerBaseEnv, "https://env/ENET")
	t.Setenv(resolverModeEnv, "DYNAMIC")
	t.Setenv(listenAddrEnv, ":9090")
	t.Setenv(logLevelEnv, "warn")

	cfg := Load()
	require.Equal(t, "https://env/fre.csv", cfg.Datasets.FilingsURL)
	require.Equal(t, "https://env/planos.xlsx", cfg.Datasets.PlansURL)
	require.Equal(t, "https://env/ENET", cfg.Resolver.ViewerBase)
	require.Equal(t, resolver.ModeDynamic, cfg.Resolver.Mode)
	require.Equal(t, ":9090", cfg.Server.ListenAddr)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestUnknownModeFallsBackToStatic(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(resolverModeEnv, "scrape-everything")

	require.Equal(t, resolver.ModeStatic, Load().Resolver.Mode)
}
