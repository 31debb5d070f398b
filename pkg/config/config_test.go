package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCURL, cfg.Chain.RPCURL)
	assert.Equal(t, DefaultDerivationPath, cfg.Wallet.DerivationPath)
	assert.Equal(t, ApprovalQueue, cfg.Wallet.Approval)
	assert.Equal(t, ModeWeb, cfg.View.Mode)
	assert.False(t, cfg.View.ShowEther)
	assert.Zero(t, cfg.View.RefreshInterval)
	assert.Empty(t, cfg.History.DBPath)
}

func TestLoadFromFile_YAMLAndEnv(t *testing.T) {
	p := writeFile(t, `
chain:
  rpc_url: http://node:8545
wallet:
  approval: auto
view:
  mode: tui
  show_ether: true
  refresh_interval: 30s
history:
  db_path: data/history.db
log:
  level: debug
  file: ""
`)
	t.Setenv("EXCHANGETT_RPC_URL", "http://override:8545")
	t.Setenv("WALLET_PRIVATE_KEY", "0xabc")

	cfg, err := LoadFromFile(p)
	require.NoError(t, err)

	assert.Equal(t, "http://override:8545", cfg.Chain.RPCURL)
	assert.Equal(t, ApprovalAuto, cfg.Wallet.Approval)
	assert.Equal(t, ModeTUI, cfg.View.Mode)
	assert.True(t, cfg.View.ShowEther)
	assert.Equal(t, 30*time.Second, cfg.View.RefreshInterval)
	assert.Equal(t, "data/history.db", cfg.History.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, "abc", cfg.Wallet.PrivateKey)
	assert.True(t, cfg.Wallet.HasInlineSecret())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"mode":     "view:\n  mode: gui\n",
		"approval": "wallet:\n  approval: maybe\n",
		"interval": "view:\n  refresh_interval: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFile(writeFile(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
