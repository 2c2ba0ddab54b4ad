package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-launchpad/internal/solana"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse("server", nil, envMap(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 4000, c.Port)
	assert.Equal(t, StoreFile, c.Store)
	assert.Equal(t, "!solclawnbot", c.Trigger)
	assert.Equal(t, "solclawn", c.Submolt)
	assert.Equal(t, 7*24*time.Hour, c.Cooldown())
	assert.Equal(t, 0.1, c.DefaultDevBuySOL)
	assert.Equal(t, solana.DefaultFeeRouterProgramID, c.RouterProgramID)
	assert.Equal(t, 50, c.Limits().MaxName)
	assert.Equal(t, 10, c.Limits().MaxSymbol)
	assert.Equal(t, 500, c.Limits().MaxDescription)
}

func TestParse_EnvThenFlags(t *testing.T) {
	env := envMap(map[string]string{
		"PORT":                 "5000",
		"LAUNCH_COOLDOWN_DAYS": "0.5",
		"MOLTBOOK_SUBMOLT":     "agents",
		"MAX_TOKEN_SYMBOL_LEN": "8",
	})

	c, err := Parse("server", []string{"--port", "6000"}, env, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 6000, c.Port, "flag wins over env")
	assert.Equal(t, 12*time.Hour, c.Cooldown())
	assert.Equal(t, "agents", c.Submolt)
	assert.Equal(t, 8, c.MaxSymbolLen)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"malformed env number", nil, map[string]string{"PORT": "abc"}},
		{"postgres without dsn", []string{"--store", "postgres"}, nil},
		{"unknown store", []string{"--store", "sqlite"}, nil},
		{"bad platform wallet", nil, map[string]string{"PLATFORM_WALLET": "nope"}},
		{"negative cooldown", nil, map[string]string{"LAUNCH_COOLDOWN_DAYS": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("server", tt.args, envMap(tt.env), io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestLaunchConfig(t *testing.T) {
	c, err := Parse("server", []string{"--moltbook-api-key", "k", "--verify-live-post"}, envMap(nil), io.Discard)
	require.NoError(t, err)

	lc := c.LaunchConfig("collector")
	assert.Equal(t, "k", lc.APIKey)
	assert.Equal(t, "collector", lc.CollectorWallet)
	assert.True(t, lc.VerifyLivePost)
	assert.Equal(t, 0.00005, lc.DefaultPriorityFeeSOL)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LAUNCHPAD_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("LAUNCHPAD_TEST_VALUE", "")
	os.Unsetenv("LAUNCHPAD_TEST_VALUE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("LAUNCHPAD_TEST_VALUE"))
}
