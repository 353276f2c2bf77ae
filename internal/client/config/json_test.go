package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "crux.json", map[string]any{
		"provider":             "cognito",
		"aws_region":           "eu-west-1",
		"cognito_user_pool_id": "eu-west-1_pool",
		"cognito_client_id":    "client",
		"resend_cooldown":      "1m",
		"code_length":          8,
	})

	t.Run("loads from -config", func(t *testing.T) {
		os.Args = []string{"crux", "-config", path}

		var cfg Config
		cfg.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, ProviderCognito, cfg.Provider)
		assert.Equal(t, "eu-west-1", cfg.AWSRegion)
		assert.Equal(t, "eu-west-1_pool", cfg.CognitoUserPoolID)
		assert.Equal(t, "client", cfg.CognitoClientID)
		assert.Equal(t, time.Minute, cfg.ResendCooldown)
		assert.Equal(t, 8, cfg.CodeLength)
		assert.Equal(t, "crux.db", cfg.VaultDBPath, "absent keys keep the earlier value")
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"crux"}

		cfg := Config{Provider: "local", ResendCooldown: 42 * time.Second}
		parseJson(&cfg)

		assert.Equal(t, Config{Provider: "local", ResendCooldown: 42 * time.Second}, cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"crux", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"crux", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
