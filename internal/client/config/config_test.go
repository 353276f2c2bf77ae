package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ProviderLocal, c.Provider)
	assert.Equal(t, "crux.db", c.VaultDBPath)
	assert.Equal(t, SenderLog, c.SMSSender)
	assert.Equal(t, 29*time.Second, c.ResendCooldown)
	assert.Equal(t, 6, c.CodeLength)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown provider", func(c *Config) { c.Provider = "okta" }, false},
		{"cognito without client", func(c *Config) { c.Provider = ProviderCognito }, false},
		{"cognito with client", func(c *Config) { c.Provider = ProviderCognito; c.CognitoClientID = "abc" }, true},
		{"local without db", func(c *Config) { c.LocalIDPDBPath = "" }, false},
		{"bad sender", func(c *Config) { c.SMSSender = "pigeon" }, false},
		{"short cooldown", func(c *Config) { c.ResendCooldown = time.Millisecond }, false},
		{"bad code length", func(c *Config) { c.CodeLength = 2 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"provider":          "cognito",
		"cognito_client_id": "from-json",
		"vault_db":          "json.db",
		"resend_cooldown":   "45s",
	})
	t.Setenv("CRUX_COGNITO_CLIENT_ID", "from-env")
	t.Setenv("CRUX_VAULT_DB", "env.db")
	os.Args = []string{"crux", "-c", path, "-d", "flag.db"}

	cfg := LoadConfig()

	assert.Equal(t, ProviderCognito, cfg.Provider)
	assert.Equal(t, "from-env", cfg.CognitoClientID)
	assert.Equal(t, "flag.db", cfg.VaultDBPath)
	assert.Equal(t, 45*time.Second, cfg.ResendCooldown)
}

func TestLoadConfig_PanicsOnInvalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"crux", "-p", "okta"}

	require.Panics(t, func() { LoadConfig() })
}
