package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("CRUX_PROVIDER", "cognito")
	t.Setenv("CRUX_RESEND_COOLDOWN", "10s")
	t.Setenv("CRUX_CODE_LENGTH", "8")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ProviderCognito, c.Provider)
	assert.Equal(t, 10*time.Second, c.ResendCooldown)
	assert.Equal(t, 8, c.CodeLength)
	assert.Equal(t, "crux.db", c.VaultDBPath, "unset variables keep defaults")
}

func TestParseEnv_PanicsOnBadValue(t *testing.T) {
	t.Setenv("CRUX_CODE_LENGTH", "six")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
