package config

import (
	"github.com/caarlos0/env/v11"
)

const envPrefix = "CRUX_"

// parseEnv overlays Config with CRUX_* variables. Unset variables leave the
// field as it is.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
