package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/crux/internal/common"
)

// Identity providers.
const (
	ProviderCognito = "cognito"
	ProviderLocal   = "local"
)

// Code senders used by the local provider.
const (
	SenderLog = "log"
	SenderSNS = "sns"
)

// Config holds runtime settings for the Crux CLI.
//
// Env tags are read with the CRUX_ prefix, e.g. CRUX_PROVIDER.
type Config struct {
	Provider string `env:"PROVIDER"`

	AWSRegion          string `env:"AWS_REGION"`
	CognitoUserPoolID  string `env:"COGNITO_USER_POOL_ID"`
	CognitoClientID    string `env:"COGNITO_CLIENT_ID"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	VaultDBPath    string `env:"VAULT_DB"`
	LocalIDPDBPath string `env:"LOCAL_IDP_DB"`
	LocalIDPSecret string `env:"LOCAL_IDP_SECRET"`
	SMSSender      string `env:"SMS_SENDER"`

	ResendCooldown time.Duration `env:"RESEND_COOLDOWN"`
	CodeLength     int           `env:"CODE_LENGTH"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with defaults that run fully offline.
func (c *Config) LoadDefaults() {
	c.Provider = ProviderLocal
	c.AWSRegion = "us-east-1"
	c.VaultDBPath = "crux.db"
	c.LocalIDPDBPath = "crux-idp.db"
	c.SMSSender = SenderLog
	c.ResendCooldown = common.ResendCooldownSeconds * time.Second
	c.CodeLength = common.CodeLength
	c.LogLevel = "info"
}

// Validate checks values that the sources cannot check by type alone.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.LocalIDPDBPath == "" {
			return fmt.Errorf("local provider needs a database path")
		}
	case ProviderCognito:
		if c.CognitoClientID == "" {
			return fmt.Errorf("cognito provider needs a client id")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.SMSSender {
	case SenderLog, SenderSNS:
	default:
		return fmt.Errorf("unknown sms sender %q", c.SMSSender)
	}
	if c.ResendCooldown < time.Second {
		return fmt.Errorf("resend cooldown must be at least 1s")
	}
	if c.CodeLength < 4 || c.CodeLength > 10 {
		return fmt.Errorf("code length must be between 4 and 10")
	}
	return nil
}

// LoadConfig constructs a Config from defaults, then the JSON file, then the
// environment, then flags. Later sources win. Like the JSON and flag
// loaders it panics on malformed input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
