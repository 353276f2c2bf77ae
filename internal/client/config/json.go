package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/crux/internal/flagx"
	"github.com/dmitrijs2005/crux/internal/timex"
)

// JsonConfig is the on-disk shape. Durations go through timex.Duration so
// they can be written as "29s" or as nanoseconds. Pointer-free zero values
// mean "not set" and keep the earlier value.
type JsonConfig struct {
	Provider           string         `json:"provider"`
	AWSRegion          string         `json:"aws_region"`
	CognitoUserPoolID  string         `json:"cognito_user_pool_id"`
	CognitoClientID    string         `json:"cognito_client_id"`
	AWSAccessKeyID     string         `json:"aws_access_key_id"`
	AWSSecretAccessKey string         `json:"aws_secret_access_key"`
	VaultDBPath        string         `json:"vault_db"`
	LocalIDPDBPath     string         `json:"local_idp_db"`
	LocalIDPSecret     string         `json:"local_idp_secret"`
	SMSSender          string         `json:"sms_sender"`
	ResendCooldown     timex.Duration `json:"resend_cooldown"`
	CodeLength         int            `json:"code_length"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with the file named by -c or -config. Without
// either flag it does nothing. It panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.Provider, jc.Provider)
	setString(&cfg.AWSRegion, jc.AWSRegion)
	setString(&cfg.CognitoUserPoolID, jc.CognitoUserPoolID)
	setString(&cfg.CognitoClientID, jc.CognitoClientID)
	setString(&cfg.AWSAccessKeyID, jc.AWSAccessKeyID)
	setString(&cfg.AWSSecretAccessKey, jc.AWSSecretAccessKey)
	setString(&cfg.VaultDBPath, jc.VaultDBPath)
	setString(&cfg.LocalIDPDBPath, jc.LocalIDPDBPath)
	setString(&cfg.LocalIDPSecret, jc.LocalIDPSecret)
	setString(&cfg.SMSSender, jc.SMSSender)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.ResendCooldown.Duration != 0 {
		cfg.ResendCooldown = time.Duration(jc.ResendCooldown.Duration)
	}
	if jc.CodeLength != 0 {
		cfg.CodeLength = jc.CodeLength
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
