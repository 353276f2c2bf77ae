package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/crux/internal/client/config"
	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/client/idp/cognito"
	"github.com/dmitrijs2005/crux/internal/client/idp/local"
	"github.com/dmitrijs2005/crux/internal/client/sms"
	"github.com/dmitrijs2005/crux/internal/logging"
)

// newProvider builds the identity provider named by cfg.Provider and a
// function that releases it.
func newProvider(ctx context.Context, cfg *config.Config, logger logging.Logger) (idp.Provider, func() error, error) {
	switch cfg.Provider {
	case config.ProviderCognito:
		p, err := cognito.New(ctx, cognito.Config{
			Region:          cfg.AWSRegion,
			UserPoolID:      cfg.CognitoUserPoolID,
			ClientID:        cfg.CognitoClientID,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return p, func() error { return nil }, nil

	case config.ProviderLocal:
		sender, err := newSender(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		p, err := local.Open(ctx, cfg.LocalIDPDBPath, sender, logger, local.Options{
			Secret:         []byte(cfg.LocalIDPSecret),
			ResendCooldown: cfg.ResendCooldown,
			CodeLength:     cfg.CodeLength,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newSender(ctx context.Context, cfg *config.Config, logger logging.Logger) (sms.Sender, error) {
	if cfg.SMSSender == config.SenderSNS {
		s, err := sms.NewSNSSender(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("sns sender: %w", err)
		}
		return s, nil
	}
	return sms.NewLogSender(logger), nil
}
