// Package sms delivers one-time codes to phone numbers. Sender is satisfied by
// the AWS SNS implementation and by LogSender, which only logs the message and
// is what local development uses.
package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/dmitrijs2005/crux/internal/logging"
)

// Sender sends a text message to a destination (E.164 phone number or, for
// LogSender, any address).
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// Publisher is the subset of *sns.Client used by SNSSender.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSSender struct {
	client Publisher
}

// NewSNSSender loads the AWS configuration for region and returns a sender
// publishing direct SMS messages.
func NewSNSSender(ctx context.Context, region string) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config: %w", err)
	}
	return NewSNSSenderWithClient(sns.NewFromConfig(awsCfg)), nil
}

func NewSNSSenderWithClient(c Publisher) *SNSSender {
	return &SNSSender{client: c}
}

func (s *SNSSender) Send(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "sms")}
}

func (s *LogSender) Send(ctx context.Context, to, message string) error {
	s.logger.Info(ctx, "code delivered", "to", to, "message", message)
	return nil
}
