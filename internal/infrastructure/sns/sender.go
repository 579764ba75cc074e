package sns

import (
	"context"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/empower-api/internal/config"
)

// SMSSender delivers one-time codes to a mobile number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sender struct {
	client *sns.Client
}

// NewSender creates an SNS-backed SMS sender.
func NewSender(cfg *config.Config) (SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendSMS(ctx context.Context, to, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	})
	return err
}

// MockSender logs codes instead of delivering them. Used in development when
// SNS is not configured.
type MockSender struct{}

func (MockSender) SendSMS(_ context.Context, to, message string) error {
	slog.Info("MOCK SMS", "to", to, "message", message)
	return nil
}
