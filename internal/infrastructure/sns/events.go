package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/empower-api/internal/config"
)

// EventPublisher mirrors state changes to a side channel so clients can
// refresh without polling. Publishing is strictly fire-and-forget: the core
// never blocks on it and never fails an operation because of it.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

type topicPublisher struct {
	client   *awssns.Client
	topicARN string
}

// NewEventPublisher creates an SNS topic publisher. Returns a no-op
// publisher when no topic is configured.
func NewEventPublisher(cfg *config.Config) (EventPublisher, error) {
	if cfg.SNSEventsTopicARN == "" {
		return NopPublisher{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &topicPublisher{client: awssns.NewFromConfig(awsCfg), topicARN: cfg.SNSEventsTopicARN}, nil
}

func (p *topicPublisher) Publish(event string, payload interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		body, err := json.Marshal(map[string]interface{}{"event": event, "data": payload})
		if err != nil {
			slog.Warn("could not marshal event", "event", event, "err", err)
			return
		}
		msg := string(body)
		if _, err := p.client.Publish(ctx, &awssns.PublishInput{
			TopicArn: &p.topicARN,
			Message:  &msg,
		}); err != nil {
			slog.Warn("could not publish event", "event", event, "err", err)
		}
	}()
}

// NopPublisher drops all events.
type NopPublisher struct{}

func (NopPublisher) Publish(string, interface{}) {}
