package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// HookTimeout bounds one background publish started by Hook, connect included.
const HookTimeout = 10 * time.Second

// Publisher turns created sightings into broker messages.
type Publisher struct {
	client  Client
	topic   string
	now     func() time.Time
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPublisher publishes to topic through client.
func NewPublisher(client Client, topic string) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{
		client:  client,
		topic:   topic,
		now:     time.Now,
		timeout: HookTimeout,
		logger:  logging.ForService("mqtt"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// PublishCreated sends the event for req, connecting first if needed.
func (p *Publisher) PublishCreated(ctx context.Context, req sighting.CreateRequest) error {
	payload, err := json.Marshal(NewSightingEvent(req, p.now()))
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("operation", "marshal_event").
			Build()
	}

	if !p.client.IsConnected() {
		if err := p.client.Connect(ctx); err != nil {
			return err
		}
	}

	return p.client.Publish(ctx, p.topic, string(payload))
}

// Hook adapts the publisher to the form's created hook. The publish runs in
// the background with its own timeout so a slow broker never holds up the
// submission; failures are logged.
func (p *Publisher) Hook() func(context.Context, sighting.CreateRequest) {
	return func(_ context.Context, req sighting.CreateRequest) {
		p.wg.Go(func() {
			ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
			defer cancel()
			if err := p.PublishCreated(ctx, req); err != nil {
				p.logger.Warn("failed to publish sighting event", "topic", p.topic, "error", err)
			}
		})
	}
}

// Close cancels background publishes and waits for them to return.
func (p *Publisher) Close() {
	p.cancel()
	p.wg.Wait()
}
