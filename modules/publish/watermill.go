package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tempora-io/tempora/core"
)

// DefaultTopic carries fired trigger events.
const DefaultTopic = "scheduler.trigger.fired"

// EventHandler consumes fired trigger events.
type EventHandler func(ctx context.Context, event core.TriggerEvent) error

// ChannelPublisher is an in-process publication channel for fired trigger
// events, backed by a watermill gochannel pub/sub and router.
type ChannelPublisher struct {
	router *message.Router
	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
	topic  string
}

func NewChannelPublisher(sl *slog.Logger) (*ChannelPublisher, error) {
	logger := watermill.NewSlogLogger(sl)
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}
	// PreserveContext carries the firing context (trace data included)
	// through to subscribers.
	pubSub := gochannel.NewGoChannel(gochannel.Config{PreserveContext: true}, logger)
	return &ChannelPublisher{
		router: router,
		pubSub: pubSub,
		logger: logger,
		topic:  DefaultTopic,
	}, nil
}

func (p *ChannelPublisher) Use(mw ...message.HandlerMiddleware) {
	p.router.AddMiddleware(mw...)
}

// Publish delivers one fired trigger event to the channel.
func (p *ChannelPublisher) Publish(ctx context.Context, event core.TriggerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessageWithContext(ctx, watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topic, msg)
}

// Subscribe registers a named handler for fired trigger events. Handlers
// start receiving once Run is called.
func (p *ChannelPublisher) Subscribe(name string, handler EventHandler) {
	p.router.AddNoPublisherHandler(
		name,
		p.topic,
		p.pubSub,
		func(msg *message.Message) error {
			var event core.TriggerEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				return err
			}
			return handler(msg.Context(), event)
		},
	)
}

// Run drives the subscriber side until ctx is cancelled. Handlers get a
// few retries before a message lands on the poison queue.
func (p *ChannelPublisher) Run(ctx context.Context) error {
	poisonQueueMiddleware, err := middleware.PoisonQueue(p.pubSub, "poison_queue")
	if err != nil {
		return err
	}

	retryMiddleware := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second * 1,
		Multiplier:      2.0,
		Logger:          p.logger,
	}

	p.router.AddMiddleware(
		retryMiddleware.Middleware,
		poisonQueueMiddleware,
	)
	p.router.AddPublisherDecorators(TraceContextDecorator)

	return p.router.Run(ctx)
}

func (p *ChannelPublisher) Close() error {
	return p.pubSub.Close()
}
