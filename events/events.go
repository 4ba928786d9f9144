// Package events publishes job lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"publishing-ops-api/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JobCompleted is emitted once per scheduled job invocation.
type JobCompleted struct {
	JobName    string    `json:"jobName"`
	Status     string    `json:"status"`
	Trigger    string    `json:"trigger"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Publisher interface {
	PublishJobCompleted(ctx context.Context, event JobCompleted) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) PublishJobCompleted(context.Context, JobCompleted) error { return nil }
func (Noop) Close() error { return nil }

// AMQPPublisher sends events to a topic exchange.
type AMQPPublisher struct {
	conn       *amqp.Connection
	mu         sync.Mutex
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// New returns an AMQP publisher when AMQP_URL is set and Noop otherwise.
func New(cfg config.AMQPConfig, logger *slog.Logger) (Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return Noop{}, nil
	}
	pub, err := NewAMQPPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func NewAMQPPublisher(cfg config.AMQPConfig, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Heartbeat: 10 * time.Second, Locale: "en_US"})
	if err != nil {
		return nil, fmt.Errorf("connect to amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}

	logger.Info("amqp publisher ready", slog.String("exchange", cfg.Exchange))
	return &AMQPPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

func (p *AMQPPublisher) PublishJobCompleted(ctx context.Context, event JobCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.CreatedAt,
			Type:         "job.completed",
		},
	)
	if err != nil {
		return fmt.Errorf("publish job.completed: %w", err)
	}
	p.logger.Debug("job event published", slog.String("job", event.JobName), slog.Int("body_size", len(body)))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("close amqp channel", slog.Any("error", err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
