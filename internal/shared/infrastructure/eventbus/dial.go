package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange all domain events go through.
	ExchangeName = "synapse.domain.events"

	dialAttempts = 5
)

// dial connects to the broker and declares the exchange, retrying with
// exponential backoff while the broker is starting up.
func dial(ctx context.Context, url string, logger *slog.Logger) (*amqp.Connection, *amqp.Channel, error) {
	var (
		conn *amqp.Connection
		ch   *amqp.Channel
	)

	connect := func() error {
		c, err := amqp.Dial(url)
		if err != nil {
			return err
		}
		channel, err := c.Channel()
		if err != nil {
			_ = c.Close()
			return err
		}
		if err := channel.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
			_ = channel.Close()
			_ = c.Close()
			return backoff.Permanent(fmt.Errorf("declare exchange: %w", err))
		}
		conn, ch = c, channel
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	err := backoff.RetryNotify(connect,
		backoff.WithContext(backoff.WithMaxRetries(policy, dialAttempts), ctx),
		func(err error, wait time.Duration) {
			logger.Warn("rabbitmq not reachable, retrying", "error", err, "wait", wait)
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, ch, nil
}
