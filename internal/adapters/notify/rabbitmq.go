package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fuel-delivery-service/internal/domain"
	"fuel-delivery-service/internal/platform/obs"
	"net"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends notifications and GPS positions as JSON to a topic
// exchange. Routing keys are notification.<severity> and gps.<truck id>.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string

	maxAttempts int
	backoff     time.Duration
}

// DialRabbit connects, opens a channel, and declares the durable topic exchange.
func DialRabbit(url, exchange string) (*RabbitPublisher, error) {
	if strings.TrimSpace(exchange) == "" {
		return nil, errors.New("dial rabbitmq: exchange must not be empty")
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dial rabbitmq: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dial rabbitmq: declare exchange %q: %w", exchange, err)
	}

	p := NewRabbitPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

// NewRabbitPublisher wraps an already open channel.
func NewRabbitPublisher(ch Channel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{
		ch:          ch,
		exchange:    exchange,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
}

func (p *RabbitPublisher) Notify(ctx context.Context, n domain.Notification) (err error) {
	defer obs.Time(ctx, "notify.rabbitmq.Notify")(&err)

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	return p.publish(ctx, "notification."+string(n.Severity), body)
}

func (p *RabbitPublisher) PublishPosition(ctx context.Context, ev domain.TickEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("publish position: encode: %w", err)
	}
	return p.publish(ctx, "gps."+ev.TruckID, body)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// publish retries transient broker failures using exponential backoff
// while respecting context cancellation.
func (p *RabbitPublisher) publish(ctx context.Context, key string, body []byte) error {
	backoff := p.backoff
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.mu.Lock()
		err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
		p.mu.Unlock()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("publish %s: %w", key, err)

		if !retryable(err) || attempt == p.maxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return lastErr
}

func retryable(err error) bool {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Recover
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
