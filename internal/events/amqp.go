package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tally/internal/logger"
)

const (
	publishTimeout = time.Second
	dialTimeout    = 2 * time.Second
	redialInterval = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the broker connection is down and
// the next reconnect attempt is not yet due.
var ErrBrokerUnavailable = errors.New("events: broker unavailable")

// AMQPPublisher publishes events to a durable topic exchange. Each event is
// routed by its type, and a durable queue is bound to all expense events.
// A dropped connection is redialled on the next publish, at most once per
// redialInterval.
type AMQPPublisher struct {
	mu           sync.Mutex
	url          string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	lastDial     time.Time

	dial func(url string) (*amqp091.Connection, error)
	now  func() time.Time
}

// NewAMQPPublisher dials the broker and declares the exchange and queue.
func NewAMQPPublisher(url, exchangeName, queueName string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		dial:         dialBroker,
		now:          time.Now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialBroker(url string) (*amqp091.Connection, error) {
	return amqp091.DialConfig(url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(dialTimeout),
	})
}

// connect must be called with p.mu held.
func (p *AMQPPublisher) connect() error {
	p.lastDial = p.now()

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, p.exchangeName, p.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp091.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			logger.Get().Warnw("AMQP connection closed", "error", amqpErr.Error())
		}
	}()

	p.conn = conn
	p.channel = channel
	return nil
}

func setup(channel *amqp091.Channel, exchangeName, queueName string) error {
	if err := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queueName, "expense.*", exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// ensureChannel must be called with p.mu held.
func (p *AMQPPublisher) ensureChannel() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	p.release()

	if p.now().Sub(p.lastDial) < redialInterval {
		return ErrBrokerUnavailable
	}
	if err := p.connect(); err != nil {
		logger.Get().Warnw("AMQP reconnect failed", "error", err)
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	logger.Get().Infow("AMQP connection restored", "exchange", p.exchangeName)
	return nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp091 channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchangeName, event.Type, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.UnixMilli(event.OccurredAt),
		MessageId:    event.ExpenseID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.Get().Debugw("published event",
		"type", event.Type,
		"expense_id", event.ExpenseID,
		"exchange", p.exchangeName,
	)
	return nil
}

// release drops the current channel and connection. Must hold p.mu.
func (p *AMQPPublisher) release() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
	}
	return err
}
