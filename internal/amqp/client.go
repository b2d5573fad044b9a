package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Routing keys on the direct exchange. The queue is bound to both, so one
// worker drains creations and deletions in the order they happened.
const (
	RoutingKeyExpenseCreated = "expense.created"
	RoutingKeyExpenseDeleted = "expense.deleted"
)

const (
	maxRetries  = 3
	maxFailures = 5
	openTimeout = 60 * time.Second
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	url          string
	exchangeName string
	queueName    string

	mu           sync.Mutex
	failureCount int64
	lastFailure  time.Time
	state        int32
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind the queue under both routing keys
	for _, key := range []string{RoutingKeyExpenseCreated, RoutingKeyExpenseDeleted} {
		if err := c.channel.QueueBind(
			c.queueName,    // queue name
			key,            // routing key
			c.exchangeName, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("bind queue for %s: %w", key, err)
		}
	}

	return nil
}

// PublishExpenseCreated publishes a created message for the given expense ID
func (c *Client) PublishExpenseCreated(ctx context.Context, id int64) error {
	msg := NewExpenseCreatedMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, RoutingKeyExpenseCreated, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published expense created message",
		"id", id,
		"exchange", c.exchangeName,
		"routing_key", RoutingKeyExpenseCreated)

	return nil
}

// PublishExpenseDeleted publishes a deleted message for the given expense ID
func (c *Client) PublishExpenseDeleted(ctx context.Context, id int64) error {
	msg := NewExpenseDeletedMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, RoutingKeyExpenseDeleted, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published expense deleted message",
		"id", id,
		"exchange", c.exchangeName,
		"routing_key", RoutingKeyExpenseDeleted)

	return nil
}

// publish sends a message through the circuit breaker, retrying connection
// errors with exponential backoff. Non-connection errors fail immediately.
func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing to publish")
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if attempt > 0 {
			backoff := exponentialBackoff(attempt - 1)
			slog.WarnContext(ctx, "Retrying publish",
				"attempt", attempt+1,
				"backoff", backoff,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if err := c.reconnect(); err != nil {
				lastErr = err
				c.recordFailure()
				continue
			}
		}

		if err := c.publishOnce(ctx, routingKey, body); err != nil {
			lastErr = err
			c.recordFailure()
			if !isConnectionError(err) {
				return err
			}
			continue
		}

		c.recordSuccess()
		return nil
	}

	return fmt.Errorf("publish after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) publishOnce(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent, // make message persistent
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	return nil
}

func (c *Client) reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("redial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("reopen channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		return fmt.Errorf("setup after reconnect: %w", err)
	}

	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}

	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()

	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}

	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	count := atomic.AddInt64(&c.failureCount, 1)

	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()

	if count >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff doubles from one second per attempt, capped at 30s
func exponentialBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		return 30 * time.Second
	}
	return backoff
}

// isConnectionError reports whether err looks like a broken AMQP connection,
// which is worth a reconnect and retry. Anything else is handed back as is.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// Consume delivers queued messages to the handlers, dispatching on routing
// key. Handler errors requeue the delivery; undecodable payloads are dropped.
// Blocks until ctx is cancelled or the channel closes.
func (c *Client) Consume(ctx context.Context, onCreated func(context.Context, *ExpenseCreatedMessage) error, onDeleted func(context.Context, *ExpenseDeletedMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming expense messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			switch delivery.RoutingKey {
			case RoutingKeyExpenseCreated:
				msg, err := ExpenseCreatedMessageFromJSON(delivery.Body)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to unmarshal created message", "error", err)
					delivery.Nack(false, false) // reject and don't requeue
					continue
				}

				if err := onCreated(ctx, msg); err != nil {
					slog.ErrorContext(ctx, "Failed to handle created message",
						"error", err,
						"id", msg.ID)
					delivery.Nack(false, true) // reject and requeue
					continue
				}

				delivery.Ack(false)
				slog.InfoContext(ctx, "Processed expense created message", "id", msg.ID)

			case RoutingKeyExpenseDeleted:
				msg, err := ExpenseDeletedMessageFromJSON(delivery.Body)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to unmarshal deleted message", "error", err)
					delivery.Nack(false, false)
					continue
				}

				if err := onDeleted(ctx, msg); err != nil {
					slog.ErrorContext(ctx, "Failed to handle deleted message",
						"error", err,
						"id", msg.ID)
					delivery.Nack(false, true)
					continue
				}

				delivery.Ack(false)
				slog.InfoContext(ctx, "Processed expense deleted message", "id", msg.ID)

			default:
				slog.WarnContext(ctx, "Dropping message with unknown routing key",
					"routing_key", delivery.RoutingKey)
				delivery.Nack(false, false)
			}
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
