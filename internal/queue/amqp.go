package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/streadway/amqp"
)

// AMQPQueue publishes jobs to a broker so a separate worker process can
// consume them. Subscribe is handled by cmd/worker, not through this type.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPQueue{conn: conn, ch: ch}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	queue, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return q.ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Subscribe delivers raw JSON bodies to the handler. The worker binary uses
// Consume directly; this exists to satisfy the Queue interface for callers
// that want an in-process consumer against the broker.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := q.ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				slog.Warn("[AMQPQueue] Handler failed", slog.String("topic", topic), slog.Any("error", err))
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()

	return nil
}

// Republish puts a raw body back on the queue with its retry count recorded
// in the x-retry-count header. Nack-with-requeue redelivers the original
// publication unchanged, so bounded retries need an explicit republish.
func (q *AMQPQueue) Republish(topic string, body []byte, retryCount int) error {
	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return q.ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Headers:     amqp.Table{"x-retry-count": int32(retryCount)},
			Body:        body,
		},
	)
}

// DeliveryRetries reads the x-retry-count header set by Republish. A fresh
// publication has no header and counts as zero.
func DeliveryRetries(d amqp.Delivery) int {
	switch v := d.Headers["x-retry-count"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

// Consume exposes the channel-level consumer for the worker binary.
func (q *AMQPQueue) Consume(topic string) (<-chan amqp.Delivery, error) {
	queue, err := q.ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return q.ch.Consume(queue.Name, "", false, false, false, false, nil)
}

func (q *AMQPQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
