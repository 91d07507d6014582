package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/founder-copilot/internal/logger"
)

// Publisher sends JSON events to durable queues on the default exchange.
// Each call dials its own connection so a broker outage never leaves a
// broken channel behind; the billing path publishes a handful of messages
// per payment, so the extra dial is acceptable.
type Publisher struct {
    URL string
    Log *logger.Logger
}

func NewPublisher(url string, log *logger.Logger) *Publisher {
    return &Publisher{URL: url, Log: log}
}

// Publish marshals event and stores it on queueName.  Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, queueName string, event any) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        p.Log.Warn("rabbitmq: dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Log.Warn("rabbitmq: channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        p.Log.Warn("rabbitmq: queue declare failed", "queue", queueName, "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
        p.Log.Warn("rabbitmq: publish failed", "queue", queueName, "error", err)
        return err
    }
    return nil
}

// Discard is used when the queue is disabled.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
