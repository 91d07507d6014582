package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/founder-copilot/internal/logger"
)

// BillingConsumer drains the billing queues and appends one line per event to
// a log file, logs/billing.log by default.
type BillingConsumer struct {
    URL     string
    LogPath string
    Log     *logger.Logger
}

// StartBillingConsumer runs a reconnect loop until ctx is cancelled.  Broken
// messages are rejected without requeue so the loop never spins on them.
func StartBillingConsumer(ctx context.Context, url string, log *logger.Logger) error {
    c := &BillingConsumer{URL: url, LogPath: filepath.Join("logs", "billing.log"), Log: log}
    return c.Run(ctx)
}

func (c *BillingConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("billing-consumer: dial failed", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("billing-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *BillingConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("billing-consumer: set QoS failed", "error", err)
    }

    deliveries := make(chan amqp.Delivery)
    for _, name := range []string{SubscriptionActivatedQueue, PaymentReconcileQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        go func(in <-chan amqp.Delivery) {
            for d := range in {
                select {
                case deliveries <- d:
                case <-ctx.Done():
                    return
                }
            }
        }(msgs)
    }

    closed := ch.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case e := <-closed:
            if e != nil {
                return e
            }
            return errors.New("channel closed")
        case d := <-deliveries:
            if err := c.HandleMessage(d.RoutingKey, d.Body); err != nil {
                c.Log.Warn("billing-consumer: handle message failed", "queue", d.RoutingKey, "error", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage formats one event and appends it to the log file.
func (c *BillingConsumer) HandleMessage(queueName string, body []byte) error {
    line, err := FormatEvent(queueName, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders a single human-friendly log line for a billing event.
func FormatEvent(queueName string, body []byte) (string, error) {
    switch queueName {
    case SubscriptionActivatedQueue:
        var ev SubscriptionActivatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Subscription activated | user_id=%d | order_id=%s | payment_id=%s | plan=%s | amount=%d %s | ends=%s\n",
            ev.StartDate, ev.UserID, ev.OrderID, ev.PaymentID, ev.PlanType, ev.Amount, ev.Currency, ev.EndDate), nil
    case PaymentReconcileQueue:
        var ev PaymentReconcileEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] RECONCILE needed | user_id=%d | order_id=%s | payment_id=%s | plan=%s | reason=%q\n",
            ev.At, ev.UserID, ev.OrderID, ev.PaymentID, ev.PlanType, ev.Reason), nil
    default:
        return "", fmt.Errorf("unknown queue %q", queueName)
    }
}
