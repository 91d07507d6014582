package queue

import (
    "context"
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/iliyamo/founder-copilot/internal/logger"
)

func TestFormatEvent(t *testing.T) {
    body, _ := json.Marshal(SubscriptionActivatedEvent{
        UserID:    3,
        OrderID:   "order_1",
        PaymentID: "pay_1",
        PlanType:  "monthly",
        Amount:    149900,
        Currency:  "INR",
        StartDate: "2025-03-10T00:00:00Z",
        EndDate:   "2025-04-10T00:00:00Z",
    })
    line, err := FormatEvent(SubscriptionActivatedQueue, body)
    if err != nil {
        t.Fatalf("FormatEvent: %v", err)
    }
    want := "[2025-03-10T00:00:00Z] Subscription activated | user_id=3 | order_id=order_1 | payment_id=pay_1 | plan=monthly | amount=149900 INR | ends=2025-04-10T00:00:00Z\n"
    if line != want {
        t.Fatalf("line = %q", line)
    }

    body, _ = json.Marshal(PaymentReconcileEvent{UserID: 3, OrderID: "order_1", Reason: "db down", At: "now"})
    line, err = FormatEvent(PaymentReconcileQueue, body)
    if err != nil {
        t.Fatalf("FormatEvent: %v", err)
    }
    if !strings.HasPrefix(line, "[now] RECONCILE needed | user_id=3") || !strings.Contains(line, `reason="db down"`) {
        t.Fatalf("line = %q", line)
    }
}

func TestFormatEventRejects(t *testing.T) {
    if _, err := FormatEvent("other.queue", []byte(`{}`)); err == nil {
        t.Fatal("unknown queue accepted")
    }
    if _, err := FormatEvent(SubscriptionActivatedQueue, []byte(`{not json`)); err == nil {
        t.Fatal("broken body accepted")
    }
}

func TestHandleMessageAppends(t *testing.T) {
    path := filepath.Join(t.TempDir(), "nested", "billing.log")
    c := &BillingConsumer{LogPath: path, Log: logger.Nop()}

    body, _ := json.Marshal(PaymentReconcileEvent{UserID: 1, OrderID: "a", At: "t1"})
    if err := c.HandleMessage(PaymentReconcileQueue, body); err != nil {
        t.Fatalf("HandleMessage: %v", err)
    }
    body, _ = json.Marshal(PaymentReconcileEvent{UserID: 2, OrderID: "b", At: "t2"})
    if err := c.HandleMessage(PaymentReconcileQueue, body); err != nil {
        t.Fatalf("HandleMessage: %v", err)
    }
    if err := c.HandleMessage("nope", body); err == nil {
        t.Fatal("unknown queue written")
    }

    raw, err := os.ReadFile(path)
    if err != nil {
        t.Fatalf("read log: %v", err)
    }
    lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
    if len(lines) != 2 || !strings.HasPrefix(lines[0], "[t1]") || !strings.HasPrefix(lines[1], "[t2]") {
        t.Fatalf("log = %q", raw)
    }
}

func TestDiscardPublish(t *testing.T) {
    if err := (Discard{}).Publish(context.Background(), "q", struct{}{}); err != nil {
        t.Fatalf("Discard.Publish: %v", err)
    }
}
