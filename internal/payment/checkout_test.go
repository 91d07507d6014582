package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/founder-copilot/internal/database"
	"github.com/iliyamo/founder-copilot/internal/entitlement"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/payment"
	"github.com/iliyamo/founder-copilot/internal/queue"
	"github.com/iliyamo/founder-copilot/internal/repository"
)

type orderStub struct{}

func (orderStub) CreateOrder(_ context.Context, req payment.OrderRequest) (payment.Order, error) {
	return payment.Order{ID: "order_usd_1", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

// TestMonthlyUSDCheckoutWindow runs create, verify and the access check
// against one clock that is then moved past the end date.
func TestMonthlyUSDCheckoutWindow(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	uid, err := repository.NewUserRepo(db).Create(ctx, "usd@example.com", "password1", 4)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	profiles := repository.NewProfileRepo(db)

	paidAt := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	now := paidAt
	clock := func() time.Time { return now }

	svc := &payment.Service{
		Orders:    repository.NewPaymentOrderRepo(db),
		Profiles:  profiles,
		Provider:  orderStub{},
		Events:    queue.Discard{},
		KeyID:     "rzp_test",
		KeySecret: "usd-secret",
		Log:       logger.Nop(),
		Now:       clock,
	}

	order, err := svc.CreateOrder(ctx, uid, "monthly", "usd")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 1799 || order.Currency != payment.CurrencyUSD {
		t.Fatalf("order = %+v", order)
	}

	act, err := svc.Verify(ctx, uid, payment.VerifyRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_usd_1",
		Signature: payment.Sign("usd-secret", order.OrderID, "pay_usd_1"),
		PlanType:  "monthly",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	wantEnd := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
	if !act.StartDate.Equal(paidAt) || !act.EndDate.Equal(wantEnd) {
		t.Fatalf("window = %v..%v, want %v..%v", act.StartDate, act.EndDate, paidAt, wantEnd)
	}

	sess := entitlement.NewSession(uid, profiles, clock)
	if err := sess.Refetch(ctx); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if !sess.HasAccess() {
		t.Fatal("no access right after verify")
	}
	snap := sess.Snapshot()
	if snap.EndDate == nil || !snap.EndDate.Equal(wantEnd) {
		t.Fatalf("end_date = %v, want %v", snap.EndDate, wantEnd)
	}
	if snap.DaysRemaining == nil || *snap.DaysRemaining != 31 {
		t.Fatalf("days_remaining = %v", snap.DaysRemaining)
	}

	now = wantEnd
	if sess.HasAccess() {
		t.Fatal("access on the end date itself")
	}
	now = wantEnd.Add(time.Second)
	if sess.HasAccess() || sess.Snapshot().IsSubscribed {
		t.Fatal("access after the end date")
	}
}
