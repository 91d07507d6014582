package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
	"github.com/iliyamo/founder-copilot/internal/queue"
)

var (
	// ErrNotConfigured means the provider key pair is missing.
	ErrNotConfigured = errors.New("payment provider is not configured")
	// ErrInvalidSignature means the callback signature did not match.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrOrderNotPending means the order was already activated.
	ErrOrderNotPending = errors.New("order is not pending")
	// ErrInconsistent means the order was activated but the profile was not.
	ErrInconsistent = errors.New("order activated but subscription update failed")
)

// OrderStore persists payment orders.
type OrderStore interface {
	Create(ctx context.Context, o model.PaymentOrder) (uint64, error)
	GetByProviderID(ctx context.Context, userID uint64, providerOrderID string) (model.PaymentOrder, error)
	MarkActive(ctx context.Context, userID uint64, providerOrderID, paymentID string, at time.Time) (bool, error)
}

// SubscriptionStore writes the subscription columns of a profile.
type SubscriptionStore interface {
	UpdateSubscription(ctx context.Context, userID uint64, u model.SubscriptionUpdate) error
}

// OrderCreator is the provider side of order creation.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}

// Publisher emits billing events; failures are logged, never fatal.
type Publisher interface {
	Publish(ctx context.Context, queueName string, event any) error
}

// Service runs the two halves of the handshake.
type Service struct {
	Orders    OrderStore
	Profiles  SubscriptionStore
	Provider  OrderCreator
	Events    Publisher
	KeyID     string
	KeySecret string
	Log       *logger.Logger
	Now       func() time.Time
}

// CreatedOrder is returned to the browser to open the checkout.
type CreatedOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyRequest is the checkout callback payload.
type VerifyRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	PlanType  string
}

// Activation describes the subscription window that was granted.
type Activation struct {
	PlanType  string    `json:"plan_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) configured() bool {
	return s.KeyID != "" && s.KeySecret != ""
}

// CreateOrder prices the plan, creates the provider order and stores it as
// pending.
func (s *Service) CreateOrder(ctx context.Context, userID uint64, planType, currency string) (CreatedOrder, error) {
	if !s.configured() {
		return CreatedOrder{}, ErrNotConfigured
	}
	plan, err := NormalizePlan(planType)
	if err != nil {
		return CreatedOrder{}, err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	amount, err := Price(plan, currency)
	if err != nil {
		return CreatedOrder{}, err
	}

	order, err := s.Provider.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Notes: map[string]string{
			"user_id":   fmt.Sprint(userID),
			"plan_type": plan,
		},
	})
	if err != nil {
		return CreatedOrder{}, err
	}
	s.Log.Info("payment order created", "user_id", userID, "order_id", order.ID, "plan", plan, "currency", currency, "amount", amount)

	now := s.now()
	if _, err := s.Orders.Create(ctx, model.PaymentOrder{
		UserID:          userID,
		ProviderOrderID: order.ID,
		PlanType:        plan,
		Amount:          amount,
		Currency:        currency,
		Status:          model.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		// without the row the verify step cannot find the order
		return CreatedOrder{}, fmt.Errorf("store pending order: %w", err)
	}

	out := CreatedOrder{OrderID: order.ID, Amount: order.Amount, Currency: order.Currency, KeyID: s.KeyID}
	if out.Amount == 0 {
		out.Amount = amount
	}
	if out.Currency == "" {
		out.Currency = currency
	}
	return out, nil
}

// Verify checks the callback signature and, on a match, activates the order
// and extends the founder's subscription.  A mismatch mutates nothing.
func (s *Service) Verify(ctx context.Context, userID uint64, req VerifyRequest) (Activation, error) {
	if s.KeySecret == "" {
		return Activation{}, ErrNotConfigured
	}
	if !VerifySignature(s.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		s.Log.Warn("payment signature mismatch", "user_id", userID, "order_id", req.OrderID)
		return Activation{}, ErrInvalidSignature
	}

	order, err := s.Orders.GetByProviderID(ctx, userID, req.OrderID)
	if err != nil {
		return Activation{}, fmt.Errorf("load order: %w", err)
	}
	if order.Status != model.OrderPending {
		return Activation{}, ErrOrderNotPending
	}
	plan := order.PlanType
	if requested, err := NormalizePlan(req.PlanType); err == nil && requested != plan {
		s.Log.Warn("plan type differs from order, using order plan", "order_id", req.OrderID, "requested", requested, "order_plan", plan)
	}

	now := s.now()
	end, err := EndDate(plan, now)
	if err != nil {
		return Activation{}, err
	}

	updated, err := s.Orders.MarkActive(ctx, userID, req.OrderID, req.PaymentID, now)
	if err != nil {
		return Activation{}, fmt.Errorf("activate order: %w", err)
	}
	if !updated {
		return Activation{}, ErrOrderNotPending
	}

	if err := s.Profiles.UpdateSubscription(ctx, userID, model.SubscriptionUpdate{
		Status:    model.SubscriptionActive,
		Plan:      plan,
		ID:        req.OrderID,
		StartDate: now,
		EndDate:   end,
	}); err != nil {
		s.Log.Error("order active but profile not updated", "user_id", userID, "order_id", req.OrderID, "payment_id", req.PaymentID, "error", err)
		s.publish(ctx, queue.PaymentReconcileQueue, queue.PaymentReconcileEvent{
			UserID:    userID,
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			PlanType:  plan,
			Reason:    err.Error(),
			At:        now.Format(time.RFC3339),
		})
		return Activation{}, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	s.Log.Info("subscription activated", "user_id", userID, "order_id", req.OrderID, "plan", plan, "end_date", end)
	s.publish(ctx, queue.SubscriptionActivatedQueue, queue.SubscriptionActivatedEvent{
		UserID:    userID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		PlanType:  plan,
		Amount:    order.Amount,
		Currency:  order.Currency,
		StartDate: now.Format(time.RFC3339),
		EndDate:   end.Format(time.RFC3339),
	})
	return Activation{PlanType: plan, StartDate: now, EndDate: end}, nil
}

func (s *Service) publish(ctx context.Context, q string, ev any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, q, ev); err != nil {
		s.Log.Warn("publish billing event failed", "queue", q, "error", err)
	}
}
