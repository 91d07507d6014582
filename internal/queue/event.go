// Package queue defines message payloads exchanged over the message broker.
package queue

const (
    SubscriptionActivatedQueue = "subscription.activated"
    PaymentReconcileQueue      = "payment.reconcile"
)

// SubscriptionActivatedEvent is published after a verified payment has moved
// the order to active and extended the founder's subscription.
type SubscriptionActivatedEvent struct {
    UserID    uint64 `json:"user_id"`
    OrderID   string `json:"order_id"`
    PaymentID string `json:"payment_id"`
    PlanType  string `json:"plan_type"`
    Amount    int64  `json:"amount"`
    Currency  string `json:"currency"`
    StartDate string `json:"start_date"`
    EndDate   string `json:"end_date"`
}

// PaymentReconcileEvent records an order that is active on our side while the
// profile update failed.  An operator has to grant the subscription by hand.
type PaymentReconcileEvent struct {
    UserID    uint64 `json:"user_id"`
    OrderID   string `json:"order_id"`
    PaymentID string `json:"payment_id"`
    PlanType  string `json:"plan_type"`
    Reason    string `json:"reason"`
    At        string `json:"at"`
}
