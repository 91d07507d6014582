package model

import "time"

// Payment order statuses.  An order only ever moves pending -> active.
const (
    OrderPending = "pending"
    OrderActive  = "active"
    OrderFailed  = "failed"
)

// PaymentOrder mirrors the `payment_orders` table.  ProviderOrderID is the
// id the payment provider assigned at order creation.
//
// Fields:
//  Amount            – minor units (paise for INR, cents for USD).
//  ProviderPaymentID – set once the payment is verified.
type PaymentOrder struct {
    ID                uint64    // payment_orders.id
    UserID            uint64    // payment_orders.user_id
    ProviderOrderID   string    // payment_orders.provider_order_id
    ProviderPaymentID *string   // payment_orders.provider_payment_id (nullable)
    PlanType          string    // payment_orders.plan_type
    Amount            int64     // payment_orders.amount
    Currency          string    // payment_orders.currency
    Status            string    // payment_orders.status
    CreatedAt         time.Time // payment_orders.created_at
    UpdatedAt         time.Time // payment_orders.updated_at
}
