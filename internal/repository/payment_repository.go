package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

// PaymentOrderRepo stores provider orders.  Status only moves forward:
// MarkActive matches pending rows exclusively.
type PaymentOrderRepo struct{ DB *sql.DB }

func NewPaymentOrderRepo(db *sql.DB) *PaymentOrderRepo { return &PaymentOrderRepo{DB: db} }

const orderColumns = "id,user_id,provider_order_id,provider_payment_id,plan_type,amount,currency,status,created_at,updated_at"

// Create inserts a pending order and returns its id.
func (r *PaymentOrderRepo) Create(ctx context.Context, o model.PaymentOrder) (uint64, error) {
	created := orNow(o.CreatedAt)
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	res, err := r.DB.ExecContext(ctx, `INSERT INTO payment_orders (user_id,provider_order_id,plan_type,amount,currency,status,
created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		o.UserID, o.ProviderOrderID, o.PlanType, o.Amount, o.Currency, o.Status, created, created)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByProviderID finds the user's order by the provider's order id.
func (r *PaymentOrderRepo) GetByProviderID(ctx context.Context, userID uint64, providerOrderID string) (model.PaymentOrder, error) {
	var (
		o   model.PaymentOrder
		pay sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM payment_orders WHERE provider_order_id=? AND user_id=? LIMIT 1",
		providerOrderID, userID).Scan(&o.ID, &o.UserID, &o.ProviderOrderID, &pay, &o.PlanType, &o.Amount, &o.Currency,
		&o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	o.ProviderPaymentID = strPtr(pay)
	return o, err
}

// MarkActive records the payment id and activates a pending order.  It
// reports false when the order was not pending (already active, failed or
// missing).
func (r *PaymentOrderRepo) MarkActive(ctx context.Context, userID uint64, providerOrderID, paymentID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payment_orders SET provider_payment_id=?, status=?, updated_at=? WHERE provider_order_id=? AND user_id=? AND status=?",
		paymentID, model.OrderActive, at.UTC(), providerOrderID, userID, model.OrderPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
