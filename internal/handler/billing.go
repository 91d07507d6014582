package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/founder-copilot/internal/entitlement"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/payment"
	"github.com/iliyamo/founder-copilot/internal/repository"
)

// BillingHandler runs the checkout handshake and reports entitlement.
type BillingHandler struct {
	Payments *payment.Service
	Profiles entitlement.ProfileLoader
	Log      *logger.Logger
}

func NewBillingHandler(p *payment.Service, profiles entitlement.ProfileLoader, log *logger.Logger) *BillingHandler {
	return &BillingHandler{Payments: p, Profiles: profiles, Log: log}
}

type createOrderReq struct {
	PlanType string `json:"plan_type"`
	Currency string `json:"currency"`
}

type verifyReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	PlanType  string `json:"plan_type"`
}

// notConfigured names the first missing provider secret.
func (h *BillingHandler) notConfigured(c echo.Context) error {
	name := "RAZORPAY_KEY_SECRET"
	if h.Payments.KeyID == "" {
		name = "RAZORPAY_KEY_ID"
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": name + " is not configured"})
}

// CreateOrder opens a provider order for the chosen plan.
func (h *BillingHandler) CreateOrder(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Currency) == "" {
		req.Currency = payment.CurrencyINR
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	order, err := h.Payments.CreateOrder(ctx, uid, req.PlanType, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotConfigured):
			return h.notConfigured(c)
		case errors.Is(err, payment.ErrUnknownPlan):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid plan type"})
		case errors.Is(err, payment.ErrUnknownCurrency):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported currency"})
		}
		h.Log.Error("create payment order failed", "user_id", uid, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create order"})
	}
	return c.JSON(http.StatusOK, order)
}

// Verify checks the checkout callback and activates the subscription.
func (h *BillingHandler) Verify(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing payment details"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	act, err := h.Payments.Verify(ctx, uid, payment.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		PlanType:  req.PlanType,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotConfigured):
			return h.notConfigured(c)
		case errors.Is(err, payment.ErrInvalidSignature):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid payment signature"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		case errors.Is(err, payment.ErrOrderNotPending):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Order already processed"})
		case errors.Is(err, payment.ErrInconsistent):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update subscription status"})
		}
		h.Log.Error("verify payment failed", "user_id", uid, "order_id", req.OrderID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Payment verification failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Payment verified successfully",
		"subscription": act,
	})
}

// Subscription reports the founder's entitlement.  It is reachable without
// access so a lapsed founder can see why.
func (h *BillingHandler) Subscription(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	sess := entitlement.NewSession(uid, h.Profiles, nil)
	if err := sess.Refetch(ctx); err != nil {
		return storeError(c, err, "failed to load subscription")
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}
