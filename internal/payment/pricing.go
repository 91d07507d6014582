// Package payment implements the order/verify handshake with Razorpay.
package payment

import (
	"errors"
	"strings"
	"time"
)

// Plans.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Currencies.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

var (
	ErrUnknownPlan     = errors.New("unknown plan type")
	ErrUnknownCurrency = errors.New("unsupported currency")
)

// priceTable holds amounts in minor units: paise for INR, cents for USD.
var priceTable = map[string]map[string]int64{
	CurrencyINR: {PlanMonthly: 149900, PlanYearly: 1499900},
	CurrencyUSD: {PlanMonthly: 1799, PlanYearly: 17999},
}

// NormalizePlan lower-cases and validates a plan type.
func NormalizePlan(plan string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(plan))
	if p != PlanMonthly && p != PlanYearly {
		return "", ErrUnknownPlan
	}
	return p, nil
}

// Price returns the amount in minor units for plan and currency.
func Price(plan, currency string) (int64, error) {
	p, err := NormalizePlan(plan)
	if err != nil {
		return 0, err
	}
	byPlan, ok := priceTable[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return byPlan[p], nil
}

// EndDate adds one calendar month or year to start.  Day overflow is
// normalized the way time.AddDate does it, so Jan 31 + 1 month is Mar 3
// (Mar 2 in leap years), matching the provider checkout's JavaScript date
// arithmetic.
func EndDate(plan string, start time.Time) (time.Time, error) {
	p, err := NormalizePlan(plan)
	if err != nil {
		return time.Time{}, err
	}
	if p == PlanMonthly {
		return start.AddDate(0, 1, 0), nil
	}
	return start.AddDate(1, 0, 0), nil
}
