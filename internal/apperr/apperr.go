// Package apperr defines the closed set of checkout failures.
//
// Every failure surfaced by pricing validation or session building is an
// *Error carrying a Kind plus the structured fields relevant to that kind, so
// callers branch on Kind instead of parsing messages. errors.Is matches by
// Kind against the Err* sentinels.
package apperr

import (
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/storefront-checkout/internal/money"
)

// Kind identifies a failure class
type Kind string

const (
	KindCartNotFound            Kind = "cart_not_found"
	KindEmptyCart               Kind = "empty_cart"
	KindAllItemsFree            Kind = "all_items_free"
	KindBelowItemMinimum        Kind = "below_item_minimum"
	KindBelowCartMinimum        Kind = "below_cart_minimum"
	KindBelowTransactionMinimum Kind = "below_transaction_minimum"
	KindSuspiciousAmount        Kind = "suspicious_amount"
	KindProcessorRejected       Kind = "processor_rejected"
	KindCheckoutInProgress      Kind = "checkout_in_progress"
)

// Sentinels for errors.Is
var (
	ErrCartNotFound            = &Error{Kind: KindCartNotFound}
	ErrEmptyCart               = &Error{Kind: KindEmptyCart}
	ErrAllItemsFree            = &Error{Kind: KindAllItemsFree}
	ErrBelowItemMinimum        = &Error{Kind: KindBelowItemMinimum}
	ErrBelowCartMinimum        = &Error{Kind: KindBelowCartMinimum}
	ErrBelowTransactionMinimum = &Error{Kind: KindBelowTransactionMinimum}
	ErrSuspiciousAmount        = &Error{Kind: KindSuspiciousAmount}
	ErrProcessorRejected       = &Error{Kind: KindProcessorRejected}
	ErrCheckoutInProgress      = &Error{Kind: KindCheckoutInProgress}
)

// Error is a typed checkout failure.
//
// AmountMajor and MinimumMajor are display-unit amounts and are set for the
// below-minimum kinds. AmountMinor is set for SuspiciousAmount. ItemIndexes
// lists offending line positions for item-level kinds.
type Error struct {
	Kind         Kind
	CartID       string
	Currency     string
	AmountMajor  int64
	MinimumMajor int64
	AmountMinor  int64
	ItemIndexes  []int
	Cause        error
}

// Shortfall is how much more is needed to reach the minimum
func (e *Error) Shortfall() int64 {
	if e.MinimumMajor <= e.AmountMajor {
		return 0
	}
	return e.MinimumMajor - e.AmountMajor
}

// Message is the user-facing text for the failure, without the underlying cause
func (e *Error) Message() string {
	switch e.Kind {
	case KindCartNotFound:
		return fmt.Sprintf("cart %q was not found; it may have expired or already been checked out", e.CartID)
	case KindEmptyCart:
		return "your cart is empty; add at least one item before checking out"
	case KindAllItemsFree:
		return "your cart only contains free items; add a paid item to check out"
	case KindBelowItemMinimum:
		return fmt.Sprintf("%d item(s) are priced below the minimum of %s per item",
			len(e.ItemIndexes), e.format(e.MinimumMajor))
	case KindBelowCartMinimum:
		return fmt.Sprintf("cart total %s is below the minimum of %s; add %s more to check out",
			e.format(e.AmountMajor), e.format(e.MinimumMajor), e.format(e.Shortfall()))
	case KindBelowTransactionMinimum:
		return fmt.Sprintf("checkout total %s is below the minimum of %s; add %s more to check out",
			e.format(e.AmountMajor), e.format(e.MinimumMajor), e.format(e.Shortfall()))
	case KindSuspiciousAmount:
		return fmt.Sprintf("item %d has a suspiciously low amount (%d minor units); check currency conversion",
			firstIndex(e.ItemIndexes)+1, e.AmountMinor)
	case KindProcessorRejected:
		return "the payment provider could not start checkout; please try again"
	case KindCheckoutInProgress:
		return "a checkout for this cart is already in progress"
	default:
		return "checkout failed"
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message() + ": " + e.Cause.Error()
	}
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) format(amount int64) string {
	currency := e.Currency
	if currency == "" {
		currency = "idr"
	}
	return money.Format(currency, amount)
}

// KindOf returns the Kind of err, or "" when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func firstIndex(indexes []int) int {
	if len(indexes) == 0 {
		return 0
	}
	return indexes[0]
}
