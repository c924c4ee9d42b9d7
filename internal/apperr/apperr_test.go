package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := &Error{Kind: KindEmptyCart, CartID: "c-1"}
	wrapped := fmt.Errorf("handler: %w", err)

	assert.ErrorIs(t, wrapped, ErrEmptyCart)
	assert.False(t, errors.Is(wrapped, ErrCartNotFound))
	assert.Equal(t, KindEmptyCart, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Kind: KindProcessorRejected, Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "the payment provider could not start checkout; please try again: connection reset", err.Error())
	assert.Equal(t, "the payment provider could not start checkout; please try again", err.Message())
}

func TestError_BelowMinimumMessagesStateShortfall(t *testing.T) {
	err := &Error{Kind: KindBelowCartMinimum, AmountMajor: 10000, MinimumMajor: 15000}

	assert.Equal(t, int64(5000), err.Shortfall())
	assert.Equal(t, "cart total Rp 10.000 is below the minimum of Rp 15.000; add Rp 5.000 more to check out", err.Error())
}

func TestError_MessagesAreDistinct(t *testing.T) {
	kinds := []Kind{
		KindCartNotFound,
		KindEmptyCart,
		KindAllItemsFree,
		KindBelowItemMinimum,
		KindBelowCartMinimum,
		KindBelowTransactionMinimum,
		KindSuspiciousAmount,
		KindProcessorRejected,
		KindCheckoutInProgress,
	}

	seen := make(map[string]Kind)
	for _, k := range kinds {
		msg := (&Error{Kind: k, CartID: "c-1", AmountMajor: 1, MinimumMajor: 15000, ItemIndexes: []int{0}}).Message()
		if prev, dup := seen[msg]; dup {
			t.Errorf("kinds %s and %s share message %q", prev, k, msg)
		}
		seen[msg] = k
	}
}

func TestError_ShortfallNeverNegative(t *testing.T) {
	err := &Error{Kind: KindBelowTransactionMinimum, AmountMajor: 20000, MinimumMajor: 15000}
	assert.Zero(t, err.Shortfall())
}
