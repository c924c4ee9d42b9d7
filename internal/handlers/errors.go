package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/storefront-checkout/internal/apperr"
	"github.com/Lixing-Zhang/storefront-checkout/internal/money"
)

// StatusForKind maps a checkout failure kind to its HTTP status
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindCartNotFound:
		return http.StatusNotFound
	case apperr.KindCheckoutInProgress:
		return http.StatusConflict
	case apperr.KindEmptyCart,
		apperr.KindAllItemsFree,
		apperr.KindBelowItemMinimum,
		apperr.KindBelowCartMinimum,
		apperr.KindBelowTransactionMinimum,
		apperr.KindSuspiciousAmount:
		return http.StatusUnprocessableEntity
	case apperr.KindProcessorRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError writes a typed checkout failure. Anything that is not an
// *apperr.Error is logged and reported as an internal error.
func WriteAppError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.Error("unexpected checkout error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
		return
	}

	resp := ErrorResponse{
		Error: appErr.Message(),
		Kind:  string(appErr.Kind),
		Items: appErr.ItemIndexes,
	}
	if appErr.MinimumMajor > 0 {
		currency := appErr.Currency
		if currency == "" {
			currency = "idr"
		}
		resp.Minimum = money.Format(currency, appErr.MinimumMajor)
		if shortfall := appErr.Shortfall(); shortfall > 0 && appErr.Kind != apperr.KindBelowItemMinimum {
			resp.Shortfall = money.Format(currency, shortfall)
		}
	}

	WriteJSON(w, StatusForKind(appErr.Kind), resp, logger)
}
