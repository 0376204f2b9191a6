package api

import (
	"errors"
	"net/http"

	"github.com/helionpay/custody-wallet/core"
)

func httpStatus(code core.ErrorCode) int {
	switch code {
	case core.CodeWalletNotFound:
		return http.StatusNotFound
	case core.CodeInvalidDestination, core.CodeUnsupportedKind, core.CodeInvalidRequest:
		return http.StatusBadRequest
	case core.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	case core.CodeWalletExists:
		return http.StatusConflict
	case core.CodeBroadcastFailed:
		// ambiguous: the transaction may have landed, callers must probe
		// the status endpoint before resubmitting
		return http.StatusGatewayTimeout
	case core.CodeSigningUnavailable, core.CodeStoreUnavailable, core.CodeProvisioningInconsistent:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the taxonomy message without wrapped internals:
// transport-level details never reach clients.
func errorMessage(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr.Msg
	}

	return "internal error"
}
