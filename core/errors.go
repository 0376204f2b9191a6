package core

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// Client-caused, never retried.
	CodeWalletNotFound      ErrorCode = "wallet_not_found"
	CodeUnsupportedKind     ErrorCode = "unsupported_wallet_kind"
	CodeInvalidDestination  ErrorCode = "invalid_destination"
	CodeInsufficientBalance ErrorCode = "insufficient_balance"
	CodeWalletExists        ErrorCode = "wallet_exists"
	CodeInvalidRequest      ErrorCode = "invalid_request"

	// Infrastructure, retryable with backoff by the caller.
	CodeSigningUnavailable ErrorCode = "signing_unavailable"
	CodeStoreUnavailable   ErrorCode = "store_unavailable"

	// Terminal for the attempt, not retryable within one call.
	CodeSigningFailed ErrorCode = "signing_failed"

	// Ambiguous: the transaction may or may not have landed. Callers must
	// probe TransactionStatus before resubmitting.
	CodeBroadcastFailed ErrorCode = "broadcast_failed"

	// A key was minted but the wallet row was not persisted. Safe to retry
	// by re-invoking EnsurePrimaryWallet.
	CodeProvisioningInconsistent ErrorCode = "provisioning_inconsistent"
)

// Error carries a stable machine code plus a human message. Internal
// state such as key references or partial signatures must never appear
// in Msg or Meta.
type Error struct {
	Code ErrorCode
	Msg  string
	Meta map[string]string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is makes errors.Is match on code so sentinel-style comparisons work:
// errors.Is(err, &core.Error{Code: core.CodeWalletNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return e.Code == t.Code
}

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func WrapError(code ErrorCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, err: err}
}

func (e *Error) WithMeta(key, value string) *Error {
	if e.Meta == nil {
		e.Meta = map[string]string{}
	}

	e.Meta[key] = value
	return e
}

// CodeOf extracts the machine code from err, or empty if err is not a
// taxonomy error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
