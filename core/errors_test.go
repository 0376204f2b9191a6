package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(CodeStoreUnavailable, "find wallet", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	if got := err.Error(); got != "store_unavailable: find wallet: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorIsMatchesOnCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewError(CodeWalletNotFound, "no primary wallet"))

	if !errors.Is(err, &Error{Code: CodeWalletNotFound}) {
		t.Error("errors.Is did not match on code")
	}

	if errors.Is(err, &Error{Code: CodeWalletExists}) {
		t.Error("errors.Is matched a different code")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"taxonomy error", NewError(CodeInsufficientBalance, "short"), CodeInsufficientBalance},
		{"wrapped taxonomy error", fmt.Errorf("send: %w", NewError(CodeBroadcastFailed, "timeout")), CodeBroadcastFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := NewError(CodeInvalidDestination, "bad address")

	if !IsCode(err, CodeInvalidDestination) {
		t.Error("IsCode missed a direct match")
	}

	if IsCode(err, CodeInvalidRequest) {
		t.Error("IsCode matched the wrong code")
	}
}

func TestWithMeta(t *testing.T) {
	err := NewError(CodeBroadcastFailed, "await confirmation").
		WithMeta("signature", "abc")

	if err.Meta["signature"] != "abc" {
		t.Errorf("Meta = %v", err.Meta)
	}
}
