package chain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	return New(Config{Endpoint: "http://localhost:8899"}).(*service)
}

func TestValidAddress(t *testing.T) {
	s := newTestService(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"generated key", key.PublicKey().String(), true},
		{"system program", "11111111111111111111111111111111", true},
		{"empty", "", false},
		{"not base58", "0x8ba1f109551bD432803012645Ac136ddd64DBA72", false},
		{"too short", "abc", false},
		{"invalid characters", "IIIIIIIIIIIIIIIIIIIIIIIIIIIIIIII", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ValidAddress(tt.address); got != tt.want {
				t.Errorf("ValidAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}

	// second lookup hits the parse cache
	if !s.ValidAddress(key.PublicKey().String()) {
		t.Error("cached address no longer valid")
	}
}

func TestValidSignature(t *testing.T) {
	s := newTestService(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	sig, err := key.Sign([]byte("payload"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name      string
		signature string
		want      bool
	}{
		{"real signature", sig.String(), true},
		{"empty", "", false},
		{"public key length", key.PublicKey().String(), false},
		{"invalid characters", "not a signature at all!!!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ValidSignature(tt.signature); got != tt.want {
				t.Errorf("ValidSignature(%q) = %v, want %v", tt.signature, got, tt.want)
			}
		})
	}
}

func Test_confirmed(t *testing.T) {
	tests := []struct {
		name   string
		status rpc.ConfirmationStatusType
		want   rpc.CommitmentType
		expect bool
	}{
		{"confirmed satisfies confirmed", rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed, true},
		{"finalized satisfies confirmed", rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed, true},
		{"processed fails confirmed", rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed, false},
		{"confirmed fails finalized", rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized, false},
		{"finalized satisfies finalized", rpc.ConfirmationStatusFinalized, rpc.CommitmentFinalized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confirmed(tt.status, tt.want); got != tt.expect {
				t.Errorf("confirmed(%v, %v) = %v, want %v", tt.status, tt.want, got, tt.expect)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	s := newTestService(t)

	if s.cfg.Commitment != rpc.CommitmentConfirmed {
		t.Errorf("default commitment = %v, want confirmed", s.cfg.Commitment)
	}

	if s.cfg.ConfirmTimeout <= 0 {
		t.Errorf("default confirm timeout = %v, want positive", s.cfg.ConfirmTimeout)
	}
}

func TestConfigMissingEndpoint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing endpoint")
		}
	}()

	New(Config{})
}
