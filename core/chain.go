package core

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type Balance struct {
	Lamports uint64          `json:"lamports"`
	SOL      decimal.Decimal `json:"sol"`
}

type TxState string

const (
	TxStatePending   TxState = "pending"
	TxStateConfirmed TxState = "confirmed"
	TxStateFailed    TxState = "failed"
)

type TxStatus struct {
	Signature     string  `json:"signature"`
	State         TxState `json:"state"`
	Confirmations uint64  `json:"confirmations"`
	Err           string  `json:"error,omitempty"`
}

// ChainService is the gateway to the Solana RPC layer: address validation,
// balance queries and transaction construction, broadcast and confirmation.
type ChainService interface {
	ValidAddress(address string) bool
	ValidSignature(signature string) bool
	Balance(ctx context.Context, publicKey string) (*Balance, error)
	// BuildTransfer returns an unsigned system-program transfer with a
	// fresh blockhash, fee payer set to from.
	BuildTransfer(ctx context.Context, from, to string, lamports uint64) (*solana.Transaction, error)
	// BroadcastAndConfirm submits a signed transaction and waits until it
	// reaches the configured commitment or ctx expires. The returned
	// signature is valid even on a confirmation timeout.
	BroadcastAndConfirm(ctx context.Context, tx *solana.Transaction) (string, error)
	TransactionStatus(ctx context.Context, signature string) (*TxStatus, error)
}

const LamportsPerSOL = uint64(solana.LAMPORTS_PER_SOL)

// SOLToLamports floors to the nearest lamport.
func SOLToLamports(sol decimal.Decimal) uint64 {
	return uint64(sol.Mul(decimal.NewFromInt(int64(LamportsPerSOL))).Floor().IntPart())
}

func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.New(int64(lamports), 0).
		Div(decimal.NewFromInt(int64(LamportsPerSOL)))
}

// StaleBefore reports whether a cached balance updated at t should be
// refreshed given the staleness window.
func StaleBefore(t time.Time, window time.Duration, now time.Time) bool {
	return t.Add(window).Before(now)
}
