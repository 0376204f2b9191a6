package core

import (
	"context"
	"time"
)

// ReconcileJob records post-broadcast bookkeeping that failed and must be
// retried out-of-band: the on-chain transfer already succeeded, only the
// local balance refresh and activity append are outstanding.
type ReconcileJob struct {
	ID             uint64    `json:"id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	WalletID       string    `json:"wallet_id,omitempty"`
	TxSignature    string    `json:"tx_signature,omitempty"`
	AmountLamports uint64    `json:"amount_lamports,omitempty"`
	Destination    string    `json:"destination,omitempty"`
	Memo           string    `json:"memo,omitempty"`
	Attempts       int       `json:"attempts,omitempty"`
}

type ReconcileStore interface {
	Create(ctx context.Context, job *ReconcileJob) error
	List(ctx context.Context, limit int) ([]*ReconcileJob, error)
	Delete(ctx context.Context, id uint64) error
	Bump(ctx context.Context, id uint64) error
}
