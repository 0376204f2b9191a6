package core

import (
	"context"
	"time"
)

const (
	ActivityTransferOut     = "external_transfer_out"
	ActivityWalletCreated   = "wallet_created"
	ActivityWalletConnected = "wallet_connected"
)

// Activity is an append-only audit entry. Rows are never updated or
// deleted.
type Activity struct {
	ID             uint64         `json:"id,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	WalletID       string         `json:"wallet_id,omitempty"`
	Type           string         `json:"type,omitempty"`
	Description    string         `json:"description,omitempty"`
	TxSignature    string         `json:"tx_signature,omitempty"`
	AmountLamports uint64         `json:"amount_lamports,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type ActivityStore interface {
	Create(ctx context.Context, activity *Activity) error
	ListUser(ctx context.Context, userID string, limit int) ([]*Activity, error)
}
