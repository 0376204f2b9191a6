package core

import (
	"context"
	"time"
)

type WalletKind uint8

const (
	_ WalletKind = iota
	WalletKindCustodial
	WalletKindExternal
)

func (k WalletKind) String() string {
	switch k {
	case WalletKindCustodial:
		return "custodial"
	case WalletKindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Wallet is one Solana address under management. For custodial wallets
// KeyRef points into the signer's vault; external wallets never have one.
// BalanceLamports is a read-through cache, the chain is the source of truth.
type Wallet struct {
	ID                string         `json:"id,omitempty"`
	CreatedAt         time.Time      `json:"created_at,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at,omitempty"`
	UserID            string         `json:"user_id,omitempty"`
	Kind              WalletKind     `json:"kind,omitempty"`
	PublicKey         string         `json:"public_key,omitempty"`
	KeyRef            string         `json:"-"`
	Label             string         `json:"label,omitempty"`
	Provider          string         `json:"provider,omitempty"`
	IsPrimary         bool           `json:"is_primary"`
	BalanceLamports   uint64         `json:"balance_lamports"`
	LastBalanceUpdate time.Time      `json:"last_balance_update,omitempty"`
	IsActive          bool           `json:"is_active"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type WalletStore interface {
	Create(ctx context.Context, wallet *Wallet) error
	// CreatePrimary inserts a wallet with the primary flag set. The store
	// must reject the insert if the owner already has an active primary
	// wallet, even under concurrent callers.
	CreatePrimary(ctx context.Context, wallet *Wallet) error
	FindID(ctx context.Context, id string) (*Wallet, error)
	FindUser(ctx context.Context, userID string, activeOnly bool) ([]*Wallet, error)
	FindPrimary(ctx context.Context, userID string) (*Wallet, error)
	FindPublicKey(ctx context.Context, publicKey string) (*Wallet, error)
	Update(ctx context.Context, wallet *Wallet) error
	UpdateBalance(ctx context.Context, id string, lamports uint64, at time.Time) error
	// SetPrimary clears the primary flag on all of the owner's wallets and
	// sets it on the given active wallet as a single transaction.
	SetPrimary(ctx context.Context, userID, id string) error
	Deactivate(ctx context.Context, userID, id string) error
	// ListActive pages active wallets across all owners ordered by sequence,
	// returning the next offset.
	ListActive(ctx context.Context, offset uint64, limit int) ([]*Wallet, uint64, error)
}

// WalletService is the orchestrator exposed to the controller layer.
type WalletService interface {
	EnsurePrimaryWallet(ctx context.Context, userID string) (*Wallet, error)
	ConnectExternalWallet(ctx context.Context, userID string, req ConnectRequest) (*Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]*Wallet, error)
	WalletSummary(ctx context.Context, userID string) (*WalletSummary, error)
	UpdateWallet(ctx context.Context, userID, walletID string, req UpdateRequest) (*Wallet, error)
	DeactivateWallet(ctx context.Context, userID, walletID string) error
	SetPrimary(ctx context.Context, userID, walletID string) error
	RefreshBalance(ctx context.Context, userID, walletID string) (*Balance, error)
	TotalBalance(ctx context.Context, userID string) (*TotalBalance, error)
	Send(ctx context.Context, userID string, req TransferRequest) (*TransferReceipt, error)
	TransactionStatus(ctx context.Context, signature string) (*TxStatus, error)
	ListActivities(ctx context.Context, userID string, limit int) ([]*Activity, error)
}

type ConnectRequest struct {
	PublicKey string         `json:"public_key"`
	Provider  string         `json:"provider,omitempty"`
	Label     string         `json:"label,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type UpdateRequest struct {
	Label    string         `json:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type WalletSummary struct {
	Wallets []*Wallet `json:"wallets"`
	Primary *Wallet   `json:"primary,omitempty"`
	Total   Balance   `json:"total"`
}

type TotalBalance struct {
	Balance
	WalletCount int `json:"wallet_count"`
}
