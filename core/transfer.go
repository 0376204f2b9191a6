package core

import (
	"github.com/shopspring/decimal"
)

// TransferRequest is a value object describing one outgoing transfer.
// WalletID is optional and defaults to the owner's primary wallet.
type TransferRequest struct {
	Destination string          `json:"destination"`
	AmountSOL   decimal.Decimal `json:"amount_sol"`
	WalletID    string          `json:"wallet_id,omitempty"`
	Memo        string          `json:"memo,omitempty"`
}

type TransferReceipt struct {
	TransactionID  string          `json:"transaction_id"`
	AmountSOL      decimal.Decimal `json:"amount_sol"`
	AmountLamports uint64          `json:"amount_lamports"`
}
