package wallet

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/helionpay/custody-wallet/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"created_at",
	"updated_at",
	"user_id",
	"kind",
	"public_key",
	"key_ref",
	"label",
	"provider",
	"is_primary",
	"balance_lamports",
	"last_balance_update",
	"is_active",
	"metadata",
}

func scanWallet(scanner scanner, w *core.Wallet) error {
	var (
		keyRef sql.NullString
		meta   metadata
	)

	if err := scanner.Scan(
		&w.ID,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.UserID,
		&w.Kind,
		&w.PublicKey,
		&keyRef,
		&w.Label,
		&w.Provider,
		&w.IsPrimary,
		&w.BalanceLamports,
		&w.LastBalanceUpdate,
		&w.IsActive,
		&meta,
	); err != nil {
		return err
	}

	w.KeyRef = keyRef.String
	w.Metadata = meta
	return nil
}

func scanWalletSeq(scanner scanner, seq *uint64, w *core.Wallet) error {
	var (
		keyRef sql.NullString
		meta   metadata
	)

	if err := scanner.Scan(
		seq,
		&w.ID,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.UserID,
		&w.Kind,
		&w.PublicKey,
		&keyRef,
		&w.Label,
		&w.Provider,
		&w.IsPrimary,
		&w.BalanceLamports,
		&w.LastBalanceUpdate,
		&w.IsActive,
		&meta,
	); err != nil {
		return err
	}

	w.KeyRef = keyRef.String
	w.Metadata = meta
	return nil
}

// metadata maps the jsonb column to map[string]any.
type metadata map[string]any

func (m metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(map[string]any(m))
}

func (m *metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}

	return json.Unmarshal(raw, (*map[string]any)(m))
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
