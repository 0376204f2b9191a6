package wallet

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/helionpay/custody-wallet/core"
	"github.com/helionpay/custody-wallet/store"
	"github.com/pandodao/generic"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.WalletStore {
	return &walletStore{db: db}
}

type walletStore struct {
	db *nap.DB
}

func insert(ctx context.Context, r sq.BaseRunner, w *core.Wallet) error {
	b := store.Builder.Insert("wallets").
		Columns(scanColumns...).
		Values(w.ID, w.CreatedAt, w.UpdatedAt, w.UserID, w.Kind, w.PublicKey,
			toNullString(w.KeyRef), w.Label, w.Provider, w.IsPrimary,
			w.BalanceLamports, w.LastBalanceUpdate, w.IsActive, metadata(w.Metadata))

	_, err := b.RunWith(r).ExecContext(ctx)
	return err
}

func (s *walletStore) Create(ctx context.Context, w *core.Wallet) error {
	return insert(ctx, s.db, w)
}

// CreatePrimary relies on the partial unique index on
// (user_id) WHERE is_primary AND is_active to reject a second concurrent
// primary for the same owner.
func (s *walletStore) CreatePrimary(ctx context.Context, w *core.Wallet) error {
	w.IsPrimary = true
	return insert(ctx, s.db, w)
}

func (s *walletStore) FindID(ctx context.Context, id string) (*core.Wallet, error) {
	b := store.Builder.Select(scanColumns...).From("wallets").Where(sq.Eq{"id": id})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var w core.Wallet
	if err := scanWallet(row, &w); err != nil {
		return nil, err
	}

	return &w, nil
}

func (s *walletStore) FindUser(ctx context.Context, userID string, activeOnly bool) ([]*core.Wallet, error) {
	b := store.Builder.Select(scanColumns...).
		From("wallets").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("is_primary DESC", "created_at DESC")

	if activeOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var wallets []*core.Wallet
	for rows.Next() {
		var w core.Wallet
		if err := scanWallet(rows, &w); err != nil {
			return nil, err
		}

		wallets = append(wallets, &w)
	}

	return wallets, rows.Err()
}

func (s *walletStore) FindPrimary(ctx context.Context, userID string) (*core.Wallet, error) {
	b := store.Builder.Select(scanColumns...).
		From("wallets").
		Where(sq.Eq{"user_id": userID, "is_primary": true, "is_active": true})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var w core.Wallet
	if err := scanWallet(row, &w); err != nil {
		return nil, err
	}

	return &w, nil
}

func (s *walletStore) FindPublicKey(ctx context.Context, publicKey string) (*core.Wallet, error) {
	b := store.Builder.Select(scanColumns...).
		From("wallets").
		Where(sq.Eq{"public_key": publicKey})
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var w core.Wallet
	if err := scanWallet(row, &w); err != nil {
		return nil, err
	}

	return &w, nil
}

func (s *walletStore) Update(ctx context.Context, w *core.Wallet) error {
	b := store.Builder.Update("wallets").
		Set("label", w.Label).
		Set("metadata", metadata(w.Metadata)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": w.ID, "user_id": w.UserID, "is_active": true})

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (s *walletStore) UpdateBalance(ctx context.Context, id string, lamports uint64, at time.Time) error {
	b := store.Builder.Update("wallets").
		Set("balance_lamports", lamports).
		Set("last_balance_update", at).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id})

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// SetPrimary clears and sets the primary flag inside one transaction so
// readers never observe zero or two primaries for an owner.
func (s *walletStore) SetPrimary(ctx context.Context, userID, id string) error {
	tx := generic.Must(s.db.Begin())
	defer tx.Rollback()

	unset := store.Builder.Update("wallets").
		Set("is_primary", false).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"user_id": userID, "is_primary": true})
	if _, err := unset.RunWith(tx).ExecContext(ctx); err != nil {
		return err
	}

	set := store.Builder.Update("wallets").
		Set("is_primary", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "user_id": userID, "is_active": true})
	result, err := set.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return err
	}

	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *walletStore) Deactivate(ctx context.Context, userID, id string) error {
	b := store.Builder.Update("wallets").
		Set("is_active", false).
		Set("is_primary", false).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "user_id": userID})

	result, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (s *walletStore) ListActive(ctx context.Context, offset uint64, limit int) ([]*core.Wallet, uint64, error) {
	columns := append([]string{"seq"}, scanColumns...)
	b := store.Builder.Select(columns...).
		From("wallets").
		Where(sq.Gt{"seq": offset}).
		Where(sq.Eq{"is_active": true}).
		OrderBy("seq").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, offset, err
	}

	defer rows.Close()

	var (
		wallets []*core.Wallet
		next    = offset
	)

	for rows.Next() {
		var (
			seq uint64
			w   core.Wallet
		)

		if err := scanWalletSeq(rows, &seq, &w); err != nil {
			return nil, offset, err
		}

		wallets = append(wallets, &w)
		next = seq
	}

	return wallets, next, rows.Err()
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
