package wallet

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/helionpay/custody-wallet/core"
	"github.com/helionpay/custody-wallet/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

func New(
	wallets core.WalletStore,
	activities core.ActivityStore,
	jobs core.ReconcileStore,
	signerz core.SignerService,
	chainz core.ChainService,
	logger *slog.Logger,
) core.WalletService {
	return &service{
		wallets:    wallets,
		activities: activities,
		jobs:       jobs,
		signerz:    signerz,
		chainz:     chainz,
		logger:     logger.With("service", "wallet"),
		sendLocks:  newLocker(),
	}
}

type service struct {
	wallets    core.WalletStore
	activities core.ActivityStore
	jobs       core.ReconcileStore
	signerz    core.SignerService
	chainz     core.ChainService
	logger     *slog.Logger

	sf        singleflight.Group
	sendLocks *locker
}

// EnsurePrimaryWallet is idempotent: the owner's existing primary wallet
// is returned unchanged, a new custodial one is provisioned only when
// none exists. Concurrent calls for one owner are deduplicated in-process
// and guarded cross-instance by the store's conditional insert.
func (s *service) EnsurePrimaryWallet(ctx context.Context, userID string) (*core.Wallet, error) {
	v, err, _ := s.sf.Do("ensure:"+userID, func() (any, error) {
		return s.ensurePrimary(ctx, userID)
	})

	if err != nil {
		return nil, err
	}

	return v.(*core.Wallet), nil
}

func (s *service) ensurePrimary(ctx context.Context, userID string) (*core.Wallet, error) {
	logger := s.logger.With("user", userID)

	existing, err := s.wallets.FindPrimary(ctx, userID)
	if err == nil {
		return existing, nil
	}

	if !store.IsErrNotFound(err) {
		return nil, core.WrapError(core.CodeStoreUnavailable, "find primary wallet", err)
	}

	key, err := s.signerz.Provision(ctx, userID)
	if err != nil {
		// no wallet record created, no partial state
		return nil, err
	}

	now := time.Now()
	wallet := &core.Wallet{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		UpdatedAt:         now,
		UserID:            userID,
		Kind:              core.WalletKindCustodial,
		PublicKey:         key.PublicKey,
		KeyRef:            key.KeyRef,
		Label:             "Primary Wallet",
		Provider:          "custodial",
		IsPrimary:         true,
		LastBalanceUpdate: now,
		IsActive:          true,
	}

	if err := s.wallets.CreatePrimary(ctx, wallet); err != nil {
		if store.IsErrUniqueViolation(err) {
			// a concurrent provisioner won the race; the extra key holds
			// no funds and stays unused in the vault
			logger.Info("primary wallet already provisioned concurrently")
			return s.findPrimary(ctx, userID)
		}

		// a key was minted but not persisted; callers retry by invoking
		// EnsurePrimaryWallet again, which mints a fresh key
		return nil, core.WrapError(core.CodeProvisioningInconsistent, "persist provisioned wallet", err)
	}

	logger.Info("primary wallet provisioned", "wallet", wallet.ID, "public_key", wallet.PublicKey)

	s.recordActivity(ctx, &core.Activity{
		UserID:      userID,
		WalletID:    wallet.ID,
		Type:        core.ActivityWalletCreated,
		Description: "Custodial primary wallet provisioned",
	})

	return wallet, nil
}

func (s *service) findPrimary(ctx context.Context, userID string) (*core.Wallet, error) {
	wallet, err := s.wallets.FindPrimary(ctx, userID)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.NewError(core.CodeWalletNotFound, "no primary wallet")
		}

		return nil, core.WrapError(core.CodeStoreUnavailable, "find primary wallet", err)
	}

	return wallet, nil
}

func (s *service) ConnectExternalWallet(ctx context.Context, userID string, req core.ConnectRequest) (*core.Wallet, error) {
	if !s.chainz.ValidAddress(req.PublicKey) {
		return nil, core.NewError(core.CodeInvalidRequest, "invalid public key format")
	}

	if _, err := s.wallets.FindPublicKey(ctx, req.PublicKey); err == nil {
		return nil, core.NewError(core.CodeWalletExists, "wallet already connected")
	} else if !store.IsErrNotFound(err) {
		return nil, core.WrapError(core.CodeStoreUnavailable, "find wallet by public key", err)
	}

	label := req.Label
	if label == "" {
		label = "External Wallet"
	}

	provider := req.Provider
	if provider == "" {
		provider = "external"
	}

	now := time.Now()
	wallet := &core.Wallet{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		UpdatedAt:         now,
		UserID:            userID,
		Kind:              core.WalletKindExternal,
		PublicKey:         req.PublicKey,
		Label:             label,
		Provider:          provider,
		LastBalanceUpdate: now,
		IsActive:          true,
		Metadata:          req.Metadata,
	}

	if err := s.wallets.Create(ctx, wallet); err != nil {
		if store.IsErrUniqueViolation(err) {
			return nil, core.NewError(core.CodeWalletExists, "wallet already connected")
		}

		return nil, core.WrapError(core.CodeStoreUnavailable, "create external wallet", err)
	}

	s.recordActivity(ctx, &core.Activity{
		UserID:      userID,
		WalletID:    wallet.ID,
		Type:        core.ActivityWalletConnected,
		Description: "External wallet connected",
		Metadata:    map[string]any{"provider": provider},
	})

	return wallet, nil
}

func (s *service) ListWallets(ctx context.Context, userID string) ([]*core.Wallet, error) {
	wallets, err := s.wallets.FindUser(ctx, userID, true)
	if err != nil {
		return nil, core.WrapError(core.CodeStoreUnavailable, "list wallets", err)
	}

	return wallets, nil
}

// WalletSummary aggregates cached balances only; RefreshBalance and
// TotalBalance are the live paths.
func (s *service) WalletSummary(ctx context.Context, userID string) (*core.WalletSummary, error) {
	wallets, err := s.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &core.WalletSummary{Wallets: wallets}

	var total uint64
	for _, w := range wallets {
		total += w.BalanceLamports
		if w.IsPrimary {
			summary.Primary = w
		}
	}

	summary.Total = core.Balance{
		Lamports: total,
		SOL:      core.LamportsToSOL(total),
	}

	return summary, nil
}

func (s *service) UpdateWallet(ctx context.Context, userID, walletID string, req core.UpdateRequest) (*core.Wallet, error) {
	wallet, err := s.resolveOwned(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	if req.Label != "" {
		wallet.Label = req.Label
	}

	if req.Metadata != nil {
		wallet.Metadata = req.Metadata
	}

	if err := s.wallets.Update(ctx, wallet); err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.NewError(core.CodeWalletNotFound, "wallet not found")
		}

		return nil, core.WrapError(core.CodeStoreUnavailable, "update wallet", err)
	}

	return wallet, nil
}

func (s *service) DeactivateWallet(ctx context.Context, userID, walletID string) error {
	if _, err := s.resolveOwned(ctx, userID, walletID); err != nil {
		return err
	}

	if err := s.wallets.Deactivate(ctx, userID, walletID); err != nil {
		if store.IsErrNotFound(err) {
			return core.NewError(core.CodeWalletNotFound, "wallet not found")
		}

		return core.WrapError(core.CodeStoreUnavailable, "deactivate wallet", err)
	}

	s.logger.Info("wallet deactivated", "user", userID, "wallet", walletID)
	return nil
}

func (s *service) SetPrimary(ctx context.Context, userID, walletID string) error {
	if _, err := s.resolveOwned(ctx, userID, walletID); err != nil {
		return err
	}

	if err := s.wallets.SetPrimary(ctx, userID, walletID); err != nil {
		if store.IsErrNotFound(err) {
			return core.NewError(core.CodeWalletNotFound, "wallet not found")
		}

		return core.WrapError(core.CodeStoreUnavailable, "set primary wallet", err)
	}

	s.logger.Info("primary wallet set", "user", userID, "wallet", walletID)
	return nil
}

func (s *service) RefreshBalance(ctx context.Context, userID, walletID string) (*core.Balance, error) {
	wallet, err := s.resolveOwned(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	return s.refreshWallet(ctx, wallet)
}

func (s *service) refreshWallet(ctx context.Context, wallet *core.Wallet) (*core.Balance, error) {
	balance, err := s.chainz.Balance(ctx, wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	if err := s.wallets.UpdateBalance(ctx, wallet.ID, balance.Lamports, time.Now()); err != nil {
		return nil, core.WrapError(core.CodeStoreUnavailable, "update cached balance", err)
	}

	return balance, nil
}

// TotalBalance refreshes every active wallet with bounded concurrency and
// sums live lamports. Any single failure fails the whole aggregate: a
// financial total must never silently omit a wallet.
func (s *service) TotalBalance(ctx context.Context, userID string) (*core.TotalBalance, error) {
	wallets, err := s.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		mux   sync.Mutex
		total uint64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for idx := range wallets {
		wallet := wallets[idx]
		g.Go(func() error {
			balance, err := s.refreshWallet(ctx, wallet)
			if err != nil {
				return err
			}

			mux.Lock()
			total += balance.Lamports
			mux.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &core.TotalBalance{
		Balance: core.Balance{
			Lamports: total,
			SOL:      core.LamportsToSOL(total),
		},
		WalletCount: len(wallets),
	}, nil
}

func (s *service) TransactionStatus(ctx context.Context, signature string) (*core.TxStatus, error) {
	return s.chainz.TransactionStatus(ctx, signature)
}

func (s *service) ListActivities(ctx context.Context, userID string, limit int) ([]*core.Activity, error) {
	if limit <= 0 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}

	activities, err := s.activities.ListUser(ctx, userID, limit)
	if err != nil {
		return nil, core.WrapError(core.CodeStoreUnavailable, "list activities", err)
	}

	return activities, nil
}

func (s *service) resolveOwned(ctx context.Context, userID, walletID string) (*core.Wallet, error) {
	wallet, err := s.wallets.FindID(ctx, walletID)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.NewError(core.CodeWalletNotFound, "wallet not found")
		}

		return nil, core.WrapError(core.CodeStoreUnavailable, "find wallet", err)
	}

	if wallet.UserID != userID || !wallet.IsActive {
		return nil, core.NewError(core.CodeWalletNotFound, "wallet not found")
	}

	return wallet, nil
}

func (s *service) recordActivity(ctx context.Context, activity *core.Activity) {
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Error("activities.Create", "type", activity.Type, "wallet", activity.WalletID, "err", err)
	}
}
