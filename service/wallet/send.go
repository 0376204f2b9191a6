package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/helionpay/custody-wallet/core"
)

// Send runs the transfer protocol: resolve source, validate destination,
// check the live balance, build, sign, broadcast and confirm, then
// reconcile local state. Cheap validations come first; the live balance
// is read immediately before signing to minimize the staleness window;
// local state is only touched after the broadcast is confirmed.
func (s *service) Send(ctx context.Context, userID string, req core.TransferRequest) (*core.TransferReceipt, error) {
	wallet, err := s.resolveSource(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if !s.chainz.ValidAddress(req.Destination) {
		return nil, core.NewError(core.CodeInvalidDestination, "invalid destination address")
	}

	if !req.AmountSOL.IsPositive() {
		return nil, core.NewError(core.CodeInvalidRequest, "amount must be positive")
	}

	lamports := core.SOLToLamports(req.AmountSOL)
	if lamports == 0 {
		return nil, core.NewError(core.CodeInvalidRequest, "amount below one lamport")
	}

	logger := s.logger.With("user", userID, "wallet", wallet.ID)

	// serializes concurrent sends from one wallet through balance check,
	// signing and broadcast; other wallets proceed independently
	s.sendLocks.Lock(wallet.ID)
	defer s.sendLocks.Unlock(wallet.ID)

	// always the live chain balance, the cached value must never gate an
	// irreversible transfer
	balance, err := s.chainz.Balance(ctx, wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	if balance.Lamports < lamports {
		return nil, core.NewError(core.CodeInsufficientBalance,
			fmt.Sprintf("available %d lamports, requested %d", balance.Lamports, lamports))
	}

	tx, err := s.chainz.BuildTransfer(ctx, wallet.PublicKey, req.Destination, lamports)
	if err != nil {
		return nil, err
	}

	signed, err := s.signerz.Sign(ctx, tx, wallet.PublicKey, wallet.KeyRef)
	if err != nil {
		// nothing was broadcast, no on-chain cleanup needed
		return nil, err
	}

	signature, err := s.chainz.BroadcastAndConfirm(ctx, signed)
	if err != nil {
		logger.Error("broadcast failed", "signature", signature, "err", err)
		return nil, err
	}

	logger.Info("transfer confirmed", "signature", signature, "lamports", lamports, "destination", req.Destination)

	// best-effort bookkeeping: the on-chain transfer already succeeded,
	// failures here are queued for the reconciler and never surfaced.
	// caller cancellation must not skip it, hence WithoutCancel
	s.reconcile(context.WithoutCancel(ctx), wallet, signature, lamports, req)

	return &core.TransferReceipt{
		TransactionID:  signature,
		AmountSOL:      req.AmountSOL,
		AmountLamports: lamports,
	}, nil
}

func (s *service) resolveSource(ctx context.Context, userID string, req core.TransferRequest) (*core.Wallet, error) {
	var (
		wallet *core.Wallet
		err    error
	)

	if req.WalletID != "" {
		wallet, err = s.resolveOwned(ctx, userID, req.WalletID)
	} else {
		wallet, err = s.findPrimary(ctx, userID)
	}

	if err != nil {
		return nil, err
	}

	if wallet.Kind != core.WalletKindCustodial {
		// externally-held keys sign client-side, outside this path
		return nil, core.NewError(core.CodeUnsupportedKind, "can only send from custodial wallets")
	}

	return wallet, nil
}

func (s *service) reconcile(ctx context.Context, wallet *core.Wallet, signature string, lamports uint64, req core.TransferRequest) {
	logger := s.logger.With("wallet", wallet.ID, "signature", signature)

	var failed bool
	if _, err := s.refreshWallet(ctx, wallet); err != nil {
		logger.Error("post-send balance refresh failed", "err", err)
		failed = true
	}

	activity := &core.Activity{
		UserID:         wallet.UserID,
		WalletID:       wallet.ID,
		Type:           core.ActivityTransferOut,
		Description:    fmt.Sprintf("Sent %s SOL to %s", req.AmountSOL, req.Destination),
		TxSignature:    signature,
		AmountLamports: lamports,
		Metadata: map[string]any{
			"destination": req.Destination,
			"memo":        req.Memo,
			"sent_at":     time.Now().Format(time.RFC3339),
		},
	}

	if !failed {
		if err := s.activities.Create(ctx, activity); err != nil {
			logger.Error("post-send activity append failed", "err", err)
			failed = true
		}
	}

	if !failed {
		return
	}

	job := &core.ReconcileJob{
		UserID:         wallet.UserID,
		WalletID:       wallet.ID,
		TxSignature:    signature,
		AmountLamports: lamports,
		Destination:    req.Destination,
		Memo:           req.Memo,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		// the syncer's periodic refresh still converges the cached
		// balance; only the audit row is at risk here
		logger.Error("enqueue reconcile job failed", "err", err)
	}
}
