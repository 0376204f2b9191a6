package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helionpay/custody-wallet/core"
	"golang.org/x/sync/errgroup"
)

func New(
	jobs core.ReconcileStore,
	wallets core.WalletStore,
	activities core.ActivityStore,
	chainz core.ChainService,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		jobs:       jobs,
		wallets:    wallets,
		activities: activities,
		chainz:     chainz,
		logger:     logger.With("worker", "reconciler"),
	}
}

// Reconciler drains the post-broadcast bookkeeping queue: transfers that
// landed on chain but whose local balance refresh or activity append
// failed. Jobs are retried until both writes succeed.
type Reconciler struct {
	jobs       core.ReconcileStore
	wallets    core.WalletStore
	activities core.ActivityStore
	chainz     core.ChainService
	logger     *slog.Logger
}

func (w *Reconciler) Run(ctx context.Context) error {
	w.logger.Info("reconciler start")

	for {
		dur := 5 * time.Second
		if w.run(ctx) == nil {
			dur = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

func (w *Reconciler) run(ctx context.Context) error {
	const limit = 64
	jobs, err := w.jobs.List(ctx, limit)
	if err != nil {
		w.logger.Error("jobs.List", "err", err)
		return err
	}

	if len(jobs) == 0 {
		return fmt.Errorf("reconcile jobs dry")
	}

	var g errgroup.Group
	g.SetLimit(10)

	for idx := range jobs {
		job := jobs[idx]
		g.Go(func() error {
			return w.handleJob(ctx, job)
		})
	}

	return g.Wait()
}

func (w *Reconciler) handleJob(ctx context.Context, job *core.ReconcileJob) error {
	logger := w.logger.With("job", job.ID, "signature", job.TxSignature)

	if err := w.reconcile(ctx, job); err != nil {
		logger.Error("reconcile", "attempts", job.Attempts, "err", err)

		if err := w.jobs.Bump(ctx, job.ID); err != nil {
			logger.Error("jobs.Bump", "err", err)
		}

		return err
	}

	if err := w.jobs.Delete(ctx, job.ID); err != nil {
		logger.Error("jobs.Delete", "err", err)
		return err
	}

	logger.Info("transfer reconciled")
	return nil
}

func (w *Reconciler) reconcile(ctx context.Context, job *core.ReconcileJob) error {
	wallet, err := w.wallets.FindID(ctx, job.WalletID)
	if err != nil {
		return fmt.Errorf("find wallet: %w", err)
	}

	balance, err := w.chainz.Balance(ctx, wallet.PublicKey)
	if err != nil {
		return fmt.Errorf("chain balance: %w", err)
	}

	if err := w.wallets.UpdateBalance(ctx, wallet.ID, balance.Lamports, time.Now()); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	activity := &core.Activity{
		UserID:         job.UserID,
		WalletID:       job.WalletID,
		Type:           core.ActivityTransferOut,
		Description:    fmt.Sprintf("Sent %s SOL to %s", core.LamportsToSOL(job.AmountLamports), job.Destination),
		TxSignature:    job.TxSignature,
		AmountLamports: job.AmountLamports,
		Metadata: map[string]any{
			"destination": job.Destination,
			"memo":        job.Memo,
			"reconciled":  true,
		},
	}

	if err := w.activities.Create(ctx, activity); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	return nil
}
