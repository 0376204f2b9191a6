package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/helionpay/custody-wallet/core"
)

const (
	propertySyncOffset = "wallet_sync_offset"
)

type Config struct {
	// Window is how old a cached balance may get before the syncer
	// refreshes it.
	Window time.Duration `valid:"required"`
}

func New(
	wallets core.WalletStore,
	chainz core.ChainService,
	properties core.PropertyStore,
	logger *slog.Logger,
	cfg Config,
) *Syncer {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Syncer{
		wallets:    wallets,
		chainz:     chainz,
		properties: properties,
		logger:     logger.With("worker", "syncer"),
		cfg:        cfg,
	}
}

// Syncer pages through active wallets and resynchronizes stale cached
// balances with chain state.
type Syncer struct {
	wallets    core.WalletStore
	chainz     core.ChainService
	properties core.PropertyStore
	logger     *slog.Logger
	cfg        Config
}

func (w *Syncer) Run(ctx context.Context) error {
	w.logger.Info("syncer start")

	for {
		dur := 10 * time.Second
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

func (w *Syncer) run(ctx context.Context) error {
	var offset uint64
	if err := w.properties.Get(ctx, propertySyncOffset, &offset); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return err
	}

	const limit = 100
	wallets, nextOffset, err := w.wallets.ListActive(ctx, offset, limit)
	if err != nil {
		w.logger.Error("wallets.ListActive", "err", err)
		return err
	}

	if len(wallets) == 0 {
		// end of the table, restart the scan on the next tick
		if offset > 0 {
			if err := w.properties.Set(ctx, propertySyncOffset, uint64(0)); err != nil {
				w.logger.Error("properties.Set", "err", err)
				return err
			}
		}

		return fmt.Errorf("wallets dry")
	}

	now := time.Now()
	for _, wallet := range wallets {
		if !core.StaleBefore(wallet.LastBalanceUpdate, w.cfg.Window, now) {
			continue
		}

		if err := w.refresh(ctx, wallet); err != nil {
			w.logger.Error("refresh balance", "wallet", wallet.ID, "err", err)
			return err
		}
	}

	if err := w.properties.Set(ctx, propertySyncOffset, nextOffset); err != nil {
		w.logger.Error("properties.Set", "err", err)
		return err
	}

	return nil
}

func (w *Syncer) refresh(ctx context.Context, wallet *core.Wallet) error {
	balance, err := w.chainz.Balance(ctx, wallet.PublicKey)
	if err != nil {
		return err
	}

	if err := w.wallets.UpdateBalance(ctx, wallet.ID, balance.Lamports, time.Now()); err != nil {
		return err
	}

	w.logger.Debug("balance refreshed", "wallet", wallet.ID, "lamports", balance.Lamports)
	return nil
}
