package syncer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/helionpay/custody-wallet/core"
)

type fakeProperties struct {
	values map[string]uint64
}

func (p *fakeProperties) Get(ctx context.Context, key string, value any) error {
	*value.(*uint64) = p.values[key]
	return nil
}

func (p *fakeProperties) Set(ctx context.Context, key string, value any) error {
	p.values[key] = value.(uint64)
	return nil
}

type fakeWallets struct {
	core.WalletStore

	pages     map[uint64][]*core.Wallet
	next      map[uint64]uint64
	refreshed map[string]uint64
}

func (s *fakeWallets) ListActive(ctx context.Context, offset uint64, limit int) ([]*core.Wallet, uint64, error) {
	return s.pages[offset], s.next[offset], nil
}

func (s *fakeWallets) UpdateBalance(ctx context.Context, id string, lamports uint64, at time.Time) error {
	s.refreshed[id] = lamports
	return nil
}

type fakeChain struct {
	core.ChainService

	balances map[string]uint64
}

func (c *fakeChain) Balance(ctx context.Context, publicKey string) (*core.Balance, error) {
	lamports := c.balances[publicKey]
	return &core.Balance{Lamports: lamports, SOL: core.LamportsToSOL(lamports)}, nil
}

func TestRunRefreshesStaleWallets(t *testing.T) {
	now := time.Now()
	stale := &core.Wallet{ID: "stale", PublicKey: "pk-stale", LastBalanceUpdate: now.Add(-time.Hour), IsActive: true}
	fresh := &core.Wallet{ID: "fresh", PublicKey: "pk-fresh", LastBalanceUpdate: now, IsActive: true}

	wallets := &fakeWallets{
		pages:     map[uint64][]*core.Wallet{0: {stale, fresh}},
		next:      map[uint64]uint64{0: 2},
		refreshed: map[string]uint64{},
	}
	properties := &fakeProperties{values: map[string]uint64{}}
	chainz := &fakeChain{balances: map[string]uint64{"pk-stale": 42}}

	w := New(wallets, chainz, properties, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Window: 5 * time.Minute})

	if err := w.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got, ok := wallets.refreshed["stale"]; !ok || got != 42 {
		t.Errorf("stale wallet not refreshed, refreshed = %v", wallets.refreshed)
	}

	if _, ok := wallets.refreshed["fresh"]; ok {
		t.Error("fresh wallet refreshed inside the window")
	}

	if got := properties.values[propertySyncOffset]; got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

func TestRunResetsCursorAtTableEnd(t *testing.T) {
	wallets := &fakeWallets{
		pages:     map[uint64][]*core.Wallet{},
		next:      map[uint64]uint64{},
		refreshed: map[string]uint64{},
	}
	properties := &fakeProperties{values: map[string]uint64{propertySyncOffset: 7}}

	w := New(wallets, &fakeChain{balances: map[string]uint64{}}, properties,
		slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Window: 5 * time.Minute})

	if err := w.run(context.Background()); err == nil {
		t.Error("expected the dry signal at table end")
	}

	if got := properties.values[propertySyncOffset]; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}
