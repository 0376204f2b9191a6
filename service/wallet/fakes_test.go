package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/helionpay/custody-wallet/core"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// fakeWalletStore keeps wallets in memory and enforces the same
// uniqueness rules the postgres schema does.
type fakeWalletStore struct {
	mux     sync.Mutex
	wallets map[string]*core.Wallet

	createPrimaryCalls int
	createPrimaryErr   error
	updateBalanceErr   error

	// onCreatePrimary runs before the insert, with the lock held. Tests
	// use it to slip a concurrent winner in.
	onCreatePrimary func()
}

func newFakeWalletStore(wallets ...*core.Wallet) *fakeWalletStore {
	s := &fakeWalletStore{wallets: map[string]*core.Wallet{}}
	for _, w := range wallets {
		s.wallets[w.ID] = w
	}

	return s
}

func (s *fakeWalletStore) Create(ctx context.Context, wallet *core.Wallet) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	for _, w := range s.wallets {
		if w.PublicKey == wallet.PublicKey {
			return &pq.Error{Code: "23505"}
		}
	}

	s.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (s *fakeWalletStore) CreatePrimary(ctx context.Context, wallet *core.Wallet) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.createPrimaryCalls++
	if s.onCreatePrimary != nil {
		s.onCreatePrimary()
	}

	if s.createPrimaryErr != nil {
		return s.createPrimaryErr
	}

	for _, w := range s.wallets {
		if w.UserID == wallet.UserID && w.IsPrimary && w.IsActive {
			return &pq.Error{Code: "23505"}
		}
	}

	s.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (s *fakeWalletStore) FindID(ctx context.Context, id string) (*core.Wallet, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	return cloneWallet(w), nil
}

func (s *fakeWalletStore) FindUser(ctx context.Context, userID string, activeOnly bool) ([]*core.Wallet, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var out []*core.Wallet
	for _, w := range s.wallets {
		if w.UserID != userID {
			continue
		}

		if activeOnly && !w.IsActive {
			continue
		}

		out = append(out, cloneWallet(w))
	}

	return out, nil
}

func (s *fakeWalletStore) FindPrimary(ctx context.Context, userID string) (*core.Wallet, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	for _, w := range s.wallets {
		if w.UserID == userID && w.IsPrimary && w.IsActive {
			return cloneWallet(w), nil
		}
	}

	return nil, sql.ErrNoRows
}

func (s *fakeWalletStore) FindPublicKey(ctx context.Context, publicKey string) (*core.Wallet, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	for _, w := range s.wallets {
		if w.PublicKey == publicKey {
			return cloneWallet(w), nil
		}
	}

	return nil, sql.ErrNoRows
}

func (s *fakeWalletStore) Update(ctx context.Context, wallet *core.Wallet) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.wallets[wallet.ID]; !ok {
		return sql.ErrNoRows
	}

	s.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (s *fakeWalletStore) UpdateBalance(ctx context.Context, id string, lamports uint64, at time.Time) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.updateBalanceErr != nil {
		return s.updateBalanceErr
	}

	w, ok := s.wallets[id]
	if !ok {
		return sql.ErrNoRows
	}

	w.BalanceLamports = lamports
	w.LastBalanceUpdate = at
	return nil
}

func (s *fakeWalletStore) SetPrimary(ctx context.Context, userID, id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	target, ok := s.wallets[id]
	if !ok || target.UserID != userID || !target.IsActive {
		return sql.ErrNoRows
	}

	for _, w := range s.wallets {
		if w.UserID == userID {
			w.IsPrimary = false
		}
	}

	target.IsPrimary = true
	return nil
}

func (s *fakeWalletStore) Deactivate(ctx context.Context, userID, id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return sql.ErrNoRows
	}

	w.IsActive = false
	w.IsPrimary = false
	return nil
}

func (s *fakeWalletStore) ListActive(ctx context.Context, offset uint64, limit int) ([]*core.Wallet, uint64, error) {
	return nil, 0, nil
}

func cloneWallet(w *core.Wallet) *core.Wallet {
	c := *w
	return &c
}

type fakeActivityStore struct {
	mux        sync.Mutex
	activities []*core.Activity
	createErr  error
}

func (s *fakeActivityStore) Create(ctx context.Context, activity *core.Activity) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.createErr != nil {
		return s.createErr
	}

	s.activities = append(s.activities, activity)
	return nil
}

func (s *fakeActivityStore) ListUser(ctx context.Context, userID string, limit int) ([]*core.Activity, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var out []*core.Activity
	for _, a := range s.activities {
		if a.UserID == userID && len(out) < limit {
			out = append(out, a)
		}
	}

	return out, nil
}

type fakeReconcileStore struct {
	mux  sync.Mutex
	jobs []*core.ReconcileJob
}

func (s *fakeReconcileStore) Create(ctx context.Context, job *core.ReconcileJob) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *fakeReconcileStore) List(ctx context.Context, limit int) ([]*core.ReconcileJob, error) {
	return s.jobs, nil
}

func (s *fakeReconcileStore) Delete(ctx context.Context, id uint64) error { return nil }
func (s *fakeReconcileStore) Bump(ctx context.Context, id uint64) error   { return nil }

type fakeSigner struct {
	mux            sync.Mutex
	provisionCalls int
	signCalls      int
	provisionErr   error
	signErr        error
}

func (s *fakeSigner) Provision(ctx context.Context, userID string) (*core.KeyInfo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.provisionCalls++
	if s.provisionErr != nil {
		return nil, s.provisionErr
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}

	return &core.KeyInfo{
		PublicKey: key.PublicKey().String(),
		KeyRef:    uuid.NewString(),
	}, nil
}

func (s *fakeSigner) Sign(ctx context.Context, tx *solana.Transaction, publicKey, keyRef string) (*solana.Transaction, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.signCalls++
	if s.signErr != nil {
		return nil, s.signErr
	}

	return tx, nil
}

// fakeChain answers balance queries from a fixed table and records what
// the service asked of it.
type fakeChain struct {
	mux            sync.Mutex
	balances       map[string]uint64
	invalidAddrs   map[string]bool
	balanceCalls   int
	buildCalls     int
	broadcastCalls int
	balanceErr     error
	broadcastErr   error
	signature      string
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances:     map[string]uint64{},
		invalidAddrs: map[string]bool{},
		signature:    "5VERYfakeSIGNATURExxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
	}
}

func (c *fakeChain) ValidAddress(address string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.invalidAddrs[address] {
		return false
	}

	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

func (c *fakeChain) ValidSignature(signature string) bool { return signature != "" }

func (c *fakeChain) Balance(ctx context.Context, publicKey string) (*core.Balance, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.balanceCalls++
	if c.balanceErr != nil {
		return nil, c.balanceErr
	}

	lamports := c.balances[publicKey]
	return &core.Balance{Lamports: lamports, SOL: core.LamportsToSOL(lamports)}, nil
}

func (c *fakeChain) BuildTransfer(ctx context.Context, from, to string, lamports uint64) (*solana.Transaction, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.buildCalls++
	return &solana.Transaction{}, nil
}

func (c *fakeChain) BroadcastAndConfirm(ctx context.Context, tx *solana.Transaction) (string, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.broadcastCalls++
	if c.broadcastErr != nil {
		return "", c.broadcastErr
	}

	return c.signature, nil
}

func (c *fakeChain) TransactionStatus(ctx context.Context, signature string) (*core.TxStatus, error) {
	return &core.TxStatus{Signature: signature, State: core.TxStateConfirmed}, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal %q: %v", s, err))
	}

	return d
}
