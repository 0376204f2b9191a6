package reconciler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/helionpay/custody-wallet/core"
)

type fakeJobs struct {
	jobs    []*core.ReconcileJob
	deleted []uint64
	bumped  []uint64
}

func (s *fakeJobs) Create(ctx context.Context, job *core.ReconcileJob) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *fakeJobs) List(ctx context.Context, limit int) ([]*core.ReconcileJob, error) {
	return s.jobs, nil
}

func (s *fakeJobs) Delete(ctx context.Context, id uint64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeJobs) Bump(ctx context.Context, id uint64) error {
	s.bumped = append(s.bumped, id)
	return nil
}

type fakeWallets struct {
	core.WalletStore

	wallet  *core.Wallet
	findErr error
	updated map[string]uint64
}

func (s *fakeWallets) FindID(ctx context.Context, id string) (*core.Wallet, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}

	return s.wallet, nil
}

func (s *fakeWallets) UpdateBalance(ctx context.Context, id string, lamports uint64, at time.Time) error {
	s.updated[id] = lamports
	return nil
}

type fakeActivities struct {
	core.ActivityStore

	created []*core.Activity
}

func (s *fakeActivities) Create(ctx context.Context, activity *core.Activity) error {
	s.created = append(s.created, activity)
	return nil
}

type fakeChain struct {
	core.ChainService

	lamports uint64
	err      error
}

func (c *fakeChain) Balance(ctx context.Context, publicKey string) (*core.Balance, error) {
	if c.err != nil {
		return nil, c.err
	}

	return &core.Balance{Lamports: c.lamports, SOL: core.LamportsToSOL(c.lamports)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleJobReconcilesAndDeletes(t *testing.T) {
	wallet := &core.Wallet{ID: "w-1", UserID: "user-1", PublicKey: "pk"}
	jobs := &fakeJobs{}
	wallets := &fakeWallets{wallet: wallet, updated: map[string]uint64{}}
	activities := &fakeActivities{}
	chainz := &fakeChain{lamports: 99}

	w := New(jobs, wallets, activities, chainz, discardLogger())

	job := &core.ReconcileJob{
		ID:             1,
		UserID:         "user-1",
		WalletID:       "w-1",
		TxSignature:    "sig-1",
		AmountLamports: 500,
	}

	if err := w.handleJob(context.Background(), job); err != nil {
		t.Fatalf("handleJob: %v", err)
	}

	if wallets.updated["w-1"] != 99 {
		t.Errorf("balance not reconciled: %v", wallets.updated)
	}

	if len(activities.created) != 1 {
		t.Fatalf("got %d activities, want 1", len(activities.created))
	}

	activity := activities.created[0]
	if activity.Type != core.ActivityTransferOut || activity.TxSignature != "sig-1" {
		t.Errorf("unexpected activity: %+v", activity)
	}

	if len(jobs.deleted) != 1 || jobs.deleted[0] != 1 {
		t.Errorf("job not deleted: %v", jobs.deleted)
	}

	if len(jobs.bumped) != 0 {
		t.Errorf("job bumped on success: %v", jobs.bumped)
	}
}

func TestHandleJobBumpsOnFailure(t *testing.T) {
	jobs := &fakeJobs{}
	wallets := &fakeWallets{updated: map[string]uint64{}, findErr: errors.New("replica down")}

	w := New(jobs, wallets, &fakeActivities{}, &fakeChain{}, discardLogger())

	job := &core.ReconcileJob{ID: 7, WalletID: "w-1"}
	if err := w.handleJob(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}

	if len(jobs.bumped) != 1 || jobs.bumped[0] != 7 {
		t.Errorf("failed job not bumped: %v", jobs.bumped)
	}

	if len(jobs.deleted) != 0 {
		t.Errorf("failed job deleted: %v", jobs.deleted)
	}
}

func TestRunDryQueue(t *testing.T) {
	w := New(&fakeJobs{}, &fakeWallets{updated: map[string]uint64{}}, &fakeActivities{}, &fakeChain{}, discardLogger())

	if err := w.run(context.Background()); err == nil {
		t.Error("expected the dry signal on an empty queue")
	}
}
