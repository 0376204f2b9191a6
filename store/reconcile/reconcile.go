package reconcile

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/helionpay/custody-wallet/core"
	"github.com/helionpay/custody-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.ReconcileStore {
	return &reconcileStore{db: db}
}

type reconcileStore struct {
	db *nap.DB
}

func (s *reconcileStore) Create(ctx context.Context, job *core.ReconcileJob) error {
	b := store.Builder.Insert("reconcile_jobs").
		Columns("user_id", "wallet_id", "tx_signature", "amount_lamports", "destination", "memo").
		Values(job.UserID, job.WalletID, job.TxSignature, job.AmountLamports, job.Destination, job.Memo)

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *reconcileStore) List(ctx context.Context, limit int) ([]*core.ReconcileJob, error) {
	b := store.Builder.Select("id", "created_at", "user_id", "wallet_id", "tx_signature", "amount_lamports", "destination", "memo", "attempts").
		From("reconcile_jobs").
		OrderBy("id").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var jobs []*core.ReconcileJob
	for rows.Next() {
		var job core.ReconcileJob
		if err := rows.Scan(
			&job.ID,
			&job.CreatedAt,
			&job.UserID,
			&job.WalletID,
			&job.TxSignature,
			&job.AmountLamports,
			&job.Destination,
			&job.Memo,
			&job.Attempts,
		); err != nil {
			return nil, err
		}

		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

func (s *reconcileStore) Delete(ctx context.Context, id uint64) error {
	b := store.Builder.Delete("reconcile_jobs").Where(sq.Eq{"id": id})
	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *reconcileStore) Bump(ctx context.Context, id uint64) error {
	b := store.Builder.Update("reconcile_jobs").
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"id": id})
	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}
