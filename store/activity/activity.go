package activity

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/helionpay/custody-wallet/core"
	"github.com/helionpay/custody-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.ActivityStore {
	return &activityStore{db: db}
}

type activityStore struct {
	db *nap.DB
}

var columns = []string{
	"user_id",
	"wallet_id",
	"activity_type",
	"description",
	"tx_signature",
	"amount_lamports",
	"metadata",
}

func (s *activityStore) Create(ctx context.Context, a *core.Activity) error {
	b := store.Builder.Insert("wallet_activities").
		Columns(columns...).
		Values(a.UserID, a.WalletID, a.Type, a.Description, a.TxSignature, a.AmountLamports, metadata(a.Metadata))

	_, err := b.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *activityStore) ListUser(ctx context.Context, userID string, limit int) ([]*core.Activity, error) {
	b := store.Builder.Select(append([]string{"id", "created_at"}, columns...)...).
		From("wallet_activities").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var activities []*core.Activity
	for rows.Next() {
		var (
			a    core.Activity
			meta metadata
		)

		if err := rows.Scan(
			&a.ID,
			&a.CreatedAt,
			&a.UserID,
			&a.WalletID,
			&a.Type,
			&a.Description,
			&a.TxSignature,
			&a.AmountLamports,
			&meta,
		); err != nil {
			return nil, err
		}

		a.Metadata = meta
		activities = append(activities, &a)
	}

	return activities, rows.Err()
}

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
