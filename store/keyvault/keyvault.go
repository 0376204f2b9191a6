package keyvault

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gagliardetto/solana-go"
	"github.com/helionpay/custody-wallet/store"
	"github.com/tsenart/nap"
)

// Vault stores custodial private keys AES-GCM encrypted under an opaque
// key reference. Only the signer service talks to it; key material never
// leaves the signer's package boundary.
type Vault struct {
	db        *nap.DB
	masterKey []byte
}

func New(db *nap.DB, masterKey []byte) (*Vault, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}

	return &Vault{db: db, masterKey: masterKey}, nil
}

func (v *Vault) Save(ctx context.Context, keyRef, userID string, key solana.PrivateKey) error {
	ciphertext, err := encrypt(v.masterKey, key.String())
	if err != nil {
		return err
	}

	b := store.Builder.Insert("vault_keys").
		Columns("key_ref", "user_id", "public_key", "encrypted_key").
		Values(keyRef, userID, key.PublicKey().String(), ciphertext)

	_, err = b.RunWith(v.db).ExecContext(ctx)
	return err
}

func (v *Vault) Find(ctx context.Context, keyRef string) (solana.PrivateKey, error) {
	b := store.Builder.Select("encrypted_key").
		From("vault_keys").
		Where(sq.Eq{"key_ref": keyRef})

	var ciphertext string
	if err := b.RunWith(v.db).QueryRowContext(ctx).Scan(&ciphertext); err != nil {
		return nil, err
	}

	plaintext, err := decrypt(v.masterKey, ciphertext)
	if err != nil {
		return nil, err
	}

	return solana.PrivateKeyFromBase58(plaintext)
}
