package signer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/helionpay/custody-wallet/core"
	"github.com/helionpay/custody-wallet/store"
)

// Vault is the signer's private key storage. Decrypted key material stays
// inside this package; nothing here is reachable from the orchestrator.
type Vault interface {
	Save(ctx context.Context, keyRef, userID string, key solana.PrivateKey) error
	Find(ctx context.Context, keyRef string) (solana.PrivateKey, error)
}

func New(vault Vault) core.SignerService {
	return &service{vault: vault}
}

type service struct {
	vault Vault
}

func (s *service) Provision(ctx context.Context, userID string) (*core.KeyInfo, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, core.WrapError(core.CodeSigningUnavailable, "generate keypair", err)
	}

	keyRef := uuid.NewString()
	if err := s.vault.Save(ctx, keyRef, userID, key); err != nil {
		return nil, core.WrapError(core.CodeSigningUnavailable, "store key", err)
	}

	return &core.KeyInfo{
		PublicKey: key.PublicKey().String(),
		KeyRef:    keyRef,
	}, nil
}

func (s *service) Sign(ctx context.Context, tx *solana.Transaction, publicKey, keyRef string) (*solana.Transaction, error) {
	key, err := s.vault.Find(ctx, keyRef)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.WrapError(core.CodeSigningFailed, "unknown key reference", err)
		}

		return nil, core.WrapError(core.CodeSigningUnavailable, "load key", err)
	}

	if key.PublicKey().String() != publicKey {
		return nil, core.NewError(core.CodeSigningFailed, "key reference does not match wallet")
	}

	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(key.PublicKey()) {
			return &key
		}

		return nil
	}); err != nil {
		return nil, core.WrapError(core.CodeSigningFailed, fmt.Sprintf("sign transaction for %s", publicKey), err)
	}

	return tx, nil
}
