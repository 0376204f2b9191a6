package core

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// KeyInfo is what the signer hands back after provisioning: the public key
// and an opaque reference into its vault. Private key bytes never cross
// this boundary, there is deliberately no method that could return them.
type KeyInfo struct {
	PublicKey string `json:"public_key"`
	KeyRef    string `json:"key_ref"`
}

type SignerService interface {
	// Provision mints a new keypair scoped to the given owner and returns
	// its public half plus the vault reference.
	Provision(ctx context.Context, userID string) (*KeyInfo, error)
	// Sign adds the wallet's signature to the transaction and returns it.
	Sign(ctx context.Context, tx *solana.Transaction, publicKey, keyRef string) (*solana.Transaction, error)
}
