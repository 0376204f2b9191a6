package chain

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/helionpay/custody-wallet/core"
	"github.com/zyedidia/generic/cache"
)

type Config struct {
	Endpoint       string `valid:"required"`
	Commitment     rpc.CommitmentType
	ConfirmTimeout time.Duration
}

func New(cfg Config) core.ChainService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}

	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}

	return &service{
		client: rpc.New(cfg.Endpoint),
		cfg:    cfg,
		keys:   cache.New[string, solana.PublicKey](1024),
	}
}

type service struct {
	client *rpc.Client
	cfg    Config

	keys *cache.Cache[string, solana.PublicKey]
	mux  sync.Mutex
}

// signatures are 64 bytes, between 87 and 88 base58 characters
var signaturePattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{87,88}$`)

func (s *service) parseKey(address string) (solana.PublicKey, error) {
	s.mux.Lock()
	v, ok := s.keys.Get(address)
	s.mux.Unlock()

	if ok {
		return v, nil
	}

	v, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return v, err
	}

	s.mux.Lock()
	s.keys.Put(address, v)
	s.mux.Unlock()

	return v, nil
}

func (s *service) ValidAddress(address string) bool {
	_, err := s.parseKey(address)
	return err == nil
}

func (s *service) ValidSignature(signature string) bool {
	return signaturePattern.MatchString(signature)
}

func (s *service) Balance(ctx context.Context, publicKey string) (*core.Balance, error) {
	key, err := s.parseKey(publicKey)
	if err != nil {
		return nil, core.WrapError(core.CodeInvalidDestination, "invalid public key", err)
	}

	out, err := s.client.GetBalance(ctx, key, s.cfg.Commitment)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	return &core.Balance{
		Lamports: out.Value,
		SOL:      core.LamportsToSOL(out.Value),
	}, nil
}

func (s *service) BuildTransfer(ctx context.Context, from, to string, lamports uint64) (*solana.Transaction, error) {
	fromKey, err := s.parseKey(from)
	if err != nil {
		return nil, fmt.Errorf("invalid source key: %w", err)
	}

	toKey, err := s.parseKey(to)
	if err != nil {
		return nil, core.WrapError(core.CodeInvalidDestination, "invalid destination address", err)
	}

	if lamports == 0 {
		return nil, core.NewError(core.CodeInvalidRequest, "transfer amount must be positive")
	}

	recent, err := s.client.GetLatestBlockhash(ctx, s.cfg.Commitment)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	return solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, fromKey, toKey).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(fromKey),
	)
}

func (s *service) BroadcastAndConfirm(ctx context.Context, tx *solana.Transaction) (string, error) {
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: s.cfg.Commitment,
	})
	if err != nil {
		return "", core.WrapError(core.CodeBroadcastFailed, "send transaction", err)
	}

	if err := s.awaitConfirmation(ctx, sig); err != nil {
		// the transaction may still land; the signature lets the caller
		// probe TransactionStatus before resubmitting
		return sig.String(), core.WrapError(core.CodeBroadcastFailed, "await confirmation", err).
			WithMeta("signature", sig.String())
	}

	return sig.String(), nil
}

func (s *service) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	b := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
		backoff.WithMaxElapsedTime(0),
	), ctx)

	return backoff.Retry(func() error {
		out, err := s.client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return err
		}

		if len(out.Value) == 0 || out.Value[0] == nil {
			return fmt.Errorf("signature %s not yet observed", sig)
		}

		status := out.Value[0]
		if status.Err != nil {
			return backoff.Permanent(fmt.Errorf("transaction failed on chain: %v", status.Err))
		}

		if confirmed(status.ConfirmationStatus, s.cfg.Commitment) {
			return nil
		}

		return fmt.Errorf("signature %s not yet %s", sig, s.cfg.Commitment)
	}, b)
}

func confirmed(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

func (s *service) TransactionStatus(ctx context.Context, signature string) (*core.TxStatus, error) {
	if !s.ValidSignature(signature) {
		return nil, core.NewError(core.CodeInvalidRequest, "invalid transaction signature format")
	}

	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, core.WrapError(core.CodeInvalidRequest, "invalid transaction signature", err)
	}

	out, err := s.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("get signature statuses: %w", err)
	}

	result := &core.TxStatus{Signature: signature, State: core.TxStatePending}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return result, nil
	}

	status := out.Value[0]
	if status.Confirmations != nil {
		result.Confirmations = *status.Confirmations
	}

	switch {
	case status.Err != nil:
		result.State = core.TxStateFailed
		result.Err = fmt.Sprintf("%v", status.Err)
	case confirmed(status.ConfirmationStatus, s.cfg.Commitment):
		result.State = core.TxStateConfirmed
	}

	return result, nil
}
