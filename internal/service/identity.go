package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/client"
	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

var tracer = otel.Tracer("identity")

// IdentityService gates protocol participation on external identity
// verification. Group-membership proofs are checked by the external
// verifier; the secondary attestation path checks a trusted authority's
// signature locally. Verification outcomes are consumed, never produced,
// so the result is held in an expiring cache rather than the ledger.
type IdentityService struct {
	client    *client.Client
	cache     *cache.Cache
	authority common.Address
	signal    usecase.Publisher
}

func NewIdentityService(
	cl *client.Client,
	authority common.Address,
	signal usecase.Publisher,
) *IdentityService {
	return &IdentityService{
		client:    cl,
		cache:     cache.New(24*time.Hour, 1*time.Hour),
		authority: authority,
		signal:    signal,
	}
}

// VerifyProof submits a group-membership proof for account. A nullifier
// hash is accepted once; replays are rejected without consulting the
// verifier again.
func (s *IdentityService) VerifyProof(ctx context.Context, account common.Address, submission client.ProofSubmission) error {
	ctx, span := tracer.Start(ctx, "Identity.Service.VerifyProof")
	defer span.End()

	nullifierKey := "nullifier:" + submission.NullifierHash
	if _, seen := s.cache.Get(nullifierKey); seen {
		err := domain.ExternalVerificationError{Reason: "nullifier hash already consumed"}
		span.RecordError(err)
		return err
	}

	valid, detail, err := s.client.VerifyProof(ctx, submission)
	if err != nil {
		span.RecordError(errors.Wrap(err, "verifier unreachable"))
		return err
	}
	if !valid {
		err := domain.ErrProofRejected
		if detail != "" {
			err = domain.ExternalVerificationError{Reason: detail}
		}
		span.RecordError(err)
		return err
	}

	s.cache.Set(nullifierKey, account, cache.DefaultExpiration)
	s.cache.Set(verifiedKey(account), true, cache.DefaultExpiration)

	s.emit(ctx, kindred.NewEvent(kindred.EventIdentityVerified, kindred.IdentityPayload{
		Account:       account,
		NullifierHash: submission.NullifierHash,
	}))
	return nil
}

// VerifyAttestation checks the secondary off-node attestation: a signature
// by the configured trusted authority over the account's attestation
// message.
func (s *IdentityService) VerifyAttestation(ctx context.Context, account common.Address, signature []byte) error {
	ctx, span := tracer.Start(ctx, "Identity.Service.VerifyAttestation")
	defer span.End()

	signer, err := kindred.RecoverAttestor(account, signature)
	if err != nil {
		span.RecordError(errors.Wrap(err, "signature recovery failed"))
		return domain.ExternalVerificationError{Reason: "malformed attestation signature"}
	}

	if signer != s.authority {
		err := domain.ErrInvalidSignature
		span.RecordError(err)
		return err
	}

	s.cache.Set(verifiedKey(account), true, cache.DefaultExpiration)

	s.emit(ctx, kindred.NewEvent(kindred.EventIdentityVerified, kindred.IdentityPayload{
		Account: account,
	}))
	return nil
}

// IsVerified reports whether account holds an unexpired verification.
func (s *IdentityService) IsVerified(account common.Address) bool {
	_, found := s.cache.Get(verifiedKey(account))
	return found
}

func verifiedKey(account common.Address) string {
	return "verified:" + account.Hex()
}

func (s *IdentityService) emit(ctx context.Context, event kindred.Event) {
	if s.signal == nil {
		return
	}
	// best effort; verification outcome is already cached
	_ = s.signal.Publish(ctx, event)
}
