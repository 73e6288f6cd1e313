package usecase

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// BalanceRepository defines ledger/staking state storage. Get returns a
// zero-value Balance for unknown accounts; SaveAll commits every given
// balance in one transaction or none of them.
type BalanceRepository interface {
	Get(ctx context.Context, account common.Address) (domain.Balance, error)
	Save(ctx context.Context, balance domain.Balance) error
	SaveAll(ctx context.Context, balances ...domain.Balance) error
	TotalSupply(ctx context.Context) (sdkmath.Int, error)
	TotalStaked(ctx context.Context) (sdkmath.Int, error)
}

// ProfileRepository defines profile storage.
type ProfileRepository interface {
	Get(ctx context.Context, account common.Address) (domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
}

// QueueRepository is the ordered staking queue. AppendStaked persists the
// staked balance and the queue entry in one transaction, preserving
// insertion order; List returns accounts in that order. The queue is
// cleared only by a committed round.
type QueueRepository interface {
	AppendStaked(ctx context.Context, balance domain.Balance) error
	List(ctx context.Context) ([]common.Address, error)
	Length(ctx context.Context) (int, error)
}

// MatchRepository reads committed match records.
type MatchRepository interface {
	Get(ctx context.Context, id string) (domain.Match, error)
	ListByAccount(ctx context.Context, account common.Address) ([]domain.Match, error)
}

// RoundRepository owns the round lifecycle. Commit applies a complete
// RoundResult (match records, balance rewrites, queue clear, last-round
// bump) in a single transaction.
type RoundRepository interface {
	LastExecutedAt(ctx context.Context) (time.Time, error)
	Commit(ctx context.Context, result domain.RoundResult) error
}

// ParamsRepository stores the single governed Params record.
type ParamsRepository interface {
	Get(ctx context.Context) (domain.Params, error)
	Replace(ctx context.Context, params domain.Params) error
}

// ProposalRepository stores governance proposals and votes.
type ProposalRepository interface {
	Get(ctx context.Context, id string) (domain.Proposal, error)
	Save(ctx context.Context, proposal domain.Proposal) error
	SaveVote(ctx context.Context, proposal domain.Proposal, vote domain.Vote) error
	HasVoted(ctx context.Context, proposalID string, voter common.Address) (bool, error)
}

// Publisher emits protocol events for external indexers.
type Publisher interface {
	Publish(ctx context.Context, event kindred.Event) error
}

// ContentGateway fetches encrypted profile blobs from the external
// content-addressed store. Read-only; the node never writes profile bodies.
type ContentGateway interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
