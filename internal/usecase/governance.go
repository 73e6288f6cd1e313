package usecase

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// Governance runs weighted parameter voting over the matching engine's
// configuration. Voting power is a pure function of staked balance; a
// passed proposal replaces the Params record wholesale.
type Governance struct {
	lock         *StateLock
	params       ParamsRepository
	proposals    ProposalRepository
	balances     BalanceRepository
	signal       Publisher
	logger       *zap.Logger
	clock        Clock
	executor     common.Address
	votingPeriod time.Duration
	quorumBps    int
}

func NewGovernance(
	lock *StateLock,
	params ParamsRepository,
	proposals ProposalRepository,
	balances BalanceRepository,
	signal Publisher,
	logger *zap.Logger,
	clock Clock,
	executor common.Address,
	votingPeriod time.Duration,
	quorumBps int,
) *Governance {
	if lock == nil {
		lock = &StateLock{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Governance{
		lock:         lock,
		params:       params,
		proposals:    proposals,
		balances:     balances,
		signal:       signal,
		logger:       logger,
		clock:        clock,
		executor:     executor,
		votingPeriod: votingPeriod,
		quorumBps:    quorumBps,
	}
}

// VotingPowerOf returns the staked balance of an account; there is no
// checkpoint machinery.
func (g *Governance) VotingPowerOf(ctx context.Context, account common.Address) (sdkmath.Int, error) {
	b, err := g.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return b.Staked, nil
}

// UpdateParams validates and applies a new Params record wholesale. Only
// the governance executor may call it directly; proposals reach it through
// Execute.
func (g *Governance) UpdateParams(ctx context.Context, caller common.Address, candidate domain.Params) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if caller != g.executor {
		return domain.AuthorizationError{Reason: "caller is not the governance executor"}
	}
	return g.apply(ctx, candidate)
}

// Propose opens a proposal carrying a candidate Params record. Only
// accounts with voting power may propose.
func (g *Governance) Propose(ctx context.Context, proposer common.Address, candidate domain.Params) (domain.Proposal, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if err := candidate.Validate(); err != nil {
		return domain.Proposal{}, err
	}

	power, err := g.stakedOf(ctx, proposer)
	if err != nil {
		return domain.Proposal{}, err
	}
	if !power.IsPositive() {
		return domain.Proposal{}, domain.AuthorizationError{Reason: "proposer has no voting power"}
	}

	now := g.clock()
	proposal := domain.Proposal{
		ID:           uuid.New().String(),
		Proposer:     proposer,
		Candidate:    candidate,
		VotesFor:     sdkmath.ZeroInt(),
		VotesAgainst: sdkmath.ZeroInt(),
		Status:       domain.ProposalOpen,
		CreatedAt:    now,
		VotingEnds:   now.Add(g.votingPeriod),
	}
	if err := g.proposals.Save(ctx, proposal); err != nil {
		return domain.Proposal{}, err
	}
	return proposal, nil
}

// CastVote records a ballot weighted by the voter's staked balance at cast
// time.
func (g *Governance) CastVote(ctx context.Context, voter common.Address, proposalID string, support bool) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	proposal, err := g.proposals.Get(ctx, proposalID)
	if err != nil {
		return err
	}

	now := g.clock()
	if proposal.Status != domain.ProposalOpen || now.After(proposal.VotingEnds) {
		return domain.ErrProposalClosed
	}

	voted, err := g.proposals.HasVoted(ctx, proposalID, voter)
	if err != nil {
		return err
	}
	if voted {
		return domain.ErrAlreadyVoted
	}

	weight, err := g.stakedOf(ctx, voter)
	if err != nil {
		return err
	}
	if !weight.IsPositive() {
		return domain.AuthorizationError{Reason: "voter has no voting power"}
	}

	if support {
		proposal.VotesFor = proposal.VotesFor.Add(weight)
	} else {
		proposal.VotesAgainst = proposal.VotesAgainst.Add(weight)
	}

	return g.proposals.SaveVote(ctx, proposal, domain.Vote{
		ProposalID: proposalID,
		Voter:      voter,
		Support:    support,
		Weight:     weight,
		CastAt:     now,
	})
}

// Execute tallies a proposal once voting has ended. Quorum is a fraction of
// total staked supply; a passed proposal's candidate replaces the current
// Params record.
func (g *Governance) Execute(ctx context.Context, proposalID string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	proposal, err := g.proposals.Get(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != domain.ProposalOpen {
		return domain.ErrProposalClosed
	}

	now := g.clock()
	if now.Before(proposal.VotingEnds) {
		return domain.StateError{Reason: "voting period has not ended"}
	}

	totalStaked, err := g.balances.TotalStaked(ctx)
	if err != nil {
		return err
	}
	quorum := totalStaked.MulRaw(int64(g.quorumBps)).QuoRaw(10000)
	turnout := proposal.VotesFor.Add(proposal.VotesAgainst)

	if turnout.GTE(quorum) && proposal.VotesFor.GT(proposal.VotesAgainst) {
		proposal.Status = domain.ProposalPassed
		if err := g.apply(ctx, proposal.Candidate); err != nil {
			return err
		}
	} else {
		proposal.Status = domain.ProposalRejected
	}

	return g.proposals.Save(ctx, proposal)
}

func (g *Governance) apply(ctx context.Context, candidate domain.Params) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	current, err := g.params.Get(ctx)
	if err != nil {
		return err
	}
	candidate.Version = current.Version + 1

	if err := g.params.Replace(ctx, candidate); err != nil {
		return err
	}

	g.emit(ctx, kindred.NewEvent(kindred.EventParametersUpdated, kindred.ParamsPayload{
		Version: candidate.Version,
	}))
	return nil
}

func (g *Governance) stakedOf(ctx context.Context, account common.Address) (sdkmath.Int, error) {
	b, err := g.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return b.Staked, nil
}

func (g *Governance) emit(ctx context.Context, event kindred.Event) {
	if g.signal == nil {
		return
	}
	if err := g.signal.Publish(ctx, event); err != nil && g.logger != nil {
		g.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
