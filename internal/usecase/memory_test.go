package usecase

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// memState is the shared in-memory backing store for the port mocks used
// across the usecase tests.
type memState struct {
	balances  map[common.Address]domain.Balance
	profiles  map[common.Address]domain.Profile
	queue     []common.Address
	matches   []domain.Match
	lastRound time.Time
	params    domain.Params
	proposals map[string]domain.Proposal
	votes     map[string]map[common.Address]domain.Vote

	commitErr error // injected RoundRepository.Commit failure
}

func newMemState() *memState {
	return &memState{
		balances:  make(map[common.Address]domain.Balance),
		profiles:  make(map[common.Address]domain.Profile),
		params:    domain.DefaultParams(),
		proposals: make(map[string]domain.Proposal),
		votes:     make(map[string]map[common.Address]domain.Vote),
	}
}

func (s *memState) setBalance(account common.Address, liquid sdkmath.Int) {
	b := domain.NewBalance(account)
	b.Liquid = liquid
	s.balances[account] = b
}

type memBalances struct{ s *memState }

func (m *memBalances) Get(ctx context.Context, account common.Address) (domain.Balance, error) {
	if b, ok := m.s.balances[account]; ok {
		return b, nil
	}
	return domain.NewBalance(account), nil
}

func (m *memBalances) Save(ctx context.Context, balance domain.Balance) error {
	m.s.balances[balance.Account] = balance
	return nil
}

func (m *memBalances) SaveAll(ctx context.Context, balances ...domain.Balance) error {
	for _, b := range balances {
		m.s.balances[b.Account] = b
	}
	return nil
}

func (m *memBalances) TotalSupply(ctx context.Context) (sdkmath.Int, error) {
	total := sdkmath.ZeroInt()
	for _, b := range m.s.balances {
		total = total.Add(b.Total())
	}
	return total, nil
}

func (m *memBalances) TotalStaked(ctx context.Context) (sdkmath.Int, error) {
	total := sdkmath.ZeroInt()
	for _, b := range m.s.balances {
		total = total.Add(b.Staked)
	}
	return total, nil
}

type memProfiles struct{ s *memState }

func (m *memProfiles) Get(ctx context.Context, account common.Address) (domain.Profile, error) {
	if p, ok := m.s.profiles[account]; ok {
		return p, nil
	}
	return domain.Profile{}, domain.ErrProfileNotFound
}

func (m *memProfiles) Save(ctx context.Context, profile domain.Profile) error {
	m.s.profiles[profile.Account] = profile
	return nil
}

type memQueue struct{ s *memState }

func (m *memQueue) AppendStaked(ctx context.Context, balance domain.Balance) error {
	m.s.balances[balance.Account] = balance
	m.s.queue = append(m.s.queue, balance.Account)
	return nil
}

func (m *memQueue) List(ctx context.Context) ([]common.Address, error) {
	return append([]common.Address(nil), m.s.queue...), nil
}

func (m *memQueue) Length(ctx context.Context) (int, error) {
	return len(m.s.queue), nil
}

type memMatches struct{ s *memState }

func (m *memMatches) Get(ctx context.Context, id string) (domain.Match, error) {
	for _, match := range m.s.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return domain.Match{}, domain.StateError{Reason: "match not found"}
}

func (m *memMatches) ListByAccount(ctx context.Context, account common.Address) ([]domain.Match, error) {
	var out []domain.Match
	for _, match := range m.s.matches {
		if match.Has(account) {
			out = append(out, match)
		}
	}
	return out, nil
}

type memRounds struct{ s *memState }

func (m *memRounds) LastExecutedAt(ctx context.Context) (time.Time, error) {
	return m.s.lastRound, nil
}

func (m *memRounds) Commit(ctx context.Context, result domain.RoundResult) error {
	if m.s.commitErr != nil {
		return m.s.commitErr
	}
	m.s.matches = append(m.s.matches, result.Matches...)
	for _, b := range result.Balances {
		m.s.balances[b.Account] = b
	}
	m.s.queue = nil
	m.s.lastRound = result.ExecutedAt
	return nil
}

type memParams struct{ s *memState }

func (m *memParams) Get(ctx context.Context) (domain.Params, error) {
	return m.s.params, nil
}

func (m *memParams) Replace(ctx context.Context, params domain.Params) error {
	m.s.params = params
	return nil
}

type memProposals struct{ s *memState }

func (m *memProposals) Get(ctx context.Context, id string) (domain.Proposal, error) {
	if p, ok := m.s.proposals[id]; ok {
		return p, nil
	}
	return domain.Proposal{}, domain.StateError{Reason: "proposal not found"}
}

func (m *memProposals) Save(ctx context.Context, proposal domain.Proposal) error {
	m.s.proposals[proposal.ID] = proposal
	return nil
}

func (m *memProposals) SaveVote(ctx context.Context, proposal domain.Proposal, vote domain.Vote) error {
	m.s.proposals[proposal.ID] = proposal
	if m.s.votes[vote.ProposalID] == nil {
		m.s.votes[vote.ProposalID] = make(map[common.Address]domain.Vote)
	}
	m.s.votes[vote.ProposalID][vote.Voter] = vote
	return nil
}

func (m *memProposals) HasVoted(ctx context.Context, proposalID string, voter common.Address) (bool, error) {
	_, ok := m.s.votes[proposalID][voter]
	return ok, nil
}

// recordingPublisher captures emitted events in order.
type recordingPublisher struct {
	events []kindred.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event kindred.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesSeen() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func addr(last byte) common.Address {
	var a common.Address
	a[19] = last
	return a
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
