package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// Matching runs the periodic round over the staked queue: it partitions
// participants by stake validity, scores every valid pair, selects a
// pairing set, and commits the whole outcome atomically.
//
// Pairing policy: greedy global-max. The highest-scoring unmatched pair is
// committed repeatedly until fewer than two participants remain; ties break
// by the earliest queue insertion of the first participant, then the
// second. Pairs below the governed minimum score are never committed.
//
// There is no carry-over: the queue is cleared entirely, and anyone left
// unpaired must stake again next period.
type Matching struct {
	lock     *StateLock
	balances BalanceRepository
	profiles ProfileRepository
	queue    QueueRepository
	matches  MatchRepository
	rounds   RoundRepository
	params   ParamsRepository
	signal   Publisher
	logger   *zap.Logger
}

func NewMatching(
	lock *StateLock,
	balances BalanceRepository,
	profiles ProfileRepository,
	queue QueueRepository,
	matches MatchRepository,
	rounds RoundRepository,
	params ParamsRepository,
	signal Publisher,
	logger *zap.Logger,
) *Matching {
	if lock == nil {
		lock = &StateLock{}
	}
	return &Matching{
		lock:     lock,
		balances: balances,
		profiles: profiles,
		queue:    queue,
		matches:  matches,
		rounds:   rounds,
		params:   params,
		signal:   signal,
		logger:   logger,
	}
}

type candidate struct {
	position int // queue insertion order
	balance  domain.Balance
	profile  domain.Profile
}

type scoredPair struct {
	first  int // candidate index, first by queue order
	second int
	score  int
}

// ExecuteRound runs one matching round at now. The complete outcome is
// computed in memory first and committed in a single storage transaction;
// any failure leaves the queue and all balances exactly as before.
func (m *Matching) ExecuteRound(ctx context.Context, now time.Time) ([]domain.Match, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	params, err := m.params.Get(ctx)
	if err != nil {
		return nil, err
	}

	last, err := m.rounds.LastExecutedAt(ctx)
	if err != nil {
		return nil, err
	}
	if !last.IsZero() && now.Before(last.Add(params.MatchingInterval)) {
		return nil, domain.ErrTooEarly
	}

	accounts, err := m.queue.List(ctx)
	if err != nil {
		return nil, err
	}

	mutated := make(map[common.Address]domain.Balance)
	var pool []candidate
	for pos, account := range accounts {
		b, err := m.balances.Get(ctx, account)
		if err != nil {
			return nil, err
		}

		if b.IsStaked && now.After(b.StakeExpiry) {
			// lapsed stake: out of the round, streak broken
			b.IsStaked = false
			b.ResetStreak()
			mutated[account] = b
			continue
		}
		if !b.StakeValidAt(now) {
			// unstaked after queueing; nothing to mutate
			continue
		}

		profile, err := m.profiles.Get(ctx, account)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		if !profile.Active {
			continue
		}

		pool = append(pool, candidate{position: pos, balance: b, profile: profile})
	}

	pairings := selectPairings(pool, params.MinCompatibilityScore, params.MaxMatchesPerWeek)

	matches := make([]domain.Match, 0, len(pairings))
	for _, pair := range pairings {
		a := pool[pair.first]
		b := pool[pair.second]

		match := domain.Match{
			ID:        domain.NewMatchID(a.balance.Account, b.balance.Account, now),
			AccountA:  a.balance.Account,
			AccountB:  b.balance.Account,
			Score:     pair.score,
			Active:    true,
			CreatedAt: now,
		}
		matches = append(matches, match)

		for _, c := range []candidate{a, b} {
			bal := c.balance
			bal.IsStaked = false
			bal.AdvanceStreak()
			mutated[bal.Account] = bal
		}
	}

	result := domain.RoundResult{
		ExecutedAt: now,
		Matches:    matches,
	}
	for _, b := range mutated {
		result.Balances = append(result.Balances, b)
	}
	sort.Slice(result.Balances, func(i, j int) bool {
		return result.Balances[i].Account.Hex() < result.Balances[j].Account.Hex()
	})

	if err := m.rounds.Commit(ctx, result); err != nil {
		return nil, err
	}

	for _, match := range matches {
		m.emit(ctx, kindred.NewEvent(kindred.EventMatchCreated, kindred.MatchPayload{
			MatchID:  match.ID,
			AccountA: match.AccountA,
			AccountB: match.AccountB,
			Score:    match.Score,
		}))
	}
	m.emit(ctx, kindred.NewEvent(kindred.EventMatchingCompleted, kindred.RoundPayload{
		MatchCount: len(matches),
		ExecutedAt: now,
	}))

	return matches, nil
}

// selectPairings applies the greedy global-max policy over the candidate
// pool. Pool is in queue insertion order; the returned pairings reference
// pool indexes.
func selectPairings(pool []candidate, minScore, maxMatches int) []scoredPair {
	var pairs []scoredPair
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			score := domain.CompatibilityScore(pool[i].profile, pool[j].profile)
			if score < minScore {
				continue
			}
			pairs = append(pairs, scoredPair{first: i, second: j, score: score})
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].score != pairs[b].score {
			return pairs[a].score > pairs[b].score
		}
		if pairs[a].first != pairs[b].first {
			return pairs[a].first < pairs[b].first
		}
		return pairs[a].second < pairs[b].second
	})

	taken := make(map[int]bool, len(pool))
	var selected []scoredPair
	for _, p := range pairs {
		if maxMatches > 0 && len(selected) >= maxMatches {
			break
		}
		if taken[p.first] || taken[p.second] {
			continue
		}
		taken[p.first] = true
		taken[p.second] = true
		selected = append(selected, p)
	}
	return selected
}

// QueueLength returns the current queue size without blocking.
func (m *Matching) QueueLength(ctx context.Context) (int, error) {
	return m.queue.Length(ctx)
}

// MatchesOf returns the match history of an account.
func (m *Matching) MatchesOf(ctx context.Context, account common.Address) ([]domain.Match, error) {
	return m.matches.ListByAccount(ctx, account)
}

// Match returns a single match record by ID.
func (m *Matching) Match(ctx context.Context, id string) (domain.Match, error) {
	return m.matches.Get(ctx, id)
}

func (m *Matching) emit(ctx context.Context, event kindred.Event) {
	if m.signal == nil {
		return
	}
	if err := m.signal.Publish(ctx, event); err != nil && m.logger != nil {
		m.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
