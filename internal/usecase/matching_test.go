package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

func boolVec(pattern string) []bool {
	out := make([]bool, len(pattern))
	for i, c := range pattern {
		out[i] = c == 'T'
	}
	return out
}

// stakeParticipant stakes the account and installs an active profile whose
// answers and preferences both follow pattern.
func stakeParticipant(s *memState, account common.Address, pattern string, now time.Time) {
	b := domain.NewBalance(account)
	b.Staked = domain.Tokens(10)
	b.IsStaked = true
	b.StakedAt = now
	b.StakeExpiry = now.Add(7 * 24 * time.Hour)
	b.LastClaimAt = now
	s.balances[account] = b
	s.queue = append(s.queue, account)

	s.profiles[account] = domain.Profile{
		Account:     account,
		ContentRef:  "ref://" + account.Hex(),
		Active:      true,
		Reputation:  100,
		Answers:     boolVec(pattern),
		Preferences: boolVec(pattern),
		UpdatedAt:   now,
	}
}

func newMatchingFixture(s *memState, signal Publisher) *Matching {
	return NewMatching(
		&StateLock{},
		&memBalances{s: s},
		&memProfiles{s: s},
		&memQueue{s: s},
		&memMatches{s: s},
		&memRounds{s: s},
		&memParams{s: s},
		signal,
		nil,
	)
}

func TestExecuteRoundGreedyPairing(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// pairwise scores: A-B 90, A-C 50, B-C 40
	stakeParticipant(s, addr(1), "TTTTTTTTTT", now)
	stakeParticipant(s, addr(2), "FTTTTTTTTT", now)
	stakeParticipant(s, addr(3), "TTTTTFFFFF", now)

	pub := &recordingPublisher{}
	matching := newMatchingFixture(s, pub)

	matches, err := matching.ExecuteRound(context.Background(), now)
	if err != nil {
		t.Fatalf("round failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}

	match := matches[0]
	if match.AccountA != addr(1) || match.AccountB != addr(2) {
		t.Fatalf("expected A-B pairing, got %s-%s", match.AccountA.Hex(), match.AccountB.Hex())
	}
	if match.Score != 90 {
		t.Fatalf("expected score 90, got %d", match.Score)
	}
	if !match.Active {
		t.Fatalf("expected new match to be active")
	}

	// no carry-over: everyone leaves the queue, matched or not
	if len(s.queue) != 0 {
		t.Fatalf("expected cleared queue, got %d entries", len(s.queue))
	}

	for _, a := range []common.Address{addr(1), addr(2)} {
		b := s.balances[a]
		if b.IsStaked {
			t.Fatalf("matched account %s still flagged staked", a.Hex())
		}
		if b.ConsecutiveWeeks != 1 {
			t.Fatalf("expected streak 1 for %s, got %d", a.Hex(), b.ConsecutiveWeeks)
		}
		if !b.Staked.Equal(domain.Tokens(10)) {
			t.Fatalf("matching must not move the staked balance")
		}
	}

	// the unmatched account keeps its streak and its valid stake
	if got := s.balances[addr(3)].ConsecutiveWeeks; got != 0 {
		t.Fatalf("unmatched account streak changed to %d", got)
	}

	got, err := matching.MatchesOf(context.Background(), addr(1))
	if err != nil || len(got) != 1 {
		t.Fatalf("expected match history of one, got %d (%v)", len(got), err)
	}

	types := pub.typesSeen()
	if len(types) != 2 || types[0] != kindred.EventMatchCreated || types[1] != kindred.EventMatchingCompleted {
		t.Fatalf("unexpected event sequence %v", types)
	}
}

func TestExecuteRoundTooEarly(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	stakeParticipant(s, addr(1), "TTTTTTTTTT", now)
	stakeParticipant(s, addr(2), "TTTTTTTTTT", now)

	matching := newMatchingFixture(s, nil)
	ctx := context.Background()

	if _, err := matching.ExecuteRound(ctx, now); err != nil {
		t.Fatalf("first round failed: %v", err)
	}

	stakeParticipant(s, addr(3), "TTTTTTTTTT", now)
	before := len(s.queue)

	_, err := matching.ExecuteRound(ctx, now.Add(time.Hour))
	if !errors.Is(err, domain.ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}
	if len(s.queue) != before {
		t.Fatalf("early round mutated the queue")
	}

	// a full interval later the round runs again
	if _, err := matching.ExecuteRound(ctx, now.Add(7*24*time.Hour)); err != nil {
		t.Fatalf("round after interval failed: %v", err)
	}
}

func TestExecuteRoundExpiredStakeBreaksStreak(t *testing.T) {
	s := newMemState()
	staked := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	stakeParticipant(s, addr(1), "TTTTTTTTTT", staked)
	stakeParticipant(s, addr(2), "TTTTTTTTTT", staked)

	b := s.balances[addr(1)]
	b.ConsecutiveWeeks = 5
	b.StakeExpiry = staked.Add(time.Hour)
	s.balances[addr(1)] = b

	matching := newMatchingFixture(s, nil)

	now := staked.Add(2 * time.Hour)
	matches, err := matching.ExecuteRound(context.Background(), now)
	if err != nil {
		t.Fatalf("round failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expired participant must not match, got %d matches", len(matches))
	}

	got := s.balances[addr(1)]
	if got.IsStaked {
		t.Fatalf("expected lapsed stake flag cleared")
	}
	if got.ConsecutiveWeeks != 0 {
		t.Fatalf("expected streak reset, got %d", got.ConsecutiveWeeks)
	}
	if !got.Staked.Equal(domain.Tokens(10)) {
		t.Fatalf("lapse must not seize the staked balance")
	}
}

func TestExecuteRoundMinScoreFilter(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// B-C score is 40, below the default minimum of 50
	stakeParticipant(s, addr(2), "FTTTTTTTTT", now)
	stakeParticipant(s, addr(3), "TTTTTFFFFF", now)

	matching := newMatchingFixture(s, nil)

	matches, err := matching.ExecuteRound(context.Background(), now)
	if err != nil {
		t.Fatalf("round failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches below minimum score, got %d", len(matches))
	}
	if len(s.queue) != 0 {
		t.Fatalf("matchless round must still clear the queue")
	}
	if !s.lastRound.Equal(now) {
		t.Fatalf("matchless round must still record execution time")
	}
}

func TestExecuteRoundHonorsMatchCap(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i := byte(1); i <= 4; i++ {
		stakeParticipant(s, addr(i), "TTTTTTTTTT", now)
	}
	s.params.MaxMatchesPerWeek = 1

	matching := newMatchingFixture(s, nil)

	matches, err := matching.ExecuteRound(context.Background(), now)
	if err != nil {
		t.Fatalf("round failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected the cap to hold at 1, got %d matches", len(matches))
	}
}

func TestExecuteRoundSkipsMissingProfile(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	stakeParticipant(s, addr(1), "TTTTTTTTTT", now)
	stakeParticipant(s, addr(2), "TTTTTTTTTT", now)
	delete(s.profiles, addr(2))

	matching := newMatchingFixture(s, nil)

	matches, err := matching.ExecuteRound(context.Background(), now)
	if err != nil {
		t.Fatalf("round failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("profileless participant must not match, got %d", len(matches))
	}

	// still staked and untouched; only the queue entry is consumed
	if !s.balances[addr(2)].IsStaked {
		t.Fatalf("skipped participant lost its staked flag")
	}
}

func TestExecuteRoundCommitFailureLeavesState(t *testing.T) {
	s := newMemState()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	stakeParticipant(s, addr(1), "TTTTTTTTTT", now)
	stakeParticipant(s, addr(2), "TTTTTTTTTT", now)
	s.commitErr = errors.New("storage down")

	matching := newMatchingFixture(s, nil)

	_, err := matching.ExecuteRound(context.Background(), now)
	if err == nil {
		t.Fatalf("expected commit failure to surface")
	}

	if len(s.queue) != 2 {
		t.Fatalf("failed round consumed the queue")
	}
	if len(s.matches) != 0 {
		t.Fatalf("failed round persisted matches")
	}
	for i := byte(1); i <= 2; i++ {
		if got := s.balances[addr(i)]; !got.IsStaked || got.ConsecutiveWeeks != 0 {
			t.Fatalf("failed round mutated balance of %s", addr(i).Hex())
		}
	}
}
