package usecase

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

// Staking tracks staked balances, time-weighted reward accrual, and the
// consecutive-week bonus streak. Claiming rewards is the only operation
// that increases total supply.
type Staking struct {
	lock     *StateLock
	balances BalanceRepository
	queue    QueueRepository
	params   ParamsRepository
	signal   Publisher
	logger   *zap.Logger
	clock    Clock
	queueCap int
}

func NewStaking(
	lock *StateLock,
	balances BalanceRepository,
	queue QueueRepository,
	params ParamsRepository,
	signal Publisher,
	logger *zap.Logger,
	clock Clock,
	queueCap int,
) *Staking {
	if lock == nil {
		lock = &StateLock{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Staking{
		lock:     lock,
		balances: balances,
		queue:    queue,
		params:   params,
		signal:   signal,
		logger:   logger,
		clock:    clock,
		queueCap: queueCap,
	}
}

// Stake moves amount from the liquid to the staked balance and enqueues the
// account for the current matching period. A residual staked balance from a
// previous period is settled first so accrual never double-counts across
// top-ups.
func (s *Staking) Stake(ctx context.Context, account common.Address, amount sdkmath.Int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if amount.IsNil() || !amount.IsPositive() {
		return domain.ErrZeroAmount
	}

	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return err
	}
	if b.IsStaked {
		return domain.ErrAlreadyStaked
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return err
	}
	if amount.LT(params.WeeklyStakeAmount) {
		return domain.ErrBelowMinimumStake
	}
	if b.Liquid.LT(amount) {
		return domain.ErrInsufficientBalance
	}

	length, err := s.queue.Length(ctx)
	if err != nil {
		return err
	}
	if s.queueCap > 0 && length >= s.queueCap {
		return domain.ErrQueueFull
	}

	now := s.clock()

	settled := sdkmath.ZeroInt()
	if b.Staked.IsPositive() {
		settled, err = s.settle(ctx, &b, params.StakingBonusRate, now)
		if err != nil {
			return err
		}
	}

	b.Liquid = b.Liquid.Sub(amount)
	b.Staked = b.Staked.Add(amount)
	b.IsStaked = true
	b.StakedAt = now
	b.StakeExpiry = now.Add(params.MatchingInterval)
	if b.LastClaimAt.IsZero() {
		b.LastClaimAt = now
	}

	if err := s.queue.AppendStaked(ctx, b); err != nil {
		return err
	}

	if settled.IsPositive() {
		s.emit(ctx, kindred.NewEvent(kindred.EventRewardsClaimed, kindred.RewardPayload{
			Account: account,
			Amount:  settled.String(),
		}))
	}
	s.emit(ctx, kindred.NewEvent(kindred.EventStaked, kindred.StakePayload{
		Account: account,
		Amount:  amount.String(),
	}))
	return nil
}

// Unstake settles pending rewards, then returns amount to the liquid
// balance. The staked flag clears once nothing remains staked.
func (s *Staking) Unstake(ctx context.Context, account common.Address, amount sdkmath.Int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if amount.IsNil() || !amount.IsPositive() {
		return domain.ErrZeroAmount
	}

	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return err
	}
	if b.Staked.LT(amount) {
		return domain.ErrInsufficientStaked
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return err
	}

	now := s.clock()
	settled, err := s.settle(ctx, &b, params.StakingBonusRate, now)
	if err != nil {
		return err
	}

	b.Staked = b.Staked.Sub(amount)
	b.Liquid = b.Liquid.Add(amount)
	if b.Staked.IsZero() {
		b.IsStaked = false
	}

	if err := s.balances.Save(ctx, b); err != nil {
		return err
	}

	if settled.IsPositive() {
		s.emit(ctx, kindred.NewEvent(kindred.EventRewardsClaimed, kindred.RewardPayload{
			Account: account,
			Amount:  settled.String(),
		}))
	}
	s.emit(ctx, kindred.NewEvent(kindred.EventUnstaked, kindred.StakePayload{
		Account: account,
		Amount:  amount.String(),
	}))
	return nil
}

// CalculateRewards returns the base reward accrued by account at now,
// without mutating anything.
func (s *Staking) CalculateRewards(ctx context.Context, account common.Address, now time.Time) (sdkmath.Int, error) {
	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return baseReward(b, now), nil
}

// ClaimRewards mints the accrued base reward plus the consecutive-week
// bonus to the account's liquid balance and resets the accrual clock. Fails
// without mutation when minting would cross the supply cap.
func (s *Staking) ClaimRewards(ctx context.Context, account common.Address) (sdkmath.Int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}

	params, err := s.params.Get(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}

	now := s.clock()
	minted, err := s.settle(ctx, &b, params.StakingBonusRate, now)
	if err != nil {
		return sdkmath.Int{}, err
	}

	if err := s.balances.Save(ctx, b); err != nil {
		return sdkmath.Int{}, err
	}

	if minted.IsPositive() {
		s.emit(ctx, kindred.NewEvent(kindred.EventRewardsClaimed, kindred.RewardPayload{
			Account: account,
			Amount:  minted.String(),
		}))
	}
	return minted, nil
}

// MarkMatched bumps the consecutive-stake streak. Protocol-only: the
// matching engine applies this in-round through RoundResult; the standalone
// mutator covers out-of-band corrections by the operator.
func (s *Staking) MarkMatched(ctx context.Context, account common.Address) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return err
	}
	b.AdvanceStreak()
	return s.balances.Save(ctx, b)
}

// ResetStreak zeroes the consecutive-stake streak. Protocol-only, see
// MarkMatched.
func (s *Staking) ResetStreak(ctx context.Context, account common.Address) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	b, err := s.balances.Get(ctx, account)
	if err != nil {
		return err
	}
	b.ResetStreak()
	return s.balances.Save(ctx, b)
}

// settle computes base + bonus rewards for b at now, verifies the supply
// cap, credits the liquid balance, and resets the accrual clock. The caller
// persists b; nothing is written here.
func (s *Staking) settle(ctx context.Context, b *domain.Balance, bonusRate int, now time.Time) (sdkmath.Int, error) {
	reward := baseReward(*b, now).Add(weeklyBonus(*b, bonusRate))
	if reward.IsPositive() {
		supply, err := s.balances.TotalSupply(ctx)
		if err != nil {
			return sdkmath.Int{}, err
		}
		if supply.Add(reward).GT(domain.MaxSupply) {
			return sdkmath.Int{}, domain.ErrMaxSupplyExceeded
		}
		b.Liquid = b.Liquid.Add(reward)
	}
	b.LastClaimAt = now
	return reward, nil
}

// baseReward is staked × annualRate × elapsed / secondsPerYear in 10^18
// fixed point. All multiplications happen before any division; sdkmath.Int
// keeps the intermediates wide and the final quotient truncates toward zero.
func baseReward(b domain.Balance, now time.Time) sdkmath.Int {
	if !b.Staked.IsPositive() {
		return sdkmath.ZeroInt()
	}

	start := b.LastClaimAt
	if start.IsZero() {
		start = b.StakedAt
	}
	elapsed := int64(now.Sub(start) / time.Second)
	if elapsed <= 0 {
		return sdkmath.ZeroInt()
	}

	return b.Staked.
		Mul(domain.AnnualRewardRate).
		MulRaw(elapsed).
		QuoRaw(domain.SecondsPerYear).
		Quo(domain.Scale)
}

// weeklyBonus is staked × bonusRate/100 × min(weeks,52)/52, truncated once
// after both multiplications.
func weeklyBonus(b domain.Balance, bonusRate int) sdkmath.Int {
	if !b.Staked.IsPositive() || bonusRate <= 0 || b.ConsecutiveWeeks == 0 {
		return sdkmath.ZeroInt()
	}

	weeks := int64(b.ConsecutiveWeeks)
	if weeks > domain.MaxConsecutiveWeeks {
		weeks = domain.MaxConsecutiveWeeks
	}

	return b.Staked.
		MulRaw(int64(bonusRate)).
		MulRaw(weeks).
		QuoRaw(100 * domain.MaxConsecutiveWeeks)
}

func (s *Staking) emit(ctx context.Context, event kindred.Event) {
	if s.signal == nil {
		return
	}
	if err := s.signal.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
