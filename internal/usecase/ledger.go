package usecase

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kindred-protocol/kindred/internal/domain"
)

// GenesisAllocation is one initial balance grant.
type GenesisAllocation struct {
	Account common.Address
	Amount  sdkmath.Int
}

// TreasurySplit routes a fixed share of collected fees to a beneficiary.
// Shares are expressed in basis points and must sum to 10000.
type TreasurySplit struct {
	Beneficiary common.Address
	Bps         int
}

// Ledger is the token balance map and transfer primitive. It never creates
// supply; reward claims in the staking engine are the only minting path.
type Ledger struct {
	lock       *StateLock
	balances   BalanceRepository
	feeAccount common.Address
	splits     []TreasurySplit
}

func NewLedger(lock *StateLock, balances BalanceRepository, feeAccount common.Address, splits []TreasurySplit) *Ledger {
	if lock == nil {
		lock = &StateLock{}
	}
	return &Ledger{
		lock:       lock,
		balances:   balances,
		feeAccount: feeAccount,
		splits:     splits,
	}
}

// InitGenesis grants the initial allocations. It refuses to run against a
// ledger that already has supply.
func (l *Ledger) InitGenesis(ctx context.Context, allocations []GenesisAllocation) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	supply, err := l.balances.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if !supply.IsZero() {
		return domain.StateError{Reason: "ledger already initialized"}
	}

	total := sdkmath.ZeroInt()
	grants := make([]domain.Balance, 0, len(allocations))
	for _, alloc := range allocations {
		if alloc.Amount.IsNil() || !alloc.Amount.IsPositive() {
			return domain.ErrZeroAmount
		}
		total = total.Add(alloc.Amount)
		b := domain.NewBalance(alloc.Account)
		b.Liquid = alloc.Amount
		grants = append(grants, b)
	}
	if total.GT(domain.MaxSupply) {
		return domain.ErrMaxSupplyExceeded
	}

	return l.balances.SaveAll(ctx, grants...)
}

// Transfer moves amount between liquid balances, all-or-nothing.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount sdkmath.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if amount.IsNil() || !amount.IsPositive() {
		return domain.ErrZeroAmount
	}
	if from == to {
		return domain.ValidationError{Reason: "cannot transfer to self"}
	}

	sender, err := l.balances.Get(ctx, from)
	if err != nil {
		return err
	}
	if sender.Liquid.LT(amount) {
		return domain.ErrInsufficientBalance
	}
	receiver, err := l.balances.Get(ctx, to)
	if err != nil {
		return err
	}

	sender.Liquid = sender.Liquid.Sub(amount)
	receiver.Liquid = receiver.Liquid.Add(amount)

	return l.balances.SaveAll(ctx, sender, receiver)
}

// BalanceOf returns the liquid balance of an account.
func (l *Ledger) BalanceOf(ctx context.Context, account common.Address) (sdkmath.Int, error) {
	b, err := l.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return b.Liquid, nil
}

// StakedOf returns the staked balance of an account.
func (l *Ledger) StakedOf(ctx context.Context, account common.Address) (sdkmath.Int, error) {
	b, err := l.balances.Get(ctx, account)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return b.Staked, nil
}

// TotalSupply returns the sum of all liquid and staked balances.
func (l *Ledger) TotalSupply(ctx context.Context) (sdkmath.Int, error) {
	return l.balances.TotalSupply(ctx)
}

// WithdrawFees disburses the fee account's liquid balance to the configured
// beneficiaries by their fixed shares. All new balances are computed before
// any write; the disbursement commits atomically. The last beneficiary
// receives the truncation remainder.
func (l *Ledger) WithdrawFees(ctx context.Context) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if len(l.splits) == 0 {
		return domain.StateError{Reason: "no treasury beneficiaries configured"}
	}

	fees, err := l.balances.Get(ctx, l.feeAccount)
	if err != nil {
		return err
	}
	if !fees.Liquid.IsPositive() {
		return nil
	}

	pool := fees.Liquid
	distributed := sdkmath.ZeroInt()
	updated := make([]domain.Balance, 0, len(l.splits)+1)
	for i, split := range l.splits {
		share := pool.MulRaw(int64(split.Bps)).QuoRaw(10000)
		if i == len(l.splits)-1 {
			share = pool.Sub(distributed)
		}
		distributed = distributed.Add(share)

		b, err := l.balances.Get(ctx, split.Beneficiary)
		if err != nil {
			return err
		}
		b.Liquid = b.Liquid.Add(share)
		updated = append(updated, b)
	}

	fees.Liquid = sdkmath.ZeroInt()
	updated = append(updated, fees)

	return l.balances.SaveAll(ctx, updated...)
}
