package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Balance is the ledger and staking state of one account. Liquid and Staked
// together are the tokens the protocol holds on the account's behalf;
// StakeExpiry is meaningful only while IsStaked is set.
type Balance struct {
	Account          common.Address `json:"account"`
	Liquid           sdkmath.Int    `json:"liquid"`
	Staked           sdkmath.Int    `json:"staked"`
	IsStaked         bool           `json:"isStaked"`
	StakedAt         time.Time      `json:"stakedAt"`
	StakeExpiry      time.Time      `json:"stakeExpiry"`
	ConsecutiveWeeks uint32         `json:"consecutiveWeeks"`
	LastClaimAt      time.Time      `json:"lastClaimAt"`
}

// NewBalance returns the zero-value ledger state for an account.
func NewBalance(account common.Address) Balance {
	return Balance{
		Account: account,
		Liquid:  sdkmath.ZeroInt(),
		Staked:  sdkmath.ZeroInt(),
	}
}

// Total is everything the protocol holds for the account.
func (b Balance) Total() sdkmath.Int {
	return b.Liquid.Add(b.Staked)
}

// StakeValidAt reports whether the account holds an unexpired active stake.
func (b Balance) StakeValidAt(now time.Time) bool {
	return b.IsStaked && !now.After(b.StakeExpiry)
}

// AdvanceStreak bumps the consecutive-stake counter after a successful match.
func (b *Balance) AdvanceStreak() {
	b.ConsecutiveWeeks++
}

// ResetStreak zeroes the consecutive-stake counter after a lapsed stake.
func (b *Balance) ResetStreak() {
	b.ConsecutiveWeeks = 0
}
