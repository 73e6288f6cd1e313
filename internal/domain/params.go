package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Params is the governed protocol configuration. It is replaced wholesale by
// governance action and read fresh on every engine operation; no component
// snapshots it across a round.
type Params struct {
	WeeklyStakeAmount     sdkmath.Int   `json:"weeklyStakeAmount"`
	MatchingInterval      time.Duration `json:"matchingInterval"`
	MinCompatibilityScore int           `json:"minCompatibilityScore"` // 0..100
	MaxMatchesPerWeek     int           `json:"maxMatchesPerWeek"`
	StakingBonusRate      int           `json:"stakingBonusRate"` // percent, 0..100
	Version               uint64        `json:"version"`
}

// DefaultParams is the genesis configuration before any governance action.
func DefaultParams() Params {
	return Params{
		WeeklyStakeAmount:     Tokens(10),
		MatchingInterval:      7 * 24 * time.Hour,
		MinCompatibilityScore: 50,
		MaxMatchesPerWeek:     100,
		StakingBonusRate:      5,
		Version:               1,
	}
}

// Validate checks the bounds governance must hold before applying.
func (p Params) Validate() error {
	if p.WeeklyStakeAmount.IsNil() || !p.WeeklyStakeAmount.IsPositive() {
		return ValidationError{Reason: "weekly stake amount must be positive"}
	}
	if p.MatchingInterval <= 0 {
		return ValidationError{Reason: "matching interval must be positive"}
	}
	if p.MinCompatibilityScore < 0 || p.MinCompatibilityScore > 100 {
		return ValidationError{Reason: "minimum compatibility score must be within 0..100"}
	}
	if p.MaxMatchesPerWeek <= 0 {
		return ValidationError{Reason: "max matches per week must be positive"}
	}
	if p.StakingBonusRate < 0 || p.StakingBonusRate > 100 {
		return ValidationError{Reason: "staking bonus rate must be within 0..100"}
	}
	return nil
}
