package domain

import sdkmath "cosmossdk.io/math"

const (
	// AnswerCount is the protocol-wide questionnaire length. Profiles carry
	// exactly this many answers and preferences.
	AnswerCount = 10

	// MaxConsecutiveWeeks caps the staking-bonus streak multiplier.
	MaxConsecutiveWeeks = 52

	SecondsPerYear = 365 * 24 * 60 * 60
)

var (
	// Scale is the fixed-point base for all rate arithmetic (10^18).
	Scale = sdkmath.NewIntWithDecimal(1, 18)

	// MaxSupply is the hard token cap. Reward claims are the only
	// supply-increasing path and fail once minting would cross it.
	MaxSupply = sdkmath.NewIntWithDecimal(1_000_000_000, 18)

	// AnnualRewardRate is the base emission rate, 2% scaled by 10^18.
	AnnualRewardRate = sdkmath.NewIntWithDecimal(2, 16)
)

// Tokens converts a whole-token count to base units.
func Tokens(n int64) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(Scale)
}
