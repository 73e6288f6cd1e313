package repository

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
)

func kindredAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("malformed account column value: %q", s)
	}
	return common.HexToAddress(s), nil
}

// numeric converts a postgres numeric string to sdkmath.Int. An empty
// string reads as zero so freshly defaulted columns round-trip.
func numeric(s string) (sdkmath.Int, error) {
	if s == "" {
		return sdkmath.ZeroInt(), nil
	}
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, errors.Errorf("malformed numeric column value: %q", s)
	}
	return v, nil
}

func balanceToModel(b domain.Balance) models.Balance {
	return models.Balance{
		Account:          b.Account.Hex(),
		Liquid:           b.Liquid.String(),
		Staked:           b.Staked.String(),
		IsStaked:         b.IsStaked,
		StakedAt:         b.StakedAt,
		StakeExpiry:      b.StakeExpiry,
		ConsecutiveWeeks: b.ConsecutiveWeeks,
		LastClaimAt:      b.LastClaimAt,
	}
}

func balanceFromModel(m models.Balance) (domain.Balance, error) {
	liquid, err := numeric(m.Liquid)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "liquid")
	}
	staked, err := numeric(m.Staked)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "staked")
	}

	account, err := kindredAddress(m.Account)
	if err != nil {
		return domain.Balance{}, err
	}

	return domain.Balance{
		Account:          account,
		Liquid:           liquid,
		Staked:           staked,
		IsStaked:         m.IsStaked,
		StakedAt:         m.StakedAt,
		StakeExpiry:      m.StakeExpiry,
		ConsecutiveWeeks: m.ConsecutiveWeeks,
		LastClaimAt:      m.LastClaimAt,
	}, nil
}
