package repository

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Get returns a zero-value ledger state for accounts that have never been
// written; only storage failures surface as errors.
func (r *BalanceRepository) Get(ctx context.Context, account common.Address) (domain.Balance, error) {
	var m models.Balance
	err := r.db.WithContext(ctx).Take(&m, "account = ?", account.Hex()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewBalance(account), nil
		}
		return domain.Balance{}, errors.Wrap(err, "failed to load balance")
	}
	return balanceFromModel(m)
}

func (r *BalanceRepository) Save(ctx context.Context, balance domain.Balance) error {
	m := balanceToModel(balance)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&m).Error
	return errors.Wrap(err, "failed to save balance")
}

func (r *BalanceRepository) SaveAll(ctx context.Context, balances ...domain.Balance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range balances {
			m := balanceToModel(b)
			err := tx.Clauses(clause.OnConflict{
				UpdateAll: true,
			}).Create(&m).Error
			if err != nil {
				return errors.Wrap(err, "failed to save balance")
			}
		}
		return nil
	})
}

func (r *BalanceRepository) TotalSupply(ctx context.Context) (sdkmath.Int, error) {
	return r.sum(ctx, "COALESCE(SUM(liquid + staked), 0)::text")
}

func (r *BalanceRepository) TotalStaked(ctx context.Context) (sdkmath.Int, error) {
	return r.sum(ctx, "COALESCE(SUM(staked), 0)::text")
}

func (r *BalanceRepository) sum(ctx context.Context, expr string) (sdkmath.Int, error) {
	var total string
	err := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Select(expr).
		Scan(&total).Error
	if err != nil {
		return sdkmath.Int{}, errors.Wrap(err, "failed to sum balances")
	}
	return numeric(total)
}

var _ usecase.BalanceRepository = (*BalanceRepository)(nil)
