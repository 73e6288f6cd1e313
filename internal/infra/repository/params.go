package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

const paramsRowID = 1

type ParamsRepository struct {
	db *gorm.DB
}

func NewParamsRepository(db *gorm.DB) *ParamsRepository {
	return &ParamsRepository{db: db}
}

// Get returns the governed configuration, falling back to the genesis
// defaults before the first Replace has run.
func (r *ParamsRepository) Get(ctx context.Context) (domain.Params, error) {
	var m models.Params
	err := r.db.WithContext(ctx).Take(&m, "id = ?", paramsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DefaultParams(), nil
		}
		return domain.Params{}, errors.Wrap(err, "failed to load params")
	}

	weekly, err := numeric(m.WeeklyStakeAmount)
	if err != nil {
		return domain.Params{}, errors.Wrap(err, "weekly stake amount")
	}

	return domain.Params{
		WeeklyStakeAmount:     weekly,
		MatchingInterval:      time.Duration(m.MatchingIntervalSecs) * time.Second,
		MinCompatibilityScore: m.MinCompatibilityScore,
		MaxMatchesPerWeek:     m.MaxMatchesPerWeek,
		StakingBonusRate:      m.StakingBonusRate,
		Version:               m.Version,
	}, nil
}

func (r *ParamsRepository) Replace(ctx context.Context, params domain.Params) error {
	m := models.Params{
		ID:                    paramsRowID,
		WeeklyStakeAmount:     params.WeeklyStakeAmount.String(),
		MatchingIntervalSecs:  int64(params.MatchingInterval / time.Second),
		MinCompatibilityScore: params.MinCompatibilityScore,
		MaxMatchesPerWeek:     params.MaxMatchesPerWeek,
		StakingBonusRate:      params.StakingBonusRate,
		Version:               params.Version,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&m).Error
	return errors.Wrap(err, "failed to replace params")
}

var _ usecase.ParamsRepository = (*ParamsRepository)(nil)
