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

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) LastExecutedAt(ctx context.Context) (time.Time, error) {
	var round models.Round
	err := r.db.WithContext(ctx).Order("executed_at desc").Take(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, errors.Wrap(err, "failed to load last round")
	}
	return round.ExecutedAt, nil
}

// Commit applies a complete round outcome in one transaction: match records
// and their participant history rows, every mutated balance, a full queue
// clear, and the round marker. Any failure rolls the whole round back.
func (r *RoundRepository) Commit(ctx context.Context, result domain.RoundResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		for _, match := range result.Matches {
			m := models.Match{
				ID:       match.ID,
				AccountA: match.AccountA.Hex(),
				AccountB: match.AccountB.Hex(),
				Score:    match.Score,
				Active:   match.Active,
			}
			if err := tx.Clauses(clause.OnConflict{
				DoNothing: true,
			}).Create(&m).Error; err != nil {
				return errors.Wrap(err, "failed to create match")
			}

			for _, account := range []string{m.AccountA, m.AccountB} {
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "match_id"}, {Name: "account"}},
					DoNothing: true,
				}).Create(&models.MatchParticipant{
					MatchID: m.ID,
					Account: account,
				}).Error
				if err != nil {
					return errors.Wrap(err, "failed to create match participant")
				}
			}
		}

		for _, balance := range result.Balances {
			m := balanceToModel(balance)
			err := tx.Clauses(clause.OnConflict{
				UpdateAll: true,
			}).Create(&m).Error
			if err != nil {
				return errors.Wrap(err, "failed to rewrite balance")
			}
		}

		if err := tx.Where("1 = 1").Delete(&models.QueueEntry{}).Error; err != nil {
			return errors.Wrap(err, "failed to clear queue")
		}

		round := models.Round{
			ExecutedAt: result.ExecutedAt,
			MatchCount: len(result.Matches),
		}
		if err := tx.Create(&round).Error; err != nil {
			return errors.Wrap(err, "failed to record round")
		}

		return nil
	})
}

var _ usecase.RoundRepository = (*RoundRepository)(nil)
